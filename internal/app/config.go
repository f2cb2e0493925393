package app

import (
	"strings"
	"time"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/utils"
)

type Config struct {
	Port            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AllowedOrigins  []string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	port := utils.GetEnv("PORT", "8080", log)

	var origins []string
	for _, o := range strings.Split(utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		Port:            port,
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		AllowedOrigins:  origins,
	}
}
