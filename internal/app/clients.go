package app

import (
	"github.com/indecor/dreamspace-backend/internal/clients/cloudinary"
	"github.com/indecor/dreamspace-backend/internal/clients/redis"
	"github.com/indecor/dreamspace-backend/internal/logger"
)

type Clients struct {
	Cloudinary cloudinary.Client
	SSEBus     redis.SSEBus
}

// wireClients initializes external providers. Both are optional at startup:
// without Cloudinary credentials the upload endpoint rejects file uploads,
// and without Redis the SSE hub stays instance-local.
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	var cld cloudinary.Client
	if c, err := cloudinary.NewClient(log); err != nil {
		log.Warn("Cloudinary client unavailable", "error", err)
	} else {
		cld = c
	}

	var bus redis.SSEBus
	if b, err := redis.NewSSEBus(log); err != nil {
		log.Warn("Redis SSE bus unavailable, running instance-local", "error", err)
	} else {
		bus = b
	}

	return Clients{Cloudinary: cld, SSEBus: bus}
}
