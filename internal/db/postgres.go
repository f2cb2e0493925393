package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/types"
	"github.com/indecor/dreamspace-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "dreamspace", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Project{},
		&types.ProjectImage{},
		&types.DesignVariant{},
		&types.ItemInstance{},
		&types.Version{},
		&types.JobRun{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring cascade-delete constraints...")
	constraints := []struct {
		name, table, column, refTable string
	}{
		{"fk_user_token_user_id", "user_token", "user_id", `"user"`},
		{"fk_projects_owner_id", "projects", "owner_id", `"user"`},
		{"fk_project_images_project_id", "project_images", "project_id", "projects"},
		{"fk_design_variants_project_id", "design_variants", "project_id", "projects"},
		{"fk_item_instances_variant_id", "item_instances", "variant_id", "design_variants"},
		{"fk_versions_project_id", "versions", "project_id", "projects"},
	}
	for _, c := range constraints {
		stmt := fmt.Sprintf(`
			ALTER TABLE %q DROP CONSTRAINT IF EXISTS %q;
			ALTER TABLE %q ADD CONSTRAINT %q
			FOREIGN KEY (%q) REFERENCES %s("id") ON DELETE CASCADE
		`, c.table, c.name, c.table, c.name, c.column, c.refTable)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
