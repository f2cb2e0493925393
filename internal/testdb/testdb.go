package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/indecor/dreamspace-backend/internal/types"
)

// Open returns an isolated in-memory database with the full schema applied.
// Each call gets its own shared-cache namespace so parallel tests never see
// one another's rows.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Project{},
		&types.ProjectImage{},
		&types.DesignVariant{},
		&types.ItemInstance{},
		&types.Version{},
		&types.JobRun{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}
