package app

import (
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
)

type Repos struct {
	User          repos.UserRepo
	UserToken     repos.UserTokenRepo
	Project       repos.ProjectRepo
	ProjectImage  repos.ProjectImageRepo
	DesignVariant repos.DesignVariantRepo
	ItemInstance  repos.ItemInstanceRepo
	Version       repos.VersionRepo
	JobRun        repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		UserToken:     repos.NewUserTokenRepo(db, log),
		Project:       repos.NewProjectRepo(db, log),
		ProjectImage:  repos.NewProjectImageRepo(db, log),
		DesignVariant: repos.NewDesignVariantRepo(db, log),
		ItemInstance:  repos.NewItemInstanceRepo(db, log),
		Version:       repos.NewVersionRepo(db, log),
		JobRun:        repos.NewJobRunRepo(db, log),
	}
}
