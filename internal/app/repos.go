package app

import (
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

type Repos struct {
	State       repos.StateRepo
	Contributor repos.ContributorRepo
	Entity      repos.EntityRepo
	Version     repos.VersionRepo
	History     repos.HistoryRepo
	Assignment  repos.AssignmentRepo
	File        repos.FileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		State:       repos.NewStateRepo(db, log),
		Contributor: repos.NewContributorRepo(db, log),
		Entity:      repos.NewEntityRepo(db, log),
		Version:     repos.NewVersionRepo(db, log),
		History:     repos.NewHistoryRepo(db, log),
		Assignment:  repos.NewAssignmentRepo(db, log),
		File:        repos.NewFileRepo(db, log),
	}
}
