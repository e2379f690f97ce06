package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
)

type testEnv struct {
	db *gorm.DB

	stateRepo      repos.StateRepo
	contribRepo    repos.ContributorRepo
	entityRepo     repos.EntityRepo
	versionRepo    repos.VersionRepo
	historyRepo    repos.HistoryRepo
	assignmentRepo repos.AssignmentRepo
	fileRepo       repos.FileRepo

	states       StateService
	entities     EntityService
	versions     VersionService
	contributors ContributorService
	auth         AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)

	env := &testEnv{
		db:             db,
		stateRepo:      repos.NewStateRepo(db, log),
		contribRepo:    repos.NewContributorRepo(db, log),
		entityRepo:     repos.NewEntityRepo(db, log),
		versionRepo:    repos.NewVersionRepo(db, log),
		historyRepo:    repos.NewHistoryRepo(db, log),
		assignmentRepo: repos.NewAssignmentRepo(db, log),
		fileRepo:       repos.NewFileRepo(db, log),
	}
	env.states = NewStateService(db, log, env.stateRepo, env.entityRepo)
	env.entities = NewEntityService(db, log, env.entityRepo, env.stateRepo, env.versionRepo, env.historyRepo, env.assignmentRepo, env.contribRepo, nil)
	env.versions = NewVersionService(db, log, env.entityRepo, env.versionRepo, env.historyRepo)
	env.contributors = NewContributorService(db, log, env.contribRepo, env.entityRepo, env.versionRepo, env.fileRepo, env.historyRepo, env.assignmentRepo, nil)
	env.auth = NewAuthService(db, log, env.contribRepo, env.contributors, "test-secret", time.Hour)
	return env
}

// seedDefaults loads the stock workflow and returns the initial state's
// service view.
func (env *testEnv) seedDefaults(t *testing.T) {
	t.Helper()
	if _, err := env.states.EnsureDefaults(context.Background(), nil); err != nil {
		t.Fatalf("seed default states: %v", err)
	}
}
