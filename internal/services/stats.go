package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/clients/redisc"
	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

const (
	dashboardCacheKey = "stats:dashboard"
	dashboardCacheTTL = 60 * time.Second
)

// StateBreakdown pairs a state with how many entities currently sit in it.
type StateBreakdown struct {
	State *types.State `json:"state"`
	Count int64        `json:"count"`
}

// DashboardStats is the aggregate snapshot served to the dashboard.
type DashboardStats struct {
	TotalEntities      int64             `json:"total_entities"`
	TotalVersions      int64             `json:"total_versions"`
	TotalFiles         int64             `json:"total_files"`
	ActiveContributors int64             `json:"active_contributors"`
	CreatedLast7Days   int64             `json:"created_last_7_days"`
	ActivityLast7Days  int64             `json:"activity_last_7_days"`
	ByState            []StateBreakdown  `json:"by_state"`
	ByType             []repos.TypeCount `json:"by_type"`
	GeneratedAt        time.Time         `json:"generated_at"`
}

// ActivityReport is the day-by-day trace over a window.
type ActivityReport struct {
	Days          int               `json:"days"`
	DailyActivity []repos.DateCount `json:"daily_activity"`
	DailyCreated  []repos.DateCount `json:"daily_created"`
	TopActors     []ActorBreakdown  `json:"top_actors"`
}

// ActorBreakdown ranks a contributor by recorded history entries.
type ActorBreakdown struct {
	Contributor *types.Contributor `json:"contributor"`
	Count       int64              `json:"count"`
}

// EntityStats summarizes one entity's footprint and where it sits now.
type EntityStats struct {
	EntityID              uuid.UUID    `json:"entity_id"`
	Versions              int64        `json:"versions"`
	Files                 int64        `json:"files"`
	StateChanges          int64        `json:"state_changes"`
	CurrentState          *types.State `json:"current_state,omitempty"`
	InCurrentStateSeconds float64      `json:"in_current_state_seconds"`
}

type StatsService interface {
	// Dashboard fans the aggregate queries out concurrently; results are
	// cached briefly so the dashboard cannot hammer the database.
	Dashboard(ctx context.Context) (*DashboardStats, error)
	Activity(ctx context.Context, days int) (*ActivityReport, error)
	Entity(ctx context.Context, entityID uuid.UUID) (*EntityStats, error)
	// InvalidateDashboard drops the cached snapshot after a mutation.
	InvalidateDashboard(ctx context.Context)
}

type statsService struct {
	db          *gorm.DB
	log         *logger.Logger
	entityRepo  repos.EntityRepo
	versionRepo repos.VersionRepo
	fileRepo    repos.FileRepo
	historyRepo repos.HistoryRepo
	contribRepo repos.ContributorRepo
	stateRepo   repos.StateRepo
	cache       redisc.Cache
	now         func() time.Time
}

func NewStatsService(
	db *gorm.DB,
	log *logger.Logger,
	entityRepo repos.EntityRepo,
	versionRepo repos.VersionRepo,
	fileRepo repos.FileRepo,
	historyRepo repos.HistoryRepo,
	contribRepo repos.ContributorRepo,
	stateRepo repos.StateRepo,
	cache redisc.Cache,
) StatsService {
	serviceLog := log.With("service", "StatsService")
	return &statsService{
		db:          db,
		log:         serviceLog,
		entityRepo:  entityRepo,
		versionRepo: versionRepo,
		fileRepo:    fileRepo,
		historyRepo: historyRepo,
		contribRepo: contribRepo,
		stateRepo:   stateRepo,
		cache:       cache,
		now:         time.Now,
	}
}

func (ss *statsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if ss.cache != nil {
		var cached DashboardStats
		hit, err := ss.cache.GetJSON(ctx, dashboardCacheKey, &cached)
		if err != nil {
			ss.log.Warn("Dashboard cache read failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	weekAgo := ss.now().AddDate(0, 0, -7)
	stats := &DashboardStats{GeneratedAt: ss.now()}
	var stateCounts []repos.StateCount
	var states []*types.State

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := ss.entityRepo.Count(gctx, nil)
		stats.TotalEntities = n
		return err
	})
	g.Go(func() error {
		n, err := ss.versionRepo.Count(gctx, nil)
		stats.TotalVersions = n
		return err
	})
	g.Go(func() error {
		n, err := ss.fileRepo.Count(gctx, nil)
		stats.TotalFiles = n
		return err
	})
	g.Go(func() error {
		n, err := ss.contribRepo.CountActive(gctx, nil)
		stats.ActiveContributors = n
		return err
	})
	g.Go(func() error {
		n, err := ss.entityRepo.CountCreatedSince(gctx, nil, weekAgo)
		stats.CreatedLast7Days = n
		return err
	})
	g.Go(func() error {
		n, err := ss.historyRepo.CountSince(gctx, nil, weekAgo)
		stats.ActivityLast7Days = n
		return err
	})
	g.Go(func() error {
		counts, err := ss.entityRepo.GroupByState(gctx, nil)
		stateCounts = counts
		return err
	})
	g.Go(func() error {
		counts, err := ss.entityRepo.GroupByType(gctx, nil)
		stats.ByType = counts
		return err
	})
	g.Go(func() error {
		all, err := ss.stateRepo.List(gctx, nil)
		states = all
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, types.MapError(err)
	}

	// Every registered state appears in the breakdown, zero-count included.
	countByState := map[string]int64{}
	for _, sc := range stateCounts {
		countByState[sc.StateID.String()] = sc.Count
	}
	stats.ByState = make([]StateBreakdown, 0, len(states))
	for _, state := range states {
		stats.ByState = append(stats.ByState, StateBreakdown{
			State: state,
			Count: countByState[state.ID.String()],
		})
	}

	if ss.cache != nil {
		if err := ss.cache.SetJSON(ctx, dashboardCacheKey, stats, dashboardCacheTTL); err != nil {
			ss.log.Warn("Dashboard cache write failed", "error", err)
		}
	}
	return stats, nil
}

func (ss *statsService) Activity(ctx context.Context, days int) (*ActivityReport, error) {
	if days <= 0 {
		days = 30
	}
	since := ss.now().AddDate(0, 0, -days)
	report := &ActivityReport{Days: days}
	var actors []repos.ActorCount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := ss.historyRepo.DailyCounts(gctx, nil, since)
		report.DailyActivity = counts
		return err
	})
	g.Go(func() error {
		counts, err := ss.entityRepo.DailyCreated(gctx, nil, since)
		report.DailyCreated = counts
		return err
	})
	g.Go(func() error {
		top, err := ss.historyRepo.TopActors(gctx, nil, 5)
		actors = top
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, types.MapError(err)
	}

	report.TopActors = make([]ActorBreakdown, 0, len(actors))
	for _, actor := range actors {
		contributor, err := ss.contribRepo.GetByID(ctx, nil, actor.ContributorID)
		if err != nil {
			continue
		}
		report.TopActors = append(report.TopActors, ActorBreakdown{
			Contributor: contributor,
			Count:       actor.Count,
		})
	}
	return report, nil
}

func (ss *statsService) Entity(ctx context.Context, entityID uuid.UUID) (*EntityStats, error) {
	entity, err := ss.entityRepo.GetByID(ctx, nil, entityID)
	if err != nil {
		return nil, types.MapError(err)
	}

	stats := &EntityStats{EntityID: entityID}
	var changes []*types.HistoryEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := ss.versionRepo.CountByEntity(gctx, nil, entityID)
		stats.Versions = n
		return err
	})
	g.Go(func() error {
		n, err := ss.fileRepo.CountByEntity(gctx, nil, entityID)
		stats.Files = n
		return err
	})
	g.Go(func() error {
		list, err := ss.historyRepo.ListStateChanges(gctx, nil, entityID)
		changes = list
		return err
	})
	g.Go(func() error {
		state, err := ss.stateRepo.GetByID(gctx, nil, entity.CurrentStateID)
		stats.CurrentState = state
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, types.MapError(err)
	}

	stats.StateChanges = int64(len(changes))
	enteredAt := entity.CreatedAt
	if len(changes) > 0 {
		enteredAt = changes[len(changes)-1].CreatedAt
	}
	stats.InCurrentStateSeconds = ss.now().Sub(enteredAt).Seconds()
	return stats, nil
}

func (ss *statsService) InvalidateDashboard(ctx context.Context) {
	if ss.cache == nil {
		return
	}
	if err := ss.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		ss.log.Warn("Dashboard cache invalidation failed", "error", err)
	}
}
