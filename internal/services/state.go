package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	"github.com/docuflow/lifecycle-backend/internal/db"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// StateInput carries the writable fields of a lifecycle state.
type StateInput struct {
	Name        string
	Label       string
	Color       string
	Order       int
	Description string
	IsInitial   bool
	IsFinal     bool
}

// StateUpdate carries partial updates; nil fields are left untouched.
type StateUpdate struct {
	Name        *string
	Label       *string
	Color       *string
	Order       *int
	Description *string
	IsInitial   *bool
	IsFinal     *bool
}

type StateService interface {
	List(ctx context.Context) ([]*types.State, error)
	Get(ctx context.Context, id uuid.UUID) (*types.State, error)
	Create(ctx context.Context, input StateInput) (*types.State, error)
	Update(ctx context.Context, id uuid.UUID, input StateUpdate) (*types.State, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// EnsureDefaults idempotently seeds the registry; existing states are
	// refreshed in place, keyed by name.
	EnsureDefaults(ctx context.Context, seeds []db.SeedState) ([]*types.State, error)
	// EnsureDefaultsIfEmpty seeds only when the registry has no states at all.
	EnsureDefaultsIfEmpty(ctx context.Context, seeds []db.SeedState) ([]*types.State, bool, error)
}

type stateService struct {
	db         *gorm.DB
	log        *logger.Logger
	stateRepo  repos.StateRepo
	entityRepo repos.EntityRepo
}

func NewStateService(db *gorm.DB, log *logger.Logger, stateRepo repos.StateRepo, entityRepo repos.EntityRepo) StateService {
	serviceLog := log.With("service", "StateService")
	return &stateService{
		db:         db,
		log:        serviceLog,
		stateRepo:  stateRepo,
		entityRepo: entityRepo,
	}
}

func (ss *stateService) List(ctx context.Context) ([]*types.State, error) {
	states, err := ss.stateRepo.List(ctx, nil)
	if err != nil {
		return nil, types.MapError(err)
	}
	return states, nil
}

func (ss *stateService) Get(ctx context.Context, id uuid.UUID) (*types.State, error) {
	state, err := ss.stateRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	return state, nil
}

func (ss *stateService) Create(ctx context.Context, input StateInput) (*types.State, error) {
	name := strings.TrimSpace(input.Name)
	label := strings.TrimSpace(input.Label)
	if name == "" {
		return nil, types.ValidationError("state name is required")
	}
	if label == "" {
		return nil, types.ValidationError("state label is required")
	}

	state := &types.State{
		ID:          uuid.New(),
		Name:        name,
		Label:       label,
		Color:       input.Color,
		Order:       input.Order,
		Description: input.Description,
		IsInitial:   input.IsInitial,
		IsFinal:     input.IsFinal,
	}
	if state.Color == "" {
		state.Color = "#6B7280"
	}

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Only one state may be initial: demote the incumbent first.
		if input.IsInitial {
			if cErr := ss.stateRepo.ClearInitial(ctx, tx); cErr != nil {
				return fmt.Errorf("clear initial flag: %w", cErr)
			}
		}
		if _, cErr := ss.stateRepo.Create(ctx, tx, state); cErr != nil {
			return fmt.Errorf("create state: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	ss.log.Info("State created", "state_id", state.ID, "name", state.Name)
	return state, nil
}

func (ss *stateService) Update(ctx context.Context, id uuid.UUID, input StateUpdate) (*types.State, error) {
	var updated *types.State
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, gErr := ss.stateRepo.GetByID(ctx, tx, id)
		if gErr != nil {
			return gErr
		}

		fields := map[string]any{}
		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return types.ValidationError("state name cannot be blank")
			}
			fields["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Label != nil {
			if strings.TrimSpace(*input.Label) == "" {
				return types.ValidationError("state label cannot be blank")
			}
			fields["label"] = strings.TrimSpace(*input.Label)
		}
		if input.Color != nil {
			fields["color"] = *input.Color
		}
		if input.Order != nil {
			fields["sort_order"] = *input.Order
		}
		if input.Description != nil {
			fields["description"] = *input.Description
		}
		if input.IsFinal != nil {
			fields["is_final"] = *input.IsFinal
		}
		if input.IsInitial != nil {
			// Exclusivity only matters when this state becomes initial.
			if *input.IsInitial && !state.IsInitial {
				if cErr := ss.stateRepo.ClearInitial(ctx, tx); cErr != nil {
					return fmt.Errorf("clear initial flag: %w", cErr)
				}
			}
			fields["is_initial"] = *input.IsInitial
		}

		if uErr := ss.stateRepo.Update(ctx, tx, id, fields); uErr != nil {
			return fmt.Errorf("update state: %w", uErr)
		}
		reloaded, rErr := ss.stateRepo.GetByID(ctx, tx, id)
		if rErr != nil {
			return rErr
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	return updated, nil
}

func (ss *stateService) Delete(ctx context.Context, id uuid.UUID) error {
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, gErr := ss.stateRepo.GetByID(ctx, tx, id); gErr != nil {
			return gErr
		}
		inUse, cErr := ss.entityRepo.CountByCurrentState(ctx, tx, id)
		if cErr != nil {
			return fmt.Errorf("count entities in state: %w", cErr)
		}
		if inUse > 0 {
			return types.ConflictError(fmt.Sprintf("state is the current state of %d entities", inUse))
		}
		return ss.stateRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return types.MapError(err)
	}
	ss.log.Info("State deleted", "state_id", id)
	return nil
}

func (ss *stateService) EnsureDefaults(ctx context.Context, seeds []db.SeedState) ([]*types.State, error) {
	if len(seeds) == 0 {
		seeds = db.DefaultStates()
	}
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seed := range seeds {
			existing, gErr := ss.stateRepo.GetByName(ctx, tx, seed.Name)
			if gErr == gorm.ErrRecordNotFound {
				state := seed.ToState()
				state.ID = uuid.New()
				if _, cErr := ss.stateRepo.Create(ctx, tx, state); cErr != nil {
					return fmt.Errorf("seed state %s: %w", seed.Name, cErr)
				}
				continue
			}
			if gErr != nil {
				return gErr
			}
			fields := map[string]any{
				"label":       seed.Label,
				"color":       seed.Color,
				"sort_order":  seed.Order,
				"description": seed.Description,
				"is_initial":  seed.IsInitial,
				"is_final":    seed.IsFinal,
			}
			if uErr := ss.stateRepo.Update(ctx, tx, existing.ID, fields); uErr != nil {
				return fmt.Errorf("refresh state %s: %w", seed.Name, uErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	return ss.List(ctx)
}

func (ss *stateService) EnsureDefaultsIfEmpty(ctx context.Context, seeds []db.SeedState) ([]*types.State, bool, error) {
	count, err := ss.stateRepo.Count(ctx, nil)
	if err != nil {
		return nil, false, types.MapError(err)
	}
	if count > 0 {
		states, lErr := ss.List(ctx)
		return states, false, lErr
	}
	states, sErr := ss.EnsureDefaults(ctx, seeds)
	if sErr != nil {
		return nil, false, sErr
	}
	return states, true, nil
}
