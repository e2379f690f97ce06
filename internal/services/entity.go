package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// TransitionPolicy decides whether an entity may move between two states. The
// default policy allows every transition; stricter deployments can swap in a
// graph-based policy without touching the service.
type TransitionPolicy func(ctx context.Context, from, to *types.State) error

// AllowAllTransitions is the default policy: any state to any state.
func AllowAllTransitions(ctx context.Context, from, to *types.State) error {
	return nil
}

// EntityInput carries the writable fields for creating an entity.
type EntityInput struct {
	Name        string
	Type        string
	Description string
	Priority    string
	DueDate     *time.Time
	Tags        []string
	Metadata    map[string]any
	// Content seeds version 1; when empty, the description is used instead.
	Content string
	Summary string
	// Contributors are granted access on top of the creator's owner
	// assignment; an empty role means editor.
	Contributors []ContributorAssignment
}

// ContributorAssignment names a contributor to attach at creation time.
type ContributorAssignment struct {
	ID   uuid.UUID
	Role string
}

// EntityUpdate carries partial updates; nil fields are left untouched.
type EntityUpdate struct {
	Name        *string
	Type        *string
	Description *string
	Priority    *string
	DueDate     *time.Time
	ClearDue    bool
	Tags        []string
	Metadata    map[string]any
}

type EntityService interface {
	Create(ctx context.Context, actorID uuid.UUID, input EntityInput) (*types.Entity, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Entity, error)
	List(ctx context.Context, filter repos.EntityFilter) ([]*types.Entity, int64, error)
	Update(ctx context.Context, actorID, id uuid.UUID, input EntityUpdate) (*types.Entity, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	// ChangeState moves the entity to the given state and records the
	// transition; the pointer update and the history entry commit together.
	ChangeState(ctx context.Context, actorID, id, stateID uuid.UUID, comment string) (*types.Entity, error)
	AssignContributor(ctx context.Context, actorID, id, contributorID uuid.UUID, role string) (*types.EntityContributor, error)
	UnassignContributor(ctx context.Context, actorID, id, contributorID uuid.UUID) error
	History(ctx context.Context, id uuid.UUID, limit int) ([]*types.HistoryEntry, error)
	// Timeline returns every history entry oldest-first, plus the derived
	// state-change trace with the time spent in each state.
	Timeline(ctx context.Context, id uuid.UUID) (*EntityTimeline, error)
}

// EntityTimeline is the full chronological record of an entity.
type EntityTimeline struct {
	Entries []*types.HistoryEntry `json:"entries"`
	Steps   []TimelineStep        `json:"steps"`
}

// TimelineStep is one hop of an entity's state-change trace.
type TimelineStep struct {
	State     *types.State       `json:"state"`
	EnteredAt time.Time          `json:"entered_at"`
	LeftAt    *time.Time         `json:"left_at,omitempty"`
	Duration  float64            `json:"duration_seconds"`
	ChangedBy *types.Contributor `json:"changed_by,omitempty"`
	Comment   string             `json:"comment,omitempty"`
}

type entityService struct {
	db             *gorm.DB
	log            *logger.Logger
	entityRepo     repos.EntityRepo
	stateRepo      repos.StateRepo
	versionRepo    repos.VersionRepo
	historyRepo    repos.HistoryRepo
	assignmentRepo repos.AssignmentRepo
	contribRepo    repos.ContributorRepo
	policy         TransitionPolicy
	now            func() time.Time
}

func NewEntityService(
	db *gorm.DB,
	log *logger.Logger,
	entityRepo repos.EntityRepo,
	stateRepo repos.StateRepo,
	versionRepo repos.VersionRepo,
	historyRepo repos.HistoryRepo,
	assignmentRepo repos.AssignmentRepo,
	contribRepo repos.ContributorRepo,
	policy TransitionPolicy,
) EntityService {
	serviceLog := log.With("service", "EntityService")
	if policy == nil {
		policy = AllowAllTransitions
	}
	return &entityService{
		db:             db,
		log:            serviceLog,
		entityRepo:     entityRepo,
		stateRepo:      stateRepo,
		versionRepo:    versionRepo,
		historyRepo:    historyRepo,
		assignmentRepo: assignmentRepo,
		contribRepo:    contribRepo,
		policy:         policy,
		now:            time.Now,
	}
}

func (es *entityService) Create(ctx context.Context, actorID uuid.UUID, input EntityInput) (*types.Entity, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, types.ValidationError("entity name is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !types.ValidPriority(priority) {
		return nil, types.ValidationError(fmt.Sprintf("unknown priority %q", priority))
	}
	entityType := input.Type
	if entityType == "" {
		entityType = "article"
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	var created *types.Entity
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		initial, gErr := es.stateRepo.GetInitial(ctx, tx)
		if gErr == gorm.ErrRecordNotFound {
			return types.ConfigurationError("no initial state is configured")
		}
		if gErr != nil {
			return gErr
		}

		entity := &types.Entity{
			ID:             uuid.New(),
			ExternalID:     uuid.New(),
			Name:           name,
			Type:           entityType,
			Description:    input.Description,
			Priority:       priority,
			DueDate:        input.DueDate,
			Tags:           datatypes.JSONSlice[string](tags),
			Metadata:       datatypes.JSONMap(metadata),
			CurrentStateID: initial.ID,
			CreatedBy:      actorID,
		}
		if _, cErr := es.entityRepo.Create(ctx, tx, entity); cErr != nil {
			return fmt.Errorf("create entity: %w", cErr)
		}

		// Creator owns the entity; listed contributors come in as editors.
		if _, aErr := es.assignmentRepo.Upsert(ctx, tx, &types.EntityContributor{
			ID:            uuid.New(),
			EntityID:      entity.ID,
			ContributorID: actorID,
			Role:          types.AssignmentRoleOwner,
		}); aErr != nil {
			return fmt.Errorf("assign creator: %w", aErr)
		}
		for _, extra := range input.Contributors {
			if extra.ID == actorID {
				continue
			}
			role := extra.Role
			if role == "" {
				role = types.AssignmentRoleEditor
			}
			if !types.ValidAssignmentRole(role) {
				return types.ValidationError(fmt.Sprintf("unknown assignment role %q", role))
			}
			if _, gErr := es.contribRepo.GetByID(ctx, tx, extra.ID); gErr != nil {
				if gErr == gorm.ErrRecordNotFound {
					return types.ValidationError(fmt.Sprintf("unknown contributor %s", extra.ID))
				}
				return gErr
			}
			if _, aErr := es.assignmentRepo.Upsert(ctx, tx, &types.EntityContributor{
				ID:            uuid.New(),
				EntityID:      entity.ID,
				ContributorID: extra.ID,
				Role:          role,
			}); aErr != nil {
				return fmt.Errorf("assign contributor: %w", aErr)
			}
		}

		title := strings.TrimSpace(input.Name)
		content := input.Content
		if content == "" {
			content = input.Description
		}
		version := &types.Version{
			ID:            uuid.New(),
			EntityID:      entity.ID,
			VersionNumber: 1,
			Title:         title,
			Content:       content,
			Summary:       input.Summary,
			CreatedByID:   actorID,
			IsCurrent:     true,
			Metadata:      datatypes.JSONMap{},
		}
		if _, vErr := es.versionRepo.Create(ctx, tx, version); vErr != nil {
			return fmt.Errorf("create initial version: %w", vErr)
		}

		newStateID := initial.ID
		if _, hErr := es.historyRepo.Append(ctx, tx, &types.HistoryEntry{
			ID:          uuid.New(),
			EntityID:    entity.ID,
			NewStateID:  &newStateID,
			ChangedByID: actorID,
			Action:      types.ActionCreated,
			Comment:     "Entity created",
		}); hErr != nil {
			return fmt.Errorf("record creation: %w", hErr)
		}

		created = entity
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	es.log.Info("Entity created", "entity_id", created.ID, "name", created.Name, "actor_id", actorID)
	return es.Get(ctx, created.ID)
}

func (es *entityService) Get(ctx context.Context, id uuid.UUID) (*types.Entity, error) {
	entity, err := es.entityRepo.GetWithRelations(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	return entity, nil
}

func (es *entityService) List(ctx context.Context, filter repos.EntityFilter) ([]*types.Entity, int64, error) {
	entities, total, err := es.entityRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, 0, types.MapError(err)
	}
	return entities, total, nil
}

func (es *entityService) Update(ctx context.Context, actorID, id uuid.UUID, input EntityUpdate) (*types.Entity, error) {
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, gErr := es.entityRepo.GetByID(ctx, tx, id)
		if gErr != nil {
			return gErr
		}

		fields := map[string]any{}
		changes := datatypes.JSONMap{}
		record := func(field string, old, new any) {
			changes[field] = types.FieldChange{Old: old, New: new}
		}

		if input.Name != nil && *input.Name != entity.Name {
			if strings.TrimSpace(*input.Name) == "" {
				return types.ValidationError("entity name cannot be blank")
			}
			record("name", entity.Name, *input.Name)
			fields["name"] = *input.Name
		}
		if input.Type != nil && *input.Type != entity.Type {
			record("type", entity.Type, *input.Type)
			fields["type"] = *input.Type
		}
		if input.Description != nil && *input.Description != entity.Description {
			record("description", entity.Description, *input.Description)
			fields["description"] = *input.Description
		}
		if input.Priority != nil && *input.Priority != entity.Priority {
			if !types.ValidPriority(*input.Priority) {
				return types.ValidationError(fmt.Sprintf("unknown priority %q", *input.Priority))
			}
			record("priority", entity.Priority, *input.Priority)
			fields["priority"] = *input.Priority
		}
		if input.ClearDue && entity.DueDate != nil {
			record("due_date", entity.DueDate, nil)
			fields["due_date"] = nil
		} else if input.DueDate != nil {
			if entity.DueDate == nil || !entity.DueDate.Equal(*input.DueDate) {
				record("due_date", entity.DueDate, input.DueDate)
				fields["due_date"] = *input.DueDate
			}
		}
		if input.Tags != nil {
			record("tags", []string(entity.Tags), input.Tags)
			fields["tags"] = datatypes.JSONSlice[string](input.Tags)
		}
		if input.Metadata != nil {
			record("metadata", map[string]any(entity.Metadata), input.Metadata)
			fields["metadata"] = datatypes.JSONMap(input.Metadata)
		}

		if len(fields) == 0 {
			return nil
		}
		if uErr := es.entityRepo.Update(ctx, tx, id, fields); uErr != nil {
			return fmt.Errorf("update entity: %w", uErr)
		}
		if _, hErr := es.historyRepo.Append(ctx, tx, &types.HistoryEntry{
			ID:          uuid.New(),
			EntityID:    id,
			ChangedByID: actorID,
			Action:      types.ActionUpdated,
			Changes:     changes,
		}); hErr != nil {
			return fmt.Errorf("record update: %w", hErr)
		}
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	return es.Get(ctx, id)
}

func (es *entityService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, gErr := es.entityRepo.GetByID(ctx, tx, id); gErr != nil {
			return gErr
		}
		return es.entityRepo.SoftDelete(ctx, tx, id)
	})
	if err != nil {
		return types.MapError(err)
	}
	es.log.Info("Entity deleted", "entity_id", id, "actor_id", actorID)
	return nil
}

func (es *entityService) ChangeState(ctx context.Context, actorID, id, stateID uuid.UUID, comment string) (*types.Entity, error) {
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, gErr := es.entityRepo.GetByIDForUpdate(ctx, tx, id)
		if gErr != nil {
			return gErr
		}
		target, tErr := es.stateRepo.GetByID(ctx, tx, stateID)
		if tErr == gorm.ErrRecordNotFound {
			return types.ValidationError("target state does not exist")
		}
		if tErr != nil {
			return tErr
		}
		current, cErr := es.stateRepo.GetByID(ctx, tx, entity.CurrentStateID)
		if cErr != nil {
			return cErr
		}
		if pErr := es.policy(ctx, current, target); pErr != nil {
			return types.ValidationError(pErr.Error())
		}

		if uErr := es.entityRepo.UpdateCurrentState(ctx, tx, id, stateID); uErr != nil {
			return fmt.Errorf("move entity: %w", uErr)
		}
		oldID := entity.CurrentStateID
		newID := stateID
		if _, hErr := es.historyRepo.Append(ctx, tx, &types.HistoryEntry{
			ID:          uuid.New(),
			EntityID:    id,
			OldStateID:  &oldID,
			NewStateID:  &newID,
			ChangedByID: actorID,
			Action:      types.ActionStateChange,
			Comment:     comment,
		}); hErr != nil {
			return fmt.Errorf("record transition: %w", hErr)
		}
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	es.log.Info("Entity state changed", "entity_id", id, "state_id", stateID, "actor_id", actorID)
	return es.Get(ctx, id)
}

func (es *entityService) AssignContributor(ctx context.Context, actorID, id, contributorID uuid.UUID, role string) (*types.EntityContributor, error) {
	if role == "" {
		role = types.AssignmentRoleEditor
	}
	if !types.ValidAssignmentRole(role) {
		return nil, types.ValidationError(fmt.Sprintf("unknown assignment role %q", role))
	}
	var assignment *types.EntityContributor
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, gErr := es.entityRepo.GetByID(ctx, tx, id); gErr != nil {
			return gErr
		}
		contributor, cErr := es.contribRepo.GetByID(ctx, tx, contributorID)
		if cErr == gorm.ErrRecordNotFound {
			return types.ValidationError("contributor does not exist")
		}
		if cErr != nil {
			return cErr
		}

		upserted, uErr := es.assignmentRepo.Upsert(ctx, tx, &types.EntityContributor{
			ID:            uuid.New(),
			EntityID:      id,
			ContributorID: contributorID,
			Role:          role,
		})
		if uErr != nil {
			return fmt.Errorf("assign contributor: %w", uErr)
		}
		upserted.Contributor = contributor
		assignment = upserted

		if _, hErr := es.historyRepo.Append(ctx, tx, &types.HistoryEntry{
			ID:          uuid.New(),
			EntityID:    id,
			ChangedByID: actorID,
			Action:      types.ActionContributorAdded,
			Comment:     fmt.Sprintf("Contributor %s added as %s", contributor.Name, role),
		}); hErr != nil {
			return fmt.Errorf("record assignment: %w", hErr)
		}
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	return assignment, nil
}

func (es *entityService) UnassignContributor(ctx context.Context, actorID, id, contributorID uuid.UUID) error {
	// Removal is not written to the history log; only additions are traced.
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, gErr := es.entityRepo.GetByID(ctx, tx, id); gErr != nil {
			return gErr
		}
		affected, dErr := es.assignmentRepo.Delete(ctx, tx, id, contributorID)
		if dErr != nil {
			return dErr
		}
		if affected == 0 {
			return types.NotFoundError("contributor is not assigned to this entity")
		}
		return nil
	})
	if err != nil {
		return types.MapError(err)
	}
	return nil
}

func (es *entityService) History(ctx context.Context, id uuid.UUID, limit int) ([]*types.HistoryEntry, error) {
	if _, err := es.entityRepo.GetByID(ctx, nil, id); err != nil {
		return nil, types.MapError(err)
	}
	entries, err := es.historyRepo.ListByEntity(ctx, nil, id, true, limit)
	if err != nil {
		return nil, types.MapError(err)
	}
	return entries, nil
}

func (es *entityService) Timeline(ctx context.Context, id uuid.UUID) (*EntityTimeline, error) {
	entity, err := es.entityRepo.GetWithRelations(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	entries, err := es.historyRepo.ListByEntity(ctx, nil, id, false, 0)
	if err != nil {
		return nil, types.MapError(err)
	}
	changes, err := es.historyRepo.ListStateChanges(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}

	steps := []TimelineStep{}
	// The creation entry opens the first interval; each state change closes
	// the previous one.
	enteredAt := entity.CreatedAt
	currentState := entity.CurrentState
	var openState *types.State
	if len(changes) > 0 {
		openState = changes[0].OldState
	} else {
		openState = currentState
	}

	for _, change := range changes {
		left := change.CreatedAt
		steps = append(steps, TimelineStep{
			State:     openState,
			EnteredAt: enteredAt,
			LeftAt:    &left,
			Duration:  left.Sub(enteredAt).Seconds(),
			ChangedBy: change.ChangedBy,
			Comment:   change.Comment,
		})
		enteredAt = change.CreatedAt
		openState = change.NewState
	}
	steps = append(steps, TimelineStep{
		State:     openState,
		EnteredAt: enteredAt,
		Duration:  es.now().Sub(enteredAt).Seconds(),
	})
	return &EntityTimeline{Entries: entries, Steps: steps}, nil
}
