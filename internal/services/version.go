package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// VersionInput carries the writable fields of a version snapshot.
type VersionInput struct {
	Title    string
	Content  string
	Summary  string
	Metadata map[string]any
}

// VersionDiff compares two snapshots of the same entity field by field.
type VersionDiff struct {
	EntityID     uuid.UUID                    `json:"entity_id"`
	FromNumber   int                          `json:"from_number"`
	ToNumber     int                          `json:"to_number"`
	FieldChanges map[string]types.FieldChange `json:"field_changes"`
}

type VersionService interface {
	// Create snapshots the entity's content as the next sequential version and
	// makes it current. Numbering serializes per entity.
	Create(ctx context.Context, actorID, entityID uuid.UUID, input VersionInput) (*types.Version, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Version, error)
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*types.Version, error)
	// Restore marks an existing version current again without copying it.
	Restore(ctx context.Context, actorID, entityID, versionID uuid.UUID) (*types.Version, error)
	Compare(ctx context.Context, entityID, fromID, toID uuid.UUID) (*VersionDiff, error)
}

type versionService struct {
	db          *gorm.DB
	log         *logger.Logger
	entityRepo  repos.EntityRepo
	versionRepo repos.VersionRepo
	historyRepo repos.HistoryRepo
}

func NewVersionService(db *gorm.DB, log *logger.Logger, entityRepo repos.EntityRepo, versionRepo repos.VersionRepo, historyRepo repos.HistoryRepo) VersionService {
	serviceLog := log.With("service", "VersionService")
	return &versionService{
		db:          db,
		log:         serviceLog,
		entityRepo:  entityRepo,
		versionRepo: versionRepo,
		historyRepo: historyRepo,
	}
}

func (vs *versionService) Create(ctx context.Context, actorID, entityID uuid.UUID, input VersionInput) (*types.Version, error) {
	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	var created *types.Version
	err := vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent version creation for one entity,
		// so MAX(version_number)+1 cannot be assigned twice.
		entity, gErr := vs.entityRepo.GetByIDForUpdate(ctx, tx, entityID)
		if gErr != nil {
			return gErr
		}

		max, mErr := vs.versionRepo.MaxNumber(ctx, tx, entityID)
		if mErr != nil {
			return fmt.Errorf("next version number: %w", mErr)
		}

		title := strings.TrimSpace(input.Title)
		if title == "" {
			title = entity.Name
		}

		if uErr := vs.versionRepo.UnsetCurrent(ctx, tx, entityID); uErr != nil {
			return fmt.Errorf("unset current version: %w", uErr)
		}
		version := &types.Version{
			ID:            uuid.New(),
			EntityID:      entityID,
			VersionNumber: max + 1,
			Title:         title,
			Content:       input.Content,
			Summary:       input.Summary,
			CreatedByID:   actorID,
			IsCurrent:     true,
			Metadata:      datatypes.JSONMap(metadata),
		}
		if _, cErr := vs.versionRepo.Create(ctx, tx, version); cErr != nil {
			return fmt.Errorf("create version: %w", cErr)
		}

		if _, hErr := vs.historyRepo.Append(ctx, tx, &types.HistoryEntry{
			ID:          uuid.New(),
			EntityID:    entityID,
			ChangedByID: actorID,
			Action:      types.ActionVersionCreated,
			Comment:     fmt.Sprintf("Version %d created", version.VersionNumber),
		}); hErr != nil {
			return fmt.Errorf("record version: %w", hErr)
		}

		created = version
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	vs.log.Info("Version created", "entity_id", entityID, "version_number", created.VersionNumber, "actor_id", actorID)
	return created, nil
}

func (vs *versionService) Get(ctx context.Context, id uuid.UUID) (*types.Version, error) {
	version, err := vs.versionRepo.GetWithRelations(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	return version, nil
}

func (vs *versionService) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*types.Version, error) {
	if _, err := vs.entityRepo.GetByID(ctx, nil, entityID); err != nil {
		return nil, types.MapError(err)
	}
	versions, err := vs.versionRepo.ListByEntity(ctx, nil, entityID)
	if err != nil {
		return nil, types.MapError(err)
	}
	return versions, nil
}

func (vs *versionService) Restore(ctx context.Context, actorID, entityID, versionID uuid.UUID) (*types.Version, error) {
	var restored *types.Version
	err := vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, gErr := vs.entityRepo.GetByIDForUpdate(ctx, tx, entityID); gErr != nil {
			return gErr
		}
		version, vErr := vs.versionRepo.GetByID(ctx, tx, versionID)
		if vErr != nil {
			return vErr
		}
		if version.EntityID != entityID {
			return types.ValidationError("version does not belong to this entity")
		}

		if uErr := vs.versionRepo.UnsetCurrent(ctx, tx, entityID); uErr != nil {
			return fmt.Errorf("unset current version: %w", uErr)
		}
		if sErr := vs.versionRepo.SetCurrent(ctx, tx, versionID); sErr != nil {
			return fmt.Errorf("set current version: %w", sErr)
		}

		if _, hErr := vs.historyRepo.Append(ctx, tx, &types.HistoryEntry{
			ID:          uuid.New(),
			EntityID:    entityID,
			ChangedByID: actorID,
			Action:      types.ActionVersionRestored,
			Comment:     fmt.Sprintf("Version %d restored", version.VersionNumber),
		}); hErr != nil {
			return fmt.Errorf("record restore: %w", hErr)
		}

		version.IsCurrent = true
		restored = version
		return nil
	})
	if err != nil {
		return nil, types.MapError(err)
	}
	vs.log.Info("Version restored", "entity_id", entityID, "version_number", restored.VersionNumber, "actor_id", actorID)
	return restored, nil
}

func (vs *versionService) Compare(ctx context.Context, entityID, fromID, toID uuid.UUID) (*VersionDiff, error) {
	from, err := vs.versionRepo.GetByID(ctx, nil, fromID)
	if err != nil {
		return nil, types.MapError(err)
	}
	to, err := vs.versionRepo.GetByID(ctx, nil, toID)
	if err != nil {
		return nil, types.MapError(err)
	}
	if from.EntityID != entityID || to.EntityID != entityID {
		return nil, types.ValidationError("versions do not belong to this entity")
	}

	diff := &VersionDiff{
		EntityID:     entityID,
		FromNumber:   from.VersionNumber,
		ToNumber:     to.VersionNumber,
		FieldChanges: map[string]types.FieldChange{},
	}
	if from.Title != to.Title {
		diff.FieldChanges["title"] = types.FieldChange{Old: from.Title, New: to.Title}
	}
	if from.Content != to.Content {
		diff.FieldChanges["content"] = types.FieldChange{Old: from.Content, New: to.Content}
	}
	if from.Summary != to.Summary {
		diff.FieldChanges["summary"] = types.FieldChange{Old: from.Summary, New: to.Summary}
	}
	return diff, nil
}
