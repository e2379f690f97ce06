package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// ContributorInput carries the writable fields for creating an account.
type ContributorInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// ContributorUpdate carries partial updates; nil fields are left untouched.
type ContributorUpdate struct {
	Name     *string
	Email    *string
	Role     *string
	IsActive *bool
}

// ContributorStats summarizes one contributor's footprint.
type ContributorStats struct {
	ContributorID    uuid.UUID `json:"contributor_id"`
	AssignedEntities int64     `json:"assigned_entities"`
	VersionsCreated  int64     `json:"versions_created"`
}

type ContributorService interface {
	List(ctx context.Context, filter repos.ContributorFilter) ([]*types.Contributor, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Contributor, error)
	Create(ctx context.Context, input ContributorInput) (*types.Contributor, error)
	Update(ctx context.Context, id uuid.UUID, input ContributorUpdate) (*types.Contributor, error)
	// ResetPassword sets a new password without knowing the current one.
	// Admin-only at the HTTP layer.
	ResetPassword(ctx context.Context, id uuid.UUID, next string) error
	// Delete removes the account after moving everything it owns: entities,
	// versions, files, history authorship go to the acting admin, so no record
	// ever points at a missing contributor.
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*ContributorStats, error)
}

type contributorService struct {
	db             *gorm.DB
	log            *logger.Logger
	contribRepo    repos.ContributorRepo
	entityRepo     repos.EntityRepo
	versionRepo    repos.VersionRepo
	fileRepo       repos.FileRepo
	historyRepo    repos.HistoryRepo
	assignmentRepo repos.AssignmentRepo
	avatars        AvatarService
}

func NewContributorService(
	db *gorm.DB,
	log *logger.Logger,
	contribRepo repos.ContributorRepo,
	entityRepo repos.EntityRepo,
	versionRepo repos.VersionRepo,
	fileRepo repos.FileRepo,
	historyRepo repos.HistoryRepo,
	assignmentRepo repos.AssignmentRepo,
	avatars AvatarService,
) ContributorService {
	serviceLog := log.With("service", "ContributorService")
	return &contributorService{
		db:             db,
		log:            serviceLog,
		contribRepo:    contribRepo,
		entityRepo:     entityRepo,
		versionRepo:    versionRepo,
		fileRepo:       fileRepo,
		historyRepo:    historyRepo,
		assignmentRepo: assignmentRepo,
		avatars:        avatars,
	}
}

func (cs *contributorService) List(ctx context.Context, filter repos.ContributorFilter) ([]*types.Contributor, int64, error) {
	contributors, total, err := cs.contribRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, 0, types.MapError(err)
	}
	return contributors, total, nil
}

func (cs *contributorService) Get(ctx context.Context, id uuid.UUID) (*types.Contributor, error) {
	contributor, err := cs.contribRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	return contributor, nil
}

func (cs *contributorService) Create(ctx context.Context, input ContributorInput) (*types.Contributor, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, types.ValidationError("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, types.ValidationError("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, types.ValidationError("password must be at least 8 characters")
	}
	role := input.Role
	if role == "" {
		role = types.ContributorRoleContributor
	}
	if !types.ValidContributorRole(role) {
		return nil, types.ValidationError(fmt.Sprintf("unknown role %q", role))
	}

	exists, err := cs.contribRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, types.MapError(err)
	}
	if exists {
		return nil, types.ConflictError("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, types.StorageError("failed to hash password")
	}

	contributor := &types.Contributor{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	// Avatar generation is best-effort: the account is created either way.
	if cs.avatars != nil {
		if avatarPath, aErr := cs.avatars.Generate(ctx, contributor.ID, name); aErr != nil {
			cs.log.Warn("Avatar generation failed", "contributor_id", contributor.ID, "error", aErr)
		} else {
			contributor.Avatar = avatarPath
		}
	}

	if _, err := cs.contribRepo.Create(ctx, nil, contributor); err != nil {
		return nil, types.MapError(err)
	}
	cs.log.Info("Contributor created", "contributor_id", contributor.ID, "email", email, "role", role)
	return contributor, nil
}

func (cs *contributorService) Update(ctx context.Context, id uuid.UUID, input ContributorUpdate) (*types.Contributor, error) {
	var updated *types.Contributor
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contributor, gErr := cs.contribRepo.GetByID(ctx, tx, id)
		if gErr != nil {
			return gErr
		}

		fields := map[string]any{}
		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return types.ValidationError("name cannot be blank")
			}
			fields["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*input.Email))
			if email == "" || !strings.Contains(email, "@") {
				return types.ValidationError("a valid email is required")
			}
			if email != contributor.Email {
				exists, eErr := cs.contribRepo.EmailExists(ctx, tx, email)
				if eErr != nil {
					return eErr
				}
				if exists {
					return types.ConflictError("email is already registered")
				}
				fields["email"] = email
			}
		}
		if input.Role != nil {
			if !types.ValidContributorRole(*input.Role) {
				return types.ValidationError(fmt.Sprintf("unknown role %q", *input.Role))
			}
			fields["role"] = *input.Role
		}
		if input.IsActive != nil {
			fields["is_active"] = *input.IsActive
		}

		if uErr := cs.contribRepo.Update(ctx, tx, id, fields); uErr != nil {
			return fmt.Errorf("update contributor: %w", uErr)
		}
		reloaded, rErr := cs.contribRepo.GetByID(ctx, tx, id)
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

func (cs *contributorService) ResetPassword(ctx context.Context, id uuid.UUID, next string) error {
	if len(next) < 8 {
		return types.ValidationError("password must be at least 8 characters")
	}
	if _, err := cs.contribRepo.GetByID(ctx, nil, id); err != nil {
		return types.MapError(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return types.StorageError("failed to hash password")
	}
	if uErr := cs.contribRepo.Update(ctx, nil, id, map[string]any{"password": string(hash)}); uErr != nil {
		return types.MapError(uErr)
	}
	cs.log.Info("Password reset", "contributor_id", id)
	return nil
}

func (cs *contributorService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return types.ValidationError("you cannot delete your own account")
	}
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, gErr := cs.contribRepo.GetByID(ctx, tx, id); gErr != nil {
			return gErr
		}
		if _, gErr := cs.contribRepo.GetByID(ctx, tx, actorID); gErr != nil {
			return gErr
		}

		if rErr := cs.entityRepo.ReassignCreator(ctx, tx, id, actorID); rErr != nil {
			return fmt.Errorf("reassign entities: %w", rErr)
		}
		if rErr := cs.versionRepo.ReassignCreator(ctx, tx, id, actorID); rErr != nil {
			return fmt.Errorf("reassign versions: %w", rErr)
		}
		if rErr := cs.fileRepo.ReassignUploader(ctx, tx, id, actorID); rErr != nil {
			return fmt.Errorf("reassign files: %w", rErr)
		}
		if rErr := cs.historyRepo.ReassignActor(ctx, tx, id, actorID); rErr != nil {
			return fmt.Errorf("reassign history: %w", rErr)
		}
		if dErr := cs.assignmentRepo.DeleteByContributor(ctx, tx, id); dErr != nil {
			return fmt.Errorf("remove assignments: %w", dErr)
		}
		return cs.contribRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return types.MapError(err)
	}
	cs.log.Info("Contributor deleted", "contributor_id", id, "reassigned_to", actorID)
	return nil
}

func (cs *contributorService) Stats(ctx context.Context, id uuid.UUID) (*ContributorStats, error) {
	if _, err := cs.contribRepo.GetByID(ctx, nil, id); err != nil {
		return nil, types.MapError(err)
	}
	assigned, err := cs.assignmentRepo.CountByContributor(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	versions, err := cs.versionRepo.CountByCreator(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	return &ContributorStats{
		ContributorID:    id,
		AssignedEntities: assigned,
		VersionsCreated:  versions,
	}, nil
}
