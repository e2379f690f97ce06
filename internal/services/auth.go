package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// AuthClaims are the JWT claims issued at login.
type AuthClaims struct {
	ContributorID uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	jwt.RegisteredClaims
}

// ProfileUpdate carries the self-service profile fields.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

type AuthService interface {
	Register(ctx context.Context, input ContributorInput) (*types.Contributor, string, error)
	Login(ctx context.Context, email, password string) (*types.Contributor, string, error)
	// Verify parses and validates a token, returning its claims.
	Verify(tokenString string) (*AuthClaims, error)
	Me(ctx context.Context, id uuid.UUID) (*types.Contributor, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileUpdate) (*types.Contributor, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	contribRepo  repos.ContributorRepo
	contributors ContributorService
	secret       []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func NewAuthService(db *gorm.DB, log *logger.Logger, contribRepo repos.ContributorRepo, contributors ContributorService, secret string, tokenTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          serviceLog,
		contribRepo:  contribRepo,
		contributors: contributors,
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

func (as *authService) Register(ctx context.Context, input ContributorInput) (*types.Contributor, string, error) {
	// Self-registration never grants admin.
	if input.Role == types.ContributorRoleAdmin {
		input.Role = types.ContributorRoleContributor
	}
	contributor, err := as.contributors.Create(ctx, input)
	if err != nil {
		return nil, "", err
	}
	token, err := as.issue(contributor)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("Contributor registered", "contributor_id", contributor.ID, "email", contributor.Email)
	return contributor, token, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.Contributor, string, error) {
	contributor, err := as.contribRepo.GetByEmail(ctx, nil, email)
	if err == gorm.ErrRecordNotFound {
		return nil, "", types.ValidationError("invalid email or password")
	}
	if err != nil {
		return nil, "", types.MapError(err)
	}
	if !contributor.IsActive {
		return nil, "", types.ValidationError("account is deactivated")
	}
	if bErr := bcrypt.CompareHashAndPassword([]byte(contributor.Password), []byte(password)); bErr != nil {
		return nil, "", types.ValidationError("invalid email or password")
	}

	loginAt := as.now()
	if tErr := as.contribRepo.TouchLastLogin(ctx, nil, contributor.ID, loginAt); tErr != nil {
		as.log.Warn("Failed to record login time", "contributor_id", contributor.ID, "error", tErr)
	} else {
		contributor.LastLogin = &loginAt
	}

	token, err := as.issue(contributor)
	if err != nil {
		return nil, "", err
	}
	return contributor, token, nil
}

func (as *authService) issue(contributor *types.Contributor) (string, error) {
	now := as.now()
	claims := AuthClaims{
		ContributorID: contributor.ID,
		Email:         contributor.Email,
		Role:          contributor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.tokenTTL)),
			Subject:   contributor.ID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.secret)
	if err != nil {
		return "", types.ConfigurationError("failed to sign token")
	}
	return signed, nil
}

func (as *authService) Verify(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return as.secret, nil
	}, jwt.WithTimeFunc(as.now))
	if err != nil || !token.Valid {
		return nil, types.ValidationError("invalid or expired token")
	}
	return claims, nil
}

func (as *authService) Me(ctx context.Context, id uuid.UUID) (*types.Contributor, error) {
	contributor, err := as.contribRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	return contributor, nil
}

func (as *authService) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileUpdate) (*types.Contributor, error) {
	return as.contributors.Update(ctx, id, ContributorUpdate{
		Name:  input.Name,
		Email: input.Email,
	})
}

func (as *authService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if len(next) < 8 {
		return types.ValidationError("password must be at least 8 characters")
	}
	contributor, err := as.contribRepo.GetByID(ctx, nil, id)
	if err != nil {
		return types.MapError(err)
	}
	if bErr := bcrypt.CompareHashAndPassword([]byte(contributor.Password), []byte(current)); bErr != nil {
		return types.ValidationError("current password is incorrect")
	}
	if strings.TrimSpace(next) == current {
		return types.ValidationError("new password must differ from the current one")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return types.StorageError("failed to hash password")
	}
	if uErr := as.contribRepo.Update(ctx, nil, id, map[string]any{"password": string(hash)}); uErr != nil {
		return types.MapError(uErr)
	}
	as.log.Info("Password changed", "contributor_id", id)
	return nil
}
