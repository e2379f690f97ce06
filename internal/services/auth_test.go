package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contributor, token, err := env.auth.Register(ctx, ContributorInput{
		Name:     "Marie",
		Email:    "marie@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := env.auth.Verify(token)
	require.NoError(t, err)
	require.Equal(t, contributor.ID, claims.ContributorID)
	require.Equal(t, "marie@example.com", claims.Email)
	require.Equal(t, types.ContributorRoleContributor, claims.Role)
}

func TestRegisterStripsAdminRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contributor, _, err := env.auth.Register(ctx, ContributorInput{
		Name:     "Sneaky",
		Email:    "sneaky@example.com",
		Password: "longenough",
		Role:     types.ContributorRoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, types.ContributorRoleContributor, contributor.Role)
}

func TestLoginRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered, _, err := env.auth.Register(ctx, ContributorInput{
		Name:     "Marie",
		Email:    "marie@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	contributor, token, err := env.auth.Login(ctx, "marie@example.com", "longenough")
	require.NoError(t, err)
	require.Equal(t, registered.ID, contributor.ID)
	require.NotNil(t, contributor.LastLogin)
	require.NotEmpty(t, token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.auth.Register(ctx, ContributorInput{
		Name:     "Marie",
		Email:    "marie@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	_, _, err = env.auth.Login(ctx, "marie@example.com", "wrong-pass")
	require.ErrorIs(t, err, types.ErrValidation)

	// Unknown accounts fail with the same message as wrong passwords.
	_, _, err = env.auth.Login(ctx, "nobody@example.com", "longenough")
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered, _, err := env.auth.Register(ctx, ContributorInput{
		Name:     "Marie",
		Email:    "marie@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	inactive := false
	_, err = env.contributors.Update(ctx, registered.ID, ContributorUpdate{IsActive: &inactive})
	require.NoError(t, err)

	_, _, err = env.auth.Login(ctx, "marie@example.com", "longenough")
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestVerifyRejectsExpiredAndForgedTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, token, err := env.auth.Register(ctx, ContributorInput{
		Name:     "Marie",
		Email:    "marie@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	// Shift the verifier's clock past the 1h TTL.
	svc := env.auth.(*authService)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = env.auth.Verify(token)
	require.ErrorIs(t, err, types.ErrValidation)

	svc.now = time.Now
	_, err = env.auth.Verify(token + "tampered")
	require.ErrorIs(t, err, types.ErrValidation)

	// A token signed with a different secret fails too.
	log := testutil.Logger(t)
	other := NewAuthService(env.db, log, env.contribRepo, env.contributors, "other-secret", time.Hour)
	_, foreign, err := other.Login(ctx, "marie@example.com", "longenough")
	require.NoError(t, err)
	_, err = env.auth.Verify(foreign)
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered, _, err := env.auth.Register(ctx, ContributorInput{
		Name:     "Marie",
		Email:    "marie@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	err = env.auth.ChangePassword(ctx, registered.ID, "wrong", "another-pass")
	require.ErrorIs(t, err, types.ErrValidation)

	err = env.auth.ChangePassword(ctx, registered.ID, "longenough", "short")
	require.ErrorIs(t, err, types.ErrValidation)

	err = env.auth.ChangePassword(ctx, registered.ID, "longenough", "longenough")
	require.ErrorIs(t, err, types.ErrValidation)

	require.NoError(t, env.auth.ChangePassword(ctx, registered.ID, "longenough", "another-pass"))

	_, _, err = env.auth.Login(ctx, "marie@example.com", "longenough")
	require.ErrorIs(t, err, types.ErrValidation)
	_, _, err = env.auth.Login(ctx, "marie@example.com", "another-pass")
	require.NoError(t, err)
}
