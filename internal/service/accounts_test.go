package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roberto3101/sistema-control/internal/model"
)

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"bad email", RegisterInput{FullName: "X", Email: "nope", Password: "secreto123", Role: model.RoleSeller}, model.ErrValidation},
		{"short password", RegisterInput{FullName: "X", Email: "x@sc.pe", Password: "123", Role: model.RoleSeller}, model.ErrValidation},
		{"unknown role", RegisterInput{FullName: "X", Email: "x@sc.pe", Password: "secreto123", Role: "gerente"}, model.ErrValidation},
		{"duplicate email", RegisterInput{FullName: "X", Email: "ANA@sc.pe", Password: "secreto123", Role: model.RoleSeller}, model.ErrUserExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture(t)

	u, err := f.accounts.Authenticate(context.Background(), " Ana@SC.pe ", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, f.sellerID, u.ID)
	assert.Equal(t, model.RoleSeller, u.Role)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.Authenticate(context.Background(), "nadie@sc.pe", "secreto123")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAuthenticate_LocksAfterThreeFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i < MaxFailedLogins; i++ {
		_, err := f.accounts.Authenticate(ctx, "ana@sc.pe", "incorrecta")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	}

	_, err := f.accounts.Authenticate(ctx, "ana@sc.pe", "incorrecta")
	require.ErrorIs(t, err, model.ErrAccountLocked)

	_, err = f.accounts.Authenticate(ctx, "ana@sc.pe", "secreto123")
	require.ErrorIs(t, err, model.ErrAccountLocked)

	u, err := f.accounts.GetUser(ctx, f.sellerID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusLocked, u.Status)
	assert.Equal(t, MaxFailedLogins, u.FailedAttempts)
}

func TestAuthenticate_SuccessResetsFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Authenticate(ctx, "ana@sc.pe", "incorrecta")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = f.accounts.Authenticate(ctx, "ana@sc.pe", "secreto123")
	require.NoError(t, err)

	u, err := f.accounts.GetUser(ctx, f.sellerID)
	require.NoError(t, err)
	assert.Equal(t, 0, u.FailedAttempts)
}
