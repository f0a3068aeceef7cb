package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/requestdata"
	"github.com/hybridlms/backend/internal/types"
)

func TestRegisterLoginAndTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.RegisterUser(ctx, &types.User{
		Email:     "Learner@Test.dev",
		Password:  "secret123",
		FirstName: "Lea",
		LastName:  "Rner",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "learner@test.dev" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.Role != types.RoleStudent {
		t.Fatalf("expected default student role, got %s", user.Role)
	}
	if user.Password == "secret123" {
		t.Fatal("password stored in plaintext")
	}

	if _, err := env.auth.RegisterUser(ctx, &types.User{
		Email:    "learner@test.dev",
		Password: "other",
	}); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("duplicate email should be invalid state, got %v", err)
	}

	access, refresh, err := env.auth.LoginUser(ctx, "learner@test.dev", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected a token pair")
	}

	authedCtx, err := env.auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("token verification failed: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID || rd.Role != types.RoleStudent {
		t.Fatalf("claims not loaded into context: %+v", rd)
	}

	me, err := env.users.GetMe(authedCtx)
	if err != nil {
		t.Fatalf("get me failed: %v", err)
	}
	if me.ID != user.ID {
		t.Fatalf("expected own user, got %s", me.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, _, err := env.auth.LoginUser(ctx, "ghost@test.dev", "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown email should be not found, got %v", err)
	}

	if _, err := env.auth.RegisterUser(ctx, &types.User{Email: "a@test.dev", Password: "right"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := env.auth.LoginUser(ctx, "a@test.dev", "wrong"); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("wrong password should be invalid state, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.auth.RegisterUser(ctx, &types.User{Email: "a@test.dev", Password: "pw"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, refresh, err := env.auth.LoginUser(ctx, "a@test.dev", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{RefreshToken: refresh})
	access2, refresh2, err := env.auth.RefreshUser(refreshCtx)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if access2 == "" || refresh2 == refresh {
		t.Fatal("refresh must rotate the token pair")
	}

	// The old refresh token is gone after rotation.
	if _, _, err := env.auth.RefreshUser(refreshCtx); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("stale refresh token should be not found, got %v", err)
	}
}
