package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/footstock/api-server/internals/store"
	"github.com/footstock/api-server/pkg/kvstore"
)

func newTestService(t *testing.T) (*AuthService, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	return New(ms, kvstore.NewMemory(), "test-secret"), ms
}

func signUp(t *testing.T, svc *AuthService, name, mail string) {
	t.Helper()
	err := svc.SignUp(context.Background(), SignUpRequestBody{
		UserName: name, MailID: mail, Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("sign up %s: %v", name, err)
	}
}

func TestSignUpOpensFundedAccount(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	signUp(t, svc, "alice", "alice@example.com")

	user, err := ms.GetUserByName(ctx, "alice")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if user.Password == "hunter22" {
		t.Error("password stored in plaintext")
	}

	account, err := ms.GetAccount(ctx, user.UserID)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if account.Balance != OpeningBalance {
		t.Errorf("balance = %v, want %v", account.Balance, OpeningBalance)
	}
	if account.TotalInvested != 0 || account.PortfolioValue != 0 {
		t.Errorf("new account not empty: %+v", account)
	}
}

func TestSignUpRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signUp(t, svc, "alice", "alice@example.com")

	err := svc.SignUp(ctx, SignUpRequestBody{
		UserName: "alice2", MailID: "alice@example.com", Password: "x",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate mail: err = %v, want ErrUserExists", err)
	}

	err = svc.SignUp(ctx, SignUpRequestBody{
		UserName: "alice", MailID: "other@example.com", Password: "x",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate name: err = %v, want ErrUserExists", err)
	}

	err = svc.SignUp(ctx, SignUpRequestBody{UserName: "bob"})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("missing fields: err = %v, want ErrMissingFields", err)
	}
}

func TestLoginAndTokenLifecycle(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	signUp(t, svc, "alice", "alice@example.com")

	token, err := svc.Login(ctx, LoginRequestBody{UserName: "alice", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	userID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	user, _ := ms.GetUserByName(ctx, "alice")
	if userID != user.UserID {
		t.Errorf("token user = %d, want %d", userID, user.UserID)
	}
	if !svc.CheckIfTokenIsWhiteListed(userID, token) {
		t.Error("fresh token not whitelisted")
	}

	if err := svc.Logout(userID, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if svc.CheckIfTokenIsWhiteListed(userID, token) {
		t.Error("token still whitelisted after logout")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signUp(t, svc, "alice", "alice@example.com")

	if _, err := svc.Login(ctx, LoginRequestBody{UserName: "alice", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, LoginRequestBody{UserName: "nobody", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateTokenRejectsForgedToken(t *testing.T) {
	svc, _ := newTestService(t)
	other := New(store.NewMemoryStore(), kvstore.NewMemory(), "other-secret")

	forged, err := other.GenerateToken(1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateToken(forged); err == nil {
		t.Error("token signed with a different secret accepted")
	}
}

func TestMultipleSessionsRevokeIndependently(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	signUp(t, svc, "alice", "alice@example.com")
	user, _ := ms.GetUserByName(ctx, "alice")

	first, err := svc.Login(ctx, LoginRequestBody{UserName: "alice", Password: "hunter22"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login(ctx, LoginRequestBody{UserName: "alice", Password: "hunter22"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if err := svc.RevokeToken(user.UserID, first); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if svc.CheckIfTokenIsWhiteListed(user.UserID, first) {
		t.Error("revoked session still whitelisted")
	}
	if !svc.CheckIfTokenIsWhiteListed(user.UserID, second) {
		t.Error("revoking one session killed the other")
	}
}
