package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/siftbridge/internal/account/domain"
	"github.com/smallbiznis/siftbridge/internal/account/repository"
	"github.com/smallbiznis/siftbridge/internal/events"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAccounts(t *testing.T) (domain.Service, *events.Bus) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	bus := events.NewBus()
	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Bus:   bus,
	})
	return svc, bus
}

func register(t *testing.T, svc domain.Service, email, login, password string) domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    email,
		Login:    login,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestRegisterPublishesAccountCreated(t *testing.T) {
	svc, bus := setupAccounts(t)

	var created []events.AccountCreated
	bus.OnAccountCreated(func(ctx context.Context, e events.AccountCreated) {
		created = append(created, e)
	})

	user := register(t, svc, "ada@example.com", "ada", "correct horse")

	if len(created) != 1 || created[0].UserID != user.ID {
		t.Fatalf("created events = %+v", created)
	}
	if user.PasswordHash == "correct horse" {
		t.Fatal("password stored in clear")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := setupAccounts(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "no-at-sign", Password: "long enough"})
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Errorf("err = %v, want ErrInvalidEmail", err)
	}

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "short"})
	if !errors.Is(err, domain.ErrInvalidPassword) {
		t.Errorf("err = %v, want ErrInvalidPassword", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := setupAccounts(t)
	register(t, svc, "ada@example.com", "ada", "correct horse")

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "ada@example.com",
		Login:    "ada2",
		Password: "correct horse",
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, bus := setupAccounts(t)
	register(t, svc, "ada@example.com", "ada", "correct horse")

	var succeeded []events.LoginSucceeded
	var failed []events.LoginFailed
	bus.OnLoginSucceeded(func(ctx context.Context, e events.LoginSucceeded) {
		succeeded = append(succeeded, e)
	})
	bus.OnLoginFailed(func(ctx context.Context, e events.LoginFailed) {
		failed = append(failed, e)
	})

	// Both the login name and the email address work.
	for _, input := range []string{"ada", "ada@example.com"} {
		if _, err := svc.Authenticate(context.Background(), input, "correct horse"); err != nil {
			t.Fatalf("authenticate %q: %v", input, err)
		}
	}

	if len(succeeded) != 2 {
		t.Errorf("succeeded events = %d", len(succeeded))
	}
	if len(failed) != 0 {
		t.Errorf("failed events = %d", len(failed))
	}
	if succeeded[0].User == nil || succeeded[0].User.Email != "ada@example.com" {
		t.Errorf("event user = %+v", succeeded[0].User)
	}
}

func TestAuthenticateFailurePublishesWithInput(t *testing.T) {
	svc, bus := setupAccounts(t)
	register(t, svc, "ada@example.com", "ada", "correct horse")

	var failed []events.LoginFailed
	bus.OnLoginFailed(func(ctx context.Context, e events.LoginFailed) {
		failed = append(failed, e)
	})

	ctx := context.Background()

	// Wrong password on a real account and an unknown login both fail the
	// same way, carrying the attempted login name.
	if _, err := svc.Authenticate(ctx, "ada", "wrong password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bob", "whatever!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}

	if len(failed) != 2 {
		t.Fatalf("failed events = %d", len(failed))
	}
	if failed[0].Login != "ada" || failed[1].Login != "bob" {
		t.Errorf("failed events = %+v", failed)
	}
}

func TestUpdateProfilePublishesPriorHash(t *testing.T) {
	svc, bus := setupAccounts(t)
	user := register(t, svc, "ada@example.com", "ada", "correct horse")

	var updated []events.AccountUpdated
	bus.OnAccountUpdated(func(ctx context.Context, e events.AccountUpdated) {
		updated = append(updated, e)
	})

	ctx := context.Background()

	// Password rotation: the event carries the hash from before the change.
	after, err := svc.UpdateProfile(ctx, user.ID, domain.UpdateProfileRequest{NewPassword: "battery staple"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("updated events = %d", len(updated))
	}
	if updated[0].PriorPasswordHash != user.PasswordHash {
		t.Error("event does not carry the prior hash")
	}
	if after.PasswordHash == user.PasswordHash {
		t.Error("password hash unchanged")
	}

	// Meta-only update: prior and current hash are the same.
	_, err = svc.UpdateProfile(ctx, user.ID, domain.UpdateProfileRequest{
		Meta: map[string]any{"billing_city": "London"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("updated events = %d", len(updated))
	}
	if updated[1].PriorPasswordHash != after.PasswordHash {
		t.Error("prior hash should match the unchanged hash")
	}

	final, err := svc.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.Meta["billing_city"] != "London" {
		t.Errorf("meta = %v", final.Meta)
	}
}
