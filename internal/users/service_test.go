package users

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(ctx, "Ada Again", "ada@example.com", "other")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "s3cret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if !strings.HasPrefix(stored.PasswordHash, "scrypt:32768:8:1$") {
		t.Fatalf("expected scrypt hash, got %q", stored.PasswordHash)
	}
	if stored.Name != "Ada" {
		t.Fatalf("expected name Ada, got %q", stored.Name)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "s3cret"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "correct password", email: "ada@example.com", password: "s3cret"},
		{name: "wrong password", email: "ada@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "bob@example.com", password: "s3cret", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate: %v", err)
			}
			if user.Email != tt.email {
				t.Fatalf("expected email %s, got %s", tt.email, user.Email)
			}
		})
	}
}

func TestRegisterAcceptsLongPassword(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	long := strings.Repeat("p", 73)

	if _, err := svc.Register(context.Background(), "Ada", "ada@example.com", long); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "ada@example.com", long); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "ada@example.com", long[:72]); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected truncated password to fail, got %v", err)
	}
}

func TestAuthenticateExistingWerkzeugUser(t *testing.T) {
	repo := NewMemoryRepo()
	if err := repo.Create(context.Background(), User{Name: "Lin", Email: "lin@example.com", PasswordHash: werkzeugScrypt}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	svc := NewService(repo)

	if _, err := svc.Authenticate(context.Background(), "lin@example.com", "s3cret"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "lin@example.com", "S3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
