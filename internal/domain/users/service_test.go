package users

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mustafanalbant1/Event-Finder/internal/domain/ids"
)

type memoryRepo struct {
	users map[string]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User)}
}

func (m *memoryRepo) Create(_ context.Context, user User) (User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return User{}, ErrEmailTaken
		}
	}
	user.ID = ids.New()
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepo) Update(_ context.Context, id string, update ProfileUpdate) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Email != nil {
		for otherID, other := range m.users {
			if otherID != id && other.Email == *update.Email {
				return nil, ErrEmailTaken
			}
		}
		user.Email = *update.Email
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	m.users[id] = user
	return &user, nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "Ada@Example.COM",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("expected lowercased email, got %q", user.Email)
	}
	if user.PasswordHash == "hunter22" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if user.Avatar != DefaultAvatar {
		t.Errorf("expected default avatar %q, got %q", DefaultAvatar, user.Avatar)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err = svc.Register(ctx, RegisterInput{Name: "Imposter", Email: "ADA@example.com", Password: "hunter33"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// First user unaffected.
	got, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first user: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("first user mutated: %#v", got)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: "hunter22"}, "name"},
		{"missing email", RegisterInput{Name: "Ada", Password: "hunter22"}, "email"},
		{"bad email", RegisterInput{Name: "Ada", Email: "nope", Password: "hunter22"}, "email"},
		{"short password", RegisterInput{Name: "Ada", Email: "a@b.co", Password: "abc"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected field %q in %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestRegister_StripsHTMLFromName(t *testing.T) {
	svc, _ := newTestService()
	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada <script>alert(1)</script>",
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Name != "Ada" {
		t.Errorf("expected sanitized name, got %q", user.Name)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %s, got %s", registered.ID, user.ID)
	}
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Wrong password and unknown email must be indistinguishable.
	_, wrongPass := svc.Authenticate(ctx, "ada@example.com", "wrong")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@example.com", "hunter22")

	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name := "Ada Lovelace"
	avatar := "7"
	password := "newpassword"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		Name:     &name,
		Avatar:   &avatar,
		Password: &password,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Ada Lovelace" || updated.Avatar != "7" {
		t.Errorf("unexpected update result: %#v", updated)
	}
	if updated.Email != "ada@example.com" {
		t.Errorf("email changed unexpectedly: %q", updated.Email)
	}

	// New password works, old one does not.
	if _, err := svc.Authenticate(ctx, "ada@example.com", "newpassword"); err != nil {
		t.Errorf("authenticate with new password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ada@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password should fail, got %v", err)
	}
}

func TestUpdateProfile_BadEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	bad := "not-an-email"
	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Email: &bad})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
