package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mustafanalbant1/Event-Finder/internal/auth"
	"github.com/mustafanalbant1/Event-Finder/internal/sanitize"
)

// DefaultAvatar is the sentinel avatar reference assigned at registration.
const DefaultAvatar = "1"

// ValidationError reports user-correctable input problems, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "users").Logger(),
		validator: validator.New(),
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates a new user. The email is lowercased before storage so the
// unique index catches case-variant duplicates; the repository surfaces those
// as ErrEmailTaken regardless of interleaved registrations.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	input.Name = sanitize.Text(input.Name)
	input.Email = normalizeEmail(input.Email)

	if err := s.validator.Struct(input); err != nil {
		return User{}, asValidationError(err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Avatar:       DefaultAvatar,
	})
	if err != nil {
		return User{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate resolves an email/password pair to a user. Unknown email and
// wrong password both return ErrInvalidCredentials; the unknown-email path
// still performs a bcrypt comparison so the two failures cost the same.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			auth.CheckDummyPassword(password)
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return *user, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return *user, nil
}

type UpdateProfileInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Avatar   *string `json:"avatar"`
}

// UpdateProfile applies a partial update to the acting user's own record.
func (s *Service) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (User, error) {
	if input.Name != nil {
		name := sanitize.Text(*input.Name)
		if name == "" {
			return User{}, ValidationError{Fields: map[string]string{"name": "must not be empty"}}
		}
		input.Name = &name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}
	if err := s.validator.Struct(input); err != nil {
		return User{}, asValidationError(err)
	}

	update := ProfileUpdate{Name: input.Name, Email: input.Email, Avatar: input.Avatar}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	user, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return User{}, err
	}

	s.logger.Info().Str("user_id", id).Msg("profile updated")
	return *user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = "is required"
		case "email":
			fields[field] = "must be a valid email address"
		case "min":
			fields[field] = fmt.Sprintf("must be at least %s characters", fe.Param())
		default:
			fields[field] = "is invalid"
		}
	}
	return ValidationError{Fields: fields}
}
