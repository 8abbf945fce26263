package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages account lifecycle: registration, credential checks, and
// profile updates. All email handling goes through NormalizeEmail so the
// store only ever sees lowercased, trimmed addresses.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates the candidate input and creates the account with
// default flags (active, not staff, not superuser). On any validation
// failure no user is created and every violated rule is reported.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	ve := NewValidationError()

	email := NormalizeEmail(reg.Email)
	switch {
	case email == "":
		ve.Add("email", "This field is required.")
	case !validEmail(email):
		ve.Add("email", "Enter a valid email address.")
	default:
		if _, err := s.repo.FindByEmail(ctx, email); err == nil {
			ve.Add("email", msgDuplicateEmail)
		} else if !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
	}

	if reg.Password == "" {
		ve.Add("password", "This field is required.")
	} else {
		for _, msg := range passwordViolations(reg.Password, email) {
			ve.Add("password", msg)
		}
	}

	if reg.Password != reg.PasswordConfirm {
		ve.Add("password_confirm", "Passwords do not match.")
	}

	if !ve.Empty() {
		return User{}, ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    truncateName(reg.FirstName),
		LastName:     truncateName(reg.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// A concurrent registration may win the unique index race after our
		// duplicate check passed; report it the same way.
		if errors.Is(err, ErrDuplicateEmail) {
			ve.Add("email", msgDuplicateEmail)
			return User{}, ve
		}
		return User{}, err
	}

	return user, nil
}

// CreateSuperuser provisions an administrative account. Not reachable over
// HTTP; used by operational tooling.
func (s *Service) CreateSuperuser(ctx context.Context, reg Registration) (User, error) {
	user, err := s.Register(ctx, reg)
	if err != nil {
		return User{}, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate checks login credentials. An unknown email and a wrong
// password produce the identical ErrInvalidCredentials so responses cannot
// be used to enumerate accounts. A disabled account is only reported after
// the password matched.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	ve := NewValidationError()
	if email == "" {
		ve.Add("email", "This field is required.")
	}
	if password == "" {
		ve.Add("password", "This field is required.")
	}
	if !ve.Empty() {
		return User{}, ve
	}

	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return User{}, ErrAccountDisabled
	}

	return user, nil
}

// GetProfile loads the caller's own record.
func (s *Service) GetProfile(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies a full or partial profile change to the caller's
// own record. A full update requires the email to be present; a partial one
// leaves absent fields untouched. The email, when present, is revalidated
// for format and uniqueness excluding the caller's current row, so
// resubmitting one's own address is not a conflict.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate, partial bool) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	ve := NewValidationError()

	if upd.Email == nil && !partial {
		ve.Add("email", "This field is required.")
	}
	if upd.Email != nil {
		email := NormalizeEmail(*upd.Email)
		switch {
		case email == "":
			ve.Add("email", "This field is required.")
		case !validEmail(email):
			ve.Add("email", "Enter a valid email address.")
		default:
			if other, err := s.repo.FindByEmail(ctx, email); err == nil && other.ID != user.ID {
				ve.Add("email", msgDuplicateEmail)
			} else if err != nil && !errors.Is(err, ErrNotFound) {
				return User{}, err
			}
			user.Email = email
		}
	}

	if !ve.Empty() {
		return User{}, ve
	}

	if upd.FirstName != nil {
		user.FirstName = truncateName(*upd.FirstName)
	}
	if upd.LastName != nil {
		user.LastName = truncateName(*upd.LastName)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			ve.Add("email", msgDuplicateEmail)
			return User{}, ve
		}
		return User{}, err
	}

	return user, nil
}
