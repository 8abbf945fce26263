package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository())
}

func validRegistration() Registration {
	return Registration{
		Email:           "test@example.com",
		Password:        "TestPass123!",
		PasswordConfirm: "TestPass123!",
		FirstName:       "Test",
		LastName:        "User",
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := newTestService()
	reg := validRegistration()
	reg.Email = "  Test@Example.com  "

	user, err := svc.Register(context.Background(), reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "test@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if !user.IsActive || user.IsStaff || user.IsSuperuser {
		t.Fatalf("unexpected default flags: active=%v staff=%v super=%v",
			user.IsActive, user.IsStaff, user.IsSuperuser)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	reg := validRegistration()
	reg.Email = "TEST@EXAMPLE.COM"
	_, err := svc.Register(ctx, reg)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if msgs := ve.Fields["email"]; len(msgs) != 1 || !strings.Contains(msgs[0], "already exists") {
		t.Fatalf("expected duplicate email error, got %v", ve.Fields)
	}
}

func TestRegisterWeakPasswordListsEveryViolation(t *testing.T) {
	svc := newTestService()
	reg := validRegistration()
	reg.Password = "short" // too short, no uppercase, no digit
	reg.PasswordConfirm = "short"

	_, err := svc.Register(context.Background(), reg)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := len(ve.Fields["password"]); got != 3 {
		t.Fatalf("expected 3 password violations, got %d: %v", got, ve.Fields["password"])
	}
}

func TestRegisterPasswordMismatchCreatesNothing(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	reg := validRegistration()
	reg.PasswordConfirm = "Different123!"

	_, err := svc.Register(context.Background(), reg)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["password_confirm"]; !ok {
		t.Fatalf("expected password_confirm error, got %v", ve.Fields)
	}
	if _, err := repo.FindByEmail(context.Background(), "test@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatal("user was created despite validation failure")
	}
}

func TestRegisterTruncatesLongNames(t *testing.T) {
	svc := newTestService()
	reg := validRegistration()
	reg.FirstName = strings.Repeat("x", 50)

	user, err := svc.Register(context.Background(), reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(user.FirstName) != maxNameLength {
		t.Fatalf("expected first name truncated to %d, got %d", maxNameLength, len(user.FirstName))
	}
}

func TestRegisterKeepsUnicodeNames(t *testing.T) {
	svc := newTestService()
	reg := validRegistration()
	reg.FirstName = "山田"
	reg.LastName = "太郎"

	user, err := svc.Register(context.Background(), reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.FirstName != "山田" || user.LastName != "太郎" {
		t.Fatalf("unicode names altered: %q %q", user.FirstName, user.LastName)
	}
	if user.FullName() != "山田 太郎" {
		t.Fatalf("full name: %q", user.FullName())
	}
}

func TestAuthenticateEnumerationResistance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, errUnknown := svc.Authenticate(ctx, "nobody@example.com", "TestPass123!")
	_, errWrongPw := svc.Authenticate(ctx, "test@example.com", "WrongPass123!")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", errUnknown)
	}
	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatal("error payloads differ between unknown email and wrong password")
	}
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	svc := newTestService()
	_, err := svc.Authenticate(context.Background(), "", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["email"]; !ok {
		t.Fatalf("missing email error: %v", ve.Fields)
	}
	if _, ok := ve.Fields["password"]; !ok {
		t.Fatalf("missing password error: %v", ve.Fields)
	}
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	user.IsActive = false
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// Correct password, disabled account.
	if _, err := svc.Authenticate(ctx, user.Email, "TestPass123!"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
	// Wrong password on a disabled account must not reveal the disabled
	// state: the hash is checked first.
	if _, err := svc.Authenticate(ctx, user.Email, "WrongPass123!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUppercaseEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "Test@Example.COM", "TestPass123!"); err != nil {
		t.Fatalf("authenticate with cased email: %v", err)
	}
}

func TestUpdateProfileSelfEmailResubmission(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	email := user.Email
	first := "X"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: &email, FirstName: &first}, false)
	if err != nil {
		t.Fatalf("resubmitting own email should not conflict: %v", err)
	}
	if updated.FirstName != "X" {
		t.Fatalf("first name not updated: %q", updated.FirstName)
	}
}

func TestUpdateProfileFullRequiresEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	first := "X"
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{FirstName: &first}, false)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["email"]; !ok {
		t.Fatalf("expected email required error, got %v", ve.Fields)
	}
}

func TestUpdateProfilePartialLeavesOtherFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	first := "Changed"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{FirstName: &first}, true)
	if err != nil {
		t.Fatalf("partial update: %v", err)
	}
	if updated.FirstName != "Changed" {
		t.Fatalf("first name not updated: %q", updated.FirstName)
	}
	if updated.LastName != user.LastName || updated.Email != user.Email {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}
	if !updated.UpdatedAt.After(user.UpdatedAt) && !updated.UpdatedAt.Equal(user.UpdatedAt) {
		t.Fatal("updated_at went backwards")
	}
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register first: %v", err)
	}
	other := validRegistration()
	other.Email = "other@example.com"
	second, err := svc.Register(ctx, other)
	if err != nil {
		t.Fatalf("register second: %v", err)
	}

	taken := "test@example.com"
	_, err = svc.UpdateProfile(ctx, second.ID, ProfileUpdate{Email: &taken}, true)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if msgs := ve.Fields["email"]; len(msgs) == 0 || !strings.Contains(msgs[0], "already exists") {
		t.Fatalf("expected duplicate email error, got %v", ve.Fields)
	}
}

func TestCreateSuperuser(t *testing.T) {
	svc := newTestService()
	user, err := svc.CreateSuperuser(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("create superuser: %v", err)
	}
	if !user.IsStaff || !user.IsSuperuser || !user.IsActive {
		t.Fatalf("unexpected flags: %+v", user)
	}
}
