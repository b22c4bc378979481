package services

import (
	"context"
	"errors"
	"log"

	"github.com/profilehub/apiserver/internal/auth"
	"github.com/profilehub/apiserver/internal/mailer"
	"github.com/profilehub/apiserver/internal/store"
	"github.com/profilehub/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateRoles(ctx context.Context, id int, roles []string) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Deactivate(ctx context.Context, id int) (types.User, error)
}

// AuthService composes the credential store, password hasher, token
// issuer, OTP issuer, and mail capability into the account flows.
type AuthService struct {
	users    UserRepository
	tokens   *auth.TokenIssuer
	otp      *auth.OTPIssuer
	mail     mailer.Mailer
	resetURL string
}

func NewAuthService(users UserRepository, tokens *auth.TokenIssuer, otp *auth.OTPIssuer, mail mailer.Mailer, resetURL string) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		otp:      otp,
		mail:     mail,
		resetURL: resetURL,
	}
}

// Register creates a new active account holding the baseline role and
// sends a welcome mail. The returned user is sanitized.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (types.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, upstream(err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Roles:        []string{auth.RoleUser},
		PasswordHash: hashed,
		IsActive:     true,
	})
	if err != nil {
		// A concurrent registration can win the race between the
		// lookup and the insert; the unique index settles it.
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, upstream(err)
	}

	// Fire-and-forget: a mail failure never fails the registration.
	if err := s.mail.Send(ctx, user.Email, "Welcome", mailer.TemplateWelcome, map[string]string{
		"FullName": user.FullName(),
	}); err != nil {
		log.Printf("welcome mail to %s failed: %v", user.Email, err)
	}

	return user.Sanitized(), nil
}

// Login verifies credentials and mints a session token carrying the
// user's identity and roles.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", types.User{}, err
		}
		return "", types.User{}, upstream(err)
	}

	if !user.IsActive {
		return "", types.User{}, ErrAccountInactive
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", types.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Roles)
	if err != nil {
		return "", types.User{}, err
	}
	return token, user.Sanitized(), nil
}

// RequestPasswordReset issues a recovery code and mails it to the
// account's address. The result does not reveal whether the account is
// active.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return upstream(err)
	}

	code := s.otp.Issue()
	if err := s.mail.Send(ctx, user.Email, "Password reset", mailer.TemplateResetPassword, map[string]string{
		"FullName": user.FullName(),
		"Token":    code,
		"URL":      s.resetURL,
	}); err != nil {
		log.Printf("reset mail to %s failed: %v", user.Email, err)
	}
	return nil
}

// ConfirmPasswordReset verifies the recovery code and replaces the
// account's password hash.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return upstream(err)
	}

	if !s.otp.Verify(code) {
		return ErrInvalidResetCode
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return upstream(err)
	}
	return nil
}

// DeactivateAccount flips the caller's account inactive after verifying
// the supplied password. Deactivation is terminal.
func (s *AuthService) DeactivateAccount(ctx context.Context, userID int, password string) (types.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, err
		}
		return types.User{}, upstream(err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}

	deactivated, err := s.users.Deactivate(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, err
		}
		return types.User{}, upstream(err)
	}
	return deactivated.Sanitized(), nil
}

// GrantRoles adds roles to the target user's set. The baseline role is
// always re-asserted.
func (s *AuthService) GrantRoles(ctx context.Context, userID int, roles []string) (types.User, error) {
	return s.mutateRoles(ctx, userID, roles, auth.GrantRoles)
}

// RevokeRoles removes roles from the target user's set. The baseline
// role cannot be revoked.
func (s *AuthService) RevokeRoles(ctx context.Context, userID int, roles []string) (types.User, error) {
	return s.mutateRoles(ctx, userID, roles, auth.RevokeRoles)
}

func (s *AuthService) mutateRoles(ctx context.Context, userID int, roles []string, apply func(current, submitted []string) []string) (types.User, error) {
	if !auth.ValidateRoles(roles) {
		return types.User{}, ErrInvalidRoles
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, err
		}
		return types.User{}, upstream(err)
	}

	updated, err := s.users.UpdateRoles(ctx, user.ID, apply(user.Roles, roles))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, err
		}
		return types.User{}, upstream(err)
	}
	return updated.Sanitized(), nil
}
