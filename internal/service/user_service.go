package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/identity-access/internal/model"
	"github.com/iliyamo/identity-access/internal/rbac"
	"github.com/iliyamo/identity-access/internal/repository"
	"github.com/iliyamo/identity-access/internal/utils"
)

// UserStore is the credential-store contract consumed by the services.
// *repository.UserRepo satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByLogin(ctx context.Context, login string) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	List(ctx context.Context, p repository.ListParams) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, upd repository.UserUpdate) (model.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Warehouse is the freshness-store contract: at most one fresh refresh
// token per user, atomic single-key writes.
type Warehouse interface {
	Record(ctx context.Context, userID, token string) error
	Exists(ctx context.Context, userID string) (bool, error)
	Fresh(ctx context.Context, userID, token string) (bool, error)
	Revoke(ctx context.Context, userID string) error
}

// Mailer is the outbound email contract. Dispatch failures are logged,
// never propagated as fatal to the caller.
type Mailer interface {
	SendConfirmation(ctx context.Context, to, token string) error
	SendReset(ctx context.Context, to, token string) error
}

// strongPasswordEntropyBits and strongPasswordLength mirror the reset
// password generator settings: 16 alphanumeric characters comfortably
// clear the 56-bit entropy target.
const (
	strongPasswordEntropyBits = 56
	strongPasswordLength      = 16

	defaultRoleID   = 1 // seeded "user" role
	defaultRoleName = "user"
)

// Registration is the signup payload after transport-level decoding.
type Registration struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the self-service partial update. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	ImageURL *string `json:"image_url"`
}

// AdminUpdate extends ProfileUpdate with the fields only an admin may
// touch: password, role and the verification/block flags.
type AdminUpdate struct {
	ProfileUpdate
	Password   *string `json:"password"`
	RoleID     *uint8  `json:"role_id"`
	IsVerified *bool   `json:"is_verified"`
	IsBlocked  *bool   `json:"is_blocked"`
}

// TokenPair is the login/refresh response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserService orchestrates signup, login, token rotation, password
// lifecycle and the user CRUD surface. Admin-scoped operations pass
// through rbac.ValidateRole before touching storage; self-scoped
// operations derive the acting user id from the token's own claims.
type UserService struct {
	users      UserStore
	warehouse  Warehouse
	mailer     Mailer
	codec      *utils.TokenCodec
	bcryptCost int
}

func NewUserService(users UserStore, warehouse Warehouse, mailer Mailer, codec *utils.TokenCodec, bcryptCost int) *UserService {
	return &UserService{users: users, warehouse: warehouse, mailer: mailer, codec: codec, bcryptCost: bcryptCost}
}

// Signup validates the registration payload, stores the user in
// unverified state and queues a confirmation email. Mail dispatch is
// best-effort: a failure is logged and signup still succeeds.
func (s *UserService) Signup(ctx context.Context, reg Registration) (model.User, error) {
	if err := validateNameFields(map[string]string{
		"name": reg.Name, "surname": reg.Surname, "username": reg.Username,
	}); err != nil {
		return model.User{}, err
	}
	if reg.Email == "" {
		return model.User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if err := utils.ValidatePassword(reg.Password); err != nil {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(reg.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, ErrExternal
	}
	user, err := s.users.Create(ctx, model.User{
		Name:         reg.Name,
		Surname:      reg.Surname,
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		RoleID:       defaultRoleID,
		RoleName:     defaultRoleName,
	})
	if err != nil {
		return model.User{}, err
	}
	s.dispatchConfirmation(ctx, user)
	return user, nil
}

// ResendConfirmation re-issues the confirmation email for an
// unverified account. It reports whether the account was already
// verified, in which case no email is sent.
func (s *UserService) ResendConfirmation(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByLogin(ctx, email)
	if err != nil {
		return false, err
	}
	if user.IsVerified {
		return true, nil
	}
	s.dispatchConfirmation(ctx, user)
	return false, nil
}

// ConfirmRegistration decodes the purpose token from the confirmation
// link and flips the user to verified. Re-confirming an already
// verified account is a no-op.
func (s *UserService) ConfirmRegistration(ctx context.Context, token string) error {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return utils.ErrInvalidToken
	}
	verified := true
	_, err = s.users.Update(ctx, id, repository.UserUpdate{IsVerified: &verified})
	return err
}

// Login verifies credentials and returns a fresh access+refresh pair.
// The refresh token is recorded as the single fresh token for the
// user; recording is best-effort so a warehouse outage does not take
// logins down with it.
func (s *UserService) Login(ctx context.Context, login, password string) (TokenPair, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return TokenPair{}, err
	}
	if !user.IsVerified {
		return TokenPair{}, ErrNotVerifiedCredentials
	}
	if user.IsBlocked {
		return TokenPair{}, ErrAccountBlocked
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return TokenPair{}, ErrIncorrectPassword
	}
	pair, err := s.issuePair(user)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.warehouse.Record(ctx, user.ID.String(), pair.RefreshToken); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("login: recording refresh token failed")
	}
	return pair, nil
}

// Refresh rotates a refresh token: the presented token must decode,
// carry the refresh marker and match the warehouse entry exactly. A
// token superseded by a later login or refresh is denied. On success a
// new pair is issued and recorded; here recording must succeed, or the
// old token would stay fresh after the new one was handed out.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if !claims.Refresh {
		return TokenPair{}, utils.ErrInvalidToken
	}
	fresh, err := s.warehouse.Fresh(ctx, claims.UserID, refreshToken)
	if err != nil {
		logrus.WithError(err).Warn("refresh: warehouse unavailable")
		return TokenPair{}, ErrExternal
	}
	if !fresh {
		return TokenPair{}, utils.ErrInvalidToken
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return TokenPair{}, utils.ErrInvalidToken
	}
	// Reload so a role change since login lands in the new tokens. A
	// deleted user no longer resolves and the orphaned entry is denied.
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return TokenPair{}, err
	}
	pair, err := s.issuePair(user)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.warehouse.Record(ctx, user.ID.String(), pair.RefreshToken); err != nil {
		return TokenPair{}, ErrExternal
	}
	return pair, nil
}

// ChangePassword rehashes and stores a new password for the token's
// owner. Possession of a valid access token is the trust boundary; the
// current password is deliberately not re-checked.
func (s *UserService) ChangePassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return utils.ErrInvalidToken
	}
	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return ErrExternal
	}
	_, err = s.users.Update(ctx, id, repository.UserUpdate{PasswordHash: &hash})
	return err
}

// RequestPasswordReset issues a short-lived reset token and queues the
// reset email for an existing account.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByLogin(ctx, email)
	if err != nil {
		return err
	}
	token, err := s.codec.IssuePurpose(user.ID.String())
	if err != nil {
		return ErrExternal
	}
	if err := s.mailer.SendReset(ctx, user.Email, token); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("reset email dispatch failed")
	}
	return nil
}

// ResetPassword generates a strong random password server-side, stores
// its hash and returns the plaintext exactly once. The plaintext is
// never persisted and never logged.
func (s *UserService) ResetPassword(ctx context.Context, token string) (string, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return "", err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", utils.ErrInvalidToken
	}
	plain, err := utils.GenerateStrongPassword(strongPasswordEntropyBits, strongPasswordLength)
	if err != nil {
		return "", ErrExternal
	}
	hash, err := utils.HashPassword(plain, s.bcryptCost)
	if err != nil {
		return "", ErrExternal
	}
	if _, err := s.users.Update(ctx, id, repository.UserUpdate{PasswordHash: &hash}); err != nil {
		return "", err
	}
	return plain, nil
}

// GetCurrentUser returns the caller's own profile. Self-access is
// always permitted; no role check.
func (s *UserService) GetCurrentUser(ctx context.Context, token string) (model.User, error) {
	id, err := s.subject(token)
	if err != nil {
		return model.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

// UpdateSelf applies a partial profile update to the token's owner.
func (s *UserService) UpdateSelf(ctx context.Context, token string, upd ProfileUpdate) (model.User, error) {
	id, err := s.subject(token)
	if err != nil {
		return model.User{}, err
	}
	fields, err := upd.toRepo()
	if err != nil {
		return model.User{}, err
	}
	return s.users.Update(ctx, id, fields)
}

// DeleteSelf removes the token owner's account and revokes their
// refresh capability.
func (s *UserService) DeleteSelf(ctx context.Context, token string) error {
	id, err := s.subject(token)
	if err != nil {
		return err
	}
	return s.deleteUser(ctx, id)
}

// GetUserByID is admin-scoped.
func (s *UserService) GetUserByID(ctx context.Context, token string, id uuid.UUID) (model.User, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

// ListUsers is admin-scoped.
func (s *UserService) ListUsers(ctx context.Context, token string, p repository.ListParams) ([]model.User, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return nil, err
	}
	return s.users.List(ctx, p)
}

// UpdateUserByID is admin-scoped and may additionally change the
// password, role and verification/block flags.
func (s *UserService) UpdateUserByID(ctx context.Context, token string, id uuid.UUID, upd AdminUpdate) (model.User, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.User{}, err
	}
	fields, err := upd.ProfileUpdate.toRepo()
	if err != nil {
		return model.User{}, err
	}
	if upd.Password != nil {
		if err := utils.ValidatePassword(*upd.Password); err != nil {
			return model.User{}, err
		}
		hash, err := utils.HashPassword(*upd.Password, s.bcryptCost)
		if err != nil {
			return model.User{}, ErrExternal
		}
		fields.PasswordHash = &hash
	}
	fields.RoleID = upd.RoleID
	fields.IsVerified = upd.IsVerified
	fields.IsBlocked = upd.IsBlocked
	return s.users.Update(ctx, id, fields)
}

// DeleteUserByID is admin-scoped.
func (s *UserService) DeleteUserByID(ctx context.Context, token string, id uuid.UUID) error {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return err
	}
	return s.deleteUser(ctx, id)
}

func (s *UserService) deleteUser(ctx context.Context, id uuid.UUID) error {
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrUserNotFound
	}
	if err := s.warehouse.Revoke(ctx, id.String()); err != nil {
		logrus.WithError(err).WithField("user_id", id).Warn("revoking refresh token failed")
	}
	return nil
}

func (s *UserService) issuePair(user model.User) (TokenPair, error) {
	access, err := s.codec.IssueAccess(user.ID.String(), user.RoleName)
	if err != nil {
		return TokenPair{}, ErrExternal
	}
	refresh, err := s.codec.IssueRefresh(user.ID.String(), user.RoleName)
	if err != nil {
		return TokenPair{}, ErrExternal
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

// subject decodes any valid token and parses its user id claim.
func (s *UserService) subject(token string) (uuid.UUID, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, utils.ErrInvalidToken
	}
	return id, nil
}

func (s *UserService) dispatchConfirmation(ctx context.Context, user model.User) {
	token, err := s.codec.IssuePurpose(user.ID.String())
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("issuing confirmation token failed")
		return
	}
	if err := s.mailer.SendConfirmation(ctx, user.Email, token); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("confirmation email dispatch failed")
	}
}

func (p ProfileUpdate) toRepo() (repository.UserUpdate, error) {
	named := map[string]*string{"name": p.Name, "surname": p.Surname, "username": p.Username}
	for field, v := range named {
		if v == nil {
			continue
		}
		if err := validateNameFields(map[string]string{field: *v}); err != nil {
			return repository.UserUpdate{}, err
		}
	}
	if p.Email != nil && *p.Email == "" {
		return repository.UserUpdate{}, fmt.Errorf("%w: email must not be empty", ErrInvalidInput)
	}
	return repository.UserUpdate{
		Name:     p.Name,
		Surname:  p.Surname,
		Username: p.Username,
		Email:    p.Email,
		ImageURL: p.ImageURL,
	}, nil
}

// validateNameFields enforces the 3-15 character rule shared by name,
// surname and username.
func validateNameFields(fields map[string]string) error {
	for field, v := range fields {
		if len(v) < 3 || len(v) > 15 {
			return fmt.Errorf("%w: %s must be 3-15 characters", ErrInvalidInput, field)
		}
	}
	return nil
}
