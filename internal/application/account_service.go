package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/entity"
	repo "github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/repository"
)

// Service orchestrates the account store, the role registry and the
// credential hasher. Handlers are stateless; concurrent calls for the same
// account are serialized only by the store's own constraints.
type Service struct {
	Accounts repo.AccountRepository
	Roles    repo.RoleRepository
	Hasher   CredentialHasher
	Logger   *logrus.Logger

	DefaultRole          string
	MinPasswordLength    int
	ConfirmEmailOnCreate bool

	Indexer *SearchIndexer
}

func NewService(accounts repo.AccountRepository, roles repo.RoleRepository, hasher CredentialHasher, logger *logrus.Logger, defaultRole string, minPasswordLength int, confirmOnCreate bool, indexer *SearchIndexer) *Service {
	return &Service{
		Accounts:             accounts,
		Roles:                roles,
		Hasher:               hasher,
		Logger:               logger,
		DefaultRole:          defaultRole,
		MinPasswordLength:    minPasswordLength,
		ConfirmEmailOnCreate: confirmOnCreate,
		Indexer:              indexer,
	}
}

// AccountView is the outward shape of an account. The password hash never
// appears here. RoleName carries only the first assigned role.
type AccountView struct {
	AccountID   string `json:"account_id"`
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	RoleName    string `json:"role_name,omitempty"`
}

// checkDeadline aborts before the next dependent store call when the ambient
// call deadline already expired. Best-effort; in-flight calls are not cut.
func checkDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return unexpected(err)
	}
	return nil
}

// CreateAccount persists a new account and assigns the default role, lazily
// creating that role when the registry does not yet contain it. A role
// assignment failure after the account was persisted is reported as a
// partial failure; the account is not rolled back and the returned id stays
// valid.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (string, error) {
	if len(password) < s.MinPasswordLength {
		return "", validationError(fmt.Sprintf("Passwords must be at least %d characters.", s.MinPasswordLength))
	}

	if _, err := s.Accounts.GetByEmail(ctx, email); err == nil {
		return "", validationError(fmt.Sprintf("Email '%s' is already taken.", email))
	} else if !errors.Is(err, repo.ErrNotFound) {
		return "", unexpected(err)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return "", unexpected(err)
	}

	a := &entity.Account{
		ID:             uuid.NewString(),
		Email:          email,
		UserName:       email,
		PasswordHash:   hash,
		EmailConfirmed: s.ConfirmEmailOnCreate,
	}

	if err := checkDeadline(ctx); err != nil {
		return "", err
	}
	if err := s.Accounts.Create(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return "", validationError(fmt.Sprintf("Email '%s' is already taken.", email))
		}
		return "", unexpected(err)
	}

	if err := s.assignDefaultRole(ctx, a.ID); err != nil {
		return a.ID, partialFailure("Account was created but role assignment failed.", err)
	}

	s.Indexer.IndexAccount(ctx, a, s.DefaultRole)
	return a.ID, nil
}

func (s *Service) assignDefaultRole(ctx context.Context, accountID string) error {
	exists, err := s.Roles.Exists(ctx, s.DefaultRole)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.Roles.Create(ctx, s.DefaultRole); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			return err
		}
	}
	return s.Roles.Assign(ctx, accountID, s.DefaultRole)
}

// GetAccount returns the view of a single account, including its first
// assigned role when one exists.
func (s *Service) GetAccount(ctx context.Context, id string) (*AccountView, error) {
	a, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError(MsgNoAccount)
		}
		return nil, unexpected(err)
	}
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}
	roles, err := s.Roles.RolesOf(ctx, a.ID)
	if err != nil {
		return nil, unexpected(err)
	}
	return viewOf(a, roles), nil
}

// ListAccounts resolves every account's role individually; any lookup
// failure fails the whole call. An empty store yields an empty slice.
func (s *Service) ListAccounts(ctx context.Context) ([]*AccountView, error) {
	accounts, err := s.Accounts.List(ctx)
	if err != nil {
		return nil, unexpected(err)
	}
	views := make([]*AccountView, 0, len(accounts))
	for _, a := range accounts {
		if err := checkDeadline(ctx); err != nil {
			return nil, err
		}
		roles, err := s.Roles.RolesOf(ctx, a.ID)
		if err != nil {
			return nil, unexpected(err)
		}
		views = append(views, viewOf(a, roles))
	}
	return views, nil
}

// ValidateCredentials checks an email/password pair. An unknown email and a
// wrong password produce the same message so callers cannot enumerate
// accounts.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return "", validationError(MsgMissingCredentials)
	}
	a, err := s.Accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", authenticationError(MsgInvalidCredentials)
		}
		return "", unexpected(err)
	}
	if !s.Hasher.Verify(a.PasswordHash, password) {
		return "", authenticationError(MsgInvalidCredentials)
	}
	return a.ID, nil
}

// UpdatePhoneNumber overwrites the phone number. A byte-identical value
// skips the write entirely and still reports success.
func (s *Service) UpdatePhoneNumber(ctx context.Context, id, phoneNumber string) error {
	a, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError(MsgNoAccount)
		}
		return unexpected(err)
	}
	if a.PhoneNumber == phoneNumber {
		return nil
	}
	a.PhoneNumber = phoneNumber
	if err := checkDeadline(ctx); err != nil {
		return err
	}
	if err := s.Accounts.Update(ctx, a); err != nil {
		return unexpected(err)
	}
	s.Indexer.IndexAccount(ctx, a, "")
	return nil
}

// DeleteAccountById removes the account immediately. No soft delete.
func (s *Service) DeleteAccountById(ctx context.Context, id string) error {
	if _, err := s.Accounts.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError(MsgNoAccount)
		}
		return unexpected(err)
	}
	if err := checkDeadline(ctx); err != nil {
		return err
	}
	if err := s.Accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError(MsgNoAccount)
		}
		return unexpected(err)
	}
	s.Indexer.RemoveAccount(ctx, id)
	return nil
}

// ChangeUserRole replaces the account's role assignment with newRole. The
// target role must already exist; this operation never creates roles. When
// removal succeeds but assignment fails the account is left with zero roles
// and the caller sees a partial failure.
func (s *Service) ChangeUserRole(ctx context.Context, id, newRole string) error {
	a, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError(MsgUserNotFound)
		}
		return unexpected(err)
	}

	exists, err := s.Roles.Exists(ctx, newRole)
	if err != nil {
		return unexpected(err)
	}
	if !exists {
		return validationError(fmt.Sprintf("Role '%s' does not exist.", newRole))
	}

	current, err := s.Roles.RolesOf(ctx, a.ID)
	if err != nil {
		return unexpected(err)
	}
	if err := checkDeadline(ctx); err != nil {
		return err
	}
	if err := s.Roles.Remove(ctx, a.ID, current); err != nil {
		return unexpected(err)
	}
	if err := s.Roles.Assign(ctx, a.ID, newRole); err != nil {
		return partialFailure("Existing roles were removed but the new role could not be assigned.", err)
	}
	s.Indexer.IndexAccount(ctx, a, newRole)
	return nil
}

// SearchAccounts queries the search mirror.
func (s *Service) SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	return s.Indexer.SearchAccounts(ctx, q, size)
}

func viewOf(a *entity.Account, roles []string) *AccountView {
	v := &AccountView{
		AccountID:   a.ID,
		UserName:    a.UserName,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
	}
	if len(roles) > 0 {
		v.RoleName = roles[0]
	}
	return v
}
