package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/entity"
	repo "github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/repository"
)

// memAccounts is an in-memory AccountRepository with the same uniqueness
// semantics as the postgres implementation: emails collide case-insensitively.
type memAccounts struct {
	mu       sync.Mutex
	byID     map[string]*entity.Account
	updates  int
	failGet  error
	failUpd  error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]*entity.Account{}}
}

func (m *memAccounts) Create(_ context.Context, a *entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.byID {
		if strings.EqualFold(other.Email, a.Email) {
			return repo.ErrDuplicate
		}
	}
	cp := *a
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memAccounts) List(_ context.Context) ([]*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Account, 0, len(m.byID))
	for _, a := range m.byID {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAccounts) Update(_ context.Context, a *entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpd != nil {
		return m.failUpd
	}
	if _, ok := m.byID[a.ID]; !ok {
		return repo.ErrNotFound
	}
	for id, other := range m.byID {
		if id != a.ID && strings.EqualFold(other.Email, a.Email) {
			return repo.ErrDuplicate
		}
	}
	cp := *a
	cp.UpdatedAt = time.Now()
	m.byID[a.ID] = &cp
	m.updates++
	return nil
}

func (m *memAccounts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

var _ repo.AccountRepository = (*memAccounts)(nil)

// memRoles is an in-memory RoleRegistry. failAssign lets tests force the
// partial-failure path.
type memRoles struct {
	mu          sync.Mutex
	roles       map[string]bool
	assignments map[string][]string
	failAssign  error
	failRolesOf error
}

func newMemRoles() *memRoles {
	return &memRoles{roles: map[string]bool{}, assignments: map[string][]string{}}
}

func (m *memRoles) Exists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[name], nil
}

func (m *memRoles) Create(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles[name] {
		return repo.ErrDuplicate
	}
	m.roles[name] = true
	return nil
}

func (m *memRoles) Assign(_ context.Context, accountID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAssign != nil {
		return m.failAssign
	}
	if !m.roles[name] {
		return repo.ErrNotFound
	}
	for _, r := range m.assignments[accountID] {
		if r == name {
			return nil
		}
	}
	m.assignments[accountID] = append(m.assignments[accountID], name)
	return nil
}

func (m *memRoles) Remove(_ context.Context, accountID string, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(names) == 0 {
		return nil
	}
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	kept := m.assignments[accountID][:0]
	for _, r := range m.assignments[accountID] {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	m.assignments[accountID] = kept
	return nil
}

func (m *memRoles) RolesOf(_ context.Context, accountID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRolesOf != nil {
		return nil, m.failRolesOf
	}
	return append([]string(nil), m.assignments[accountID]...), nil
}

var _ repo.RoleRepository = (*memRoles)(nil)

// fakeHasher makes hashes readable in test failures.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (fakeHasher) Verify(hash, plain string) bool    { return hash == "hashed:"+plain }
