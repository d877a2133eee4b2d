package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VentixeEventManagement/AccountServiceProvider/config"
	"github.com/VentixeEventManagement/AccountServiceProvider/internal/application"
	"github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/entity"
	repo "github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/repository"
	"github.com/VentixeEventManagement/AccountServiceProvider/pkg/helpers"
	"github.com/VentixeEventManagement/AccountServiceProvider/pkg/validation"
)

type stubAccounts struct {
	mu      sync.Mutex
	byID    map[string]*entity.Account
	failGet error
}

func newStubAccounts() *stubAccounts { return &stubAccounts{byID: map[string]*entity.Account{}} }

func (s *stubAccounts) Create(_ context.Context, a *entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.byID {
		if strings.EqualFold(other.Email, a.Email) {
			return repo.ErrDuplicate
		}
	}
	cp := *a
	s.byID[a.ID] = &cp
	return nil
}

func (s *stubAccounts) GetByID(_ context.Context, id string) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	a, ok := s.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubAccounts) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byID {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *stubAccounts) List(_ context.Context) ([]*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Account, 0, len(s.byID))
	for _, a := range s.byID {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (s *stubAccounts) Update(_ context.Context, a *entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *a
	s.byID[a.ID] = &cp
	return nil
}

func (s *stubAccounts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type stubRoles struct {
	mu          sync.Mutex
	roles       map[string]bool
	assignments map[string][]string
}

func newStubRoles() *stubRoles {
	return &stubRoles{roles: map[string]bool{}, assignments: map[string][]string{}}
}

func (s *stubRoles) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles[name], nil
}

func (s *stubRoles) Create(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roles[name] {
		return repo.ErrDuplicate
	}
	s.roles[name] = true
	return nil
}

func (s *stubRoles) Assign(_ context.Context, accountID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.roles[name] {
		return repo.ErrNotFound
	}
	s.assignments[accountID] = append(s.assignments[accountID], name)
	return nil
}

func (s *stubRoles) Remove(_ context.Context, accountID string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		return nil
	}
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	kept := s.assignments[accountID][:0]
	for _, r := range s.assignments[accountID] {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	s.assignments[accountID] = kept
	return nil
}

func (s *stubRoles) RolesOf(_ context.Context, accountID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.assignments[accountID]...), nil
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }
func (plainHasher) Verify(hash, plain string) bool    { return hash == "h:"+plain }

type envelope struct {
	Status    int             `json:"status"`
	Succeeded bool            `json:"succeeded"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubAccounts, *stubRoles) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	accounts := newStubAccounts()
	roles := newStubRoles()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := application.NewService(accounts, roles, plainHasher{}, logger, "User", 8, false, nil)
	cfg := &config.Config{
		MinPasswordLength:   8,
		ConfirmTokenTTL:     time.Hour,
		ResetTokenTTL:       time.Hour,
		ChangeEmailTokenTTL: time.Hour,
	}
	flow := application.NewTokenFlow(accounts, helpers.NewSecurityTokenCodec("test-secret"), plainHasher{}, logger, nil, cfg, nil)
	h := NewAccountHandler(svc, flow, logger)

	r := gin.New()
	api := r.Group("/api")
	accountsGrp := api.Group("/accounts")
	accountsGrp.POST("", h.CreateAccount)
	accountsGrp.GET("", h.GetAccounts)
	accountsGrp.POST("/validate", h.ValidateCredentials)
	accountsGrp.GET("/:id", h.GetAccount)
	accountsGrp.PUT("/:id/phone", h.UpdatePhoneNumber)
	accountsGrp.DELETE("/:id", h.DeleteAccountById)
	accountsGrp.PUT("/:id/role", h.ChangeUserRole)
	accountsGrp.POST("/:id/confirm", h.ConfirmAccount)
	accountsGrp.POST("/:id/email", h.UpdateEmail)
	accountsGrp.POST("/:id/email/confirm", h.ConfirmEmailChange)
	accountsGrp.POST("/:id/password/reset", h.ResetPassword)
	accountsGrp.POST("/:id/tokens/confirmation", h.GenerateEmailConfirmationToken)
	accountsGrp.POST("/:id/tokens/password-reset", h.GeneratePasswordResetToken)
	return r, accounts, roles
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func createAccount(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/accounts", gin.H{"email": email, "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	var data struct {
		AccountID string `json:"account_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccountID)
	return data.AccountID
}

func TestCreateAccountEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/accounts", gin.H{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Succeeded)
	assert.Equal(t, "Account was created successfully.", env.Message)
}

func TestCreateAccountRejectsMalformedEmail(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/accounts", gin.H{"email": "not-an-email", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Succeeded)
	assert.Equal(t, "invalid payload", env.Message)
	assert.NotEmpty(t, env.Error)
}

func TestCreateAccountDuplicateEmailEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)
	createAccount(t, r, "bob@example.com")

	w, env := do(t, r, http.MethodPost, "/api/accounts", gin.H{"email": "bob@example.com", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Succeeded)
	assert.Equal(t, "Email 'bob@example.com' is already taken.", env.Message)
}

func TestGetAccountNotFoundStatus(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/accounts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Succeeded)
	assert.Equal(t, "No account found.", env.Message)
}

func TestValidateCredentialsUnauthorized(t *testing.T) {
	r, _, _ := newTestRouter(t)
	createAccount(t, r, "carol@example.com")

	w, env := do(t, r, http.MethodPost, "/api/accounts/validate", gin.H{"email": "carol@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials.", env.Message)
}

func TestValidateCredentialsMissingInputEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/accounts/validate", gin.H{"email": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email and password must be provided.", env.Message)
}

func TestConfirmAccountMessages(t *testing.T) {
	r, _, _ := newTestRouter(t)
	id := createAccount(t, r, "dave@example.com")

	w, env := do(t, r, http.MethodPost, "/api/accounts/"+id+"/tokens/confirmation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)

	w, env = do(t, r, http.MethodPost, "/api/accounts/"+id+"/confirm", gin.H{"token": data.Token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email confirmed successfully.", env.Message)

	w, env = do(t, r, http.MethodPost, "/api/accounts/"+id+"/confirm", gin.H{"token": data.Token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Account is already confirmed.", env.Message)
}

func TestConfirmAccountInvalidTokenEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)
	id := createAccount(t, r, "eve@example.com")

	w, env := do(t, r, http.MethodPost, "/api/accounts/"+id+"/confirm", gin.H{"token": "garbage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired token.", env.Message)
}

func TestUpdateEmailMessages(t *testing.T) {
	r, _, _ := newTestRouter(t)
	id := createAccount(t, r, "frank@example.com")

	w, env := do(t, r, http.MethodPost, "/api/accounts/"+id+"/email", gin.H{"new_email": "frank@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email is unchanged.", env.Message)

	w, env = do(t, r, http.MethodPost, "/api/accounts/"+id+"/email", gin.H{"new_email": "frank@new.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Token generated from email change.", env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)

	w, env = do(t, r, http.MethodPost, "/api/accounts/"+id+"/email/confirm", gin.H{"new_email": "frank@new.example.com", "token": data.Token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email confirmed successfully.", env.Message)
}

func TestChangeUserRoleMessages(t *testing.T) {
	r, _, roles := newTestRouter(t)
	id := createAccount(t, r, "grace@example.com")
	require.NoError(t, roles.Create(context.Background(), "Admin"))

	w, env := do(t, r, http.MethodPut, "/api/accounts/"+id+"/role", gin.H{"new_role": "Admin"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Role changed to 'Admin' successfully.", env.Message)

	w, env = do(t, r, http.MethodPut, "/api/accounts/"+id+"/role", gin.H{"new_role": "Ghost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Role 'Ghost' does not exist.", env.Message)

	w, env = do(t, r, http.MethodPut, "/api/accounts/missing/role", gin.H{"new_role": "Admin"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found.", env.Message)
}

func TestDeleteAccountEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)
	id := createAccount(t, r, "heidi@example.com")

	w, env := do(t, r, http.MethodDelete, "/api/accounts/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Account was deleted successfully.", env.Message)

	w, env = do(t, r, http.MethodDelete, "/api/accounts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No account found.", env.Message)
}

func TestResetPasswordEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)
	id := createAccount(t, r, "ivan@example.com")

	w, env := do(t, r, http.MethodPost, "/api/accounts/"+id+"/tokens/password-reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password reset token generated.", env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	w, env = do(t, r, http.MethodPost, "/api/accounts/"+id+"/password/reset", gin.H{"token": data.Token, "new_password": "newpassword456"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password reset successfully.", env.Message)

	w, env = do(t, r, http.MethodPost, "/api/accounts/validate", gin.H{"email": "ivan@example.com", "password": "newpassword456"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Succeeded)
}

func TestRepositoryOutageSurfacesAsServerError(t *testing.T) {
	r, accounts, _ := newTestRouter(t)
	id := createAccount(t, r, "kate@example.com")

	accounts.failGet = errors.New("connection refused")
	w, env := do(t, r, http.MethodGet, "/api/accounts/"+id, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Succeeded)
	assert.Equal(t, "connection refused", env.Message)
}

func TestUnclassifiedErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := &AccountHandler{Logger: logger}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.fail(c, errors.New("boom"))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Succeeded)
	assert.Equal(t, "boom", env.Message)
}

func TestListAccountsEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)
	createAccount(t, r, "judy@example.com")

	w, env := do(t, r, http.MethodGet, "/api/accounts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Succeeded)
	assert.Equal(t, "Accounts were retrieved successfully.", env.Message)
}
