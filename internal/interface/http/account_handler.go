package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/VentixeEventManagement/AccountServiceProvider/internal/application"
	"github.com/VentixeEventManagement/AccountServiceProvider/pkg/response"
	"github.com/VentixeEventManagement/AccountServiceProvider/pkg/validation"
)

// AccountHandler is the façade between the transport and the orchestration
// layer. Each handler maps one inbound request to exactly one orchestration
// call; any failure becomes a succeeded=false envelope, never a transport
// fault.
type AccountHandler struct {
	Svc    *application.Service
	Flow   *application.TokenFlow
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.Service, flow *application.TokenFlow, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Flow: flow, Logger: logger}
}

type createAccountRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type validateCredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updatePhoneNumberRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type confirmAccountRequest struct {
	Token string `json:"token" binding:"required"`
}

type updateEmailRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}

type confirmEmailChangeRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type changeUserRoleRequest struct {
	NewRole string `json:"new_role" binding:"required"`
}

// fail converts a domain error into the error envelope. Kinds choose the
// status; the message is always the operator-curated one, so internals never
// leak for validation, not-found, authentication and token failures.
func (h *AccountHandler) fail(c *gin.Context, err error) {
	var derr *application.Error
	if !errors.As(err, &derr) {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("unexpected failure")
		}
		response.Error[any](c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	switch derr.Kind {
	case application.KindValidation:
		response.Error[any](c, http.StatusBadRequest, derr.Message, nil)
	case application.KindNotFound:
		response.Error[any](c, http.StatusNotFound, derr.Message, nil)
	case application.KindAuthentication:
		response.Error[any](c, http.StatusUnauthorized, derr.Message, nil)
	case application.KindInvalidToken:
		response.Error[any](c, http.StatusBadRequest, derr.Message, nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(derr).Error("operation failed")
		}
		response.Error[any](c, http.StatusInternalServerError, derr.Message, nil)
	}
}

// CreateAccount POST /api/accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	id, err := h.Svc.CreateAccount(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"account_id": id}, "Account was created successfully.")
}

// GetAccounts GET /api/accounts
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	views, err := h.Svc.ListAccounts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"accounts": views}, "Accounts were retrieved successfully.")
}

// GetAccount GET /api/accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	view, err := h.Svc.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"account": view}, "Account was found.")
}

// ValidateCredentials POST /api/accounts/validate
func (h *AccountHandler) ValidateCredentials(c *gin.Context) {
	var req validateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	id, err := h.Svc.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"account_id": id}, "Login successful")
}

// UpdatePhoneNumber PUT /api/accounts/:id/phone
func (h *AccountHandler) UpdatePhoneNumber(c *gin.Context) {
	var req updatePhoneNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.UpdatePhoneNumber(c.Request.Context(), c.Param("id"), req.PhoneNumber); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Account was updated successfully.")
}

// DeleteAccountById DELETE /api/accounts/:id
func (h *AccountHandler) DeleteAccountById(c *gin.Context) {
	if err := h.Svc.DeleteAccountById(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Account was deleted successfully.")
}

// ConfirmAccount POST /api/accounts/:id/confirm
func (h *AccountHandler) ConfirmAccount(c *gin.Context) {
	var req confirmAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	already, err := h.Flow.ConfirmAccount(c.Request.Context(), c.Param("id"), req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}
	msg := "Email confirmed successfully."
	if already {
		msg = application.MsgAlreadyConfirmed
	}
	response.Success[any](c, http.StatusOK, nil, msg)
}

// UpdateEmail POST /api/accounts/:id/email
func (h *AccountHandler) UpdateEmail(c *gin.Context) {
	var req updateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token, err := h.Flow.UpdateEmail(c.Request.Context(), c.Param("id"), req.NewEmail)
	if err != nil {
		h.fail(c, err)
		return
	}
	if token == "" {
		response.Success[any](c, http.StatusOK, nil, "Email is unchanged.")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token}, "Token generated from email change.")
}

// ConfirmEmailChange POST /api/accounts/:id/email/confirm
func (h *AccountHandler) ConfirmEmailChange(c *gin.Context) {
	var req confirmEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Flow.ConfirmEmailChange(c.Request.Context(), c.Param("id"), req.NewEmail, req.Token); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Email confirmed successfully.")
}

// ResetPassword POST /api/accounts/:id/password/reset
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Flow.ResetPassword(c.Request.Context(), c.Param("id"), req.Token, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password reset successfully.")
}

// GenerateEmailConfirmationToken POST /api/accounts/:id/tokens/confirmation
func (h *AccountHandler) GenerateEmailConfirmationToken(c *gin.Context) {
	token, err := h.Flow.GenerateConfirmationToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token}, "Token generated successfully.")
}

// GeneratePasswordResetToken POST /api/accounts/:id/tokens/password-reset
func (h *AccountHandler) GeneratePasswordResetToken(c *gin.Context) {
	token, err := h.Flow.GeneratePasswordResetToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token}, "Password reset token generated.")
}

// ChangeUserRole PUT /api/accounts/:id/role
func (h *AccountHandler) ChangeUserRole(c *gin.Context) {
	var req changeUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangeUserRole(c.Request.Context(), c.Param("id"), req.NewRole); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, fmt.Sprintf("Role changed to '%s' successfully.", req.NewRole))
}

// Search GET /api/accounts/search?q=&size=
func (h *AccountHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchAccounts(c.Request.Context(), q, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"accounts": hits}, "Search completed.")
}
