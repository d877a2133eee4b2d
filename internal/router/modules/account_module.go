package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VentixeEventManagement/AccountServiceProvider/internal/container"
	handlers "github.com/VentixeEventManagement/AccountServiceProvider/internal/interface/http"
	"github.com/VentixeEventManagement/AccountServiceProvider/internal/interface/middleware"
)

// AccountModule wires the account endpoints into routes under /api.
// Mutating endpoints carry tighter per-IP limits than reads; the token and
// credential endpoints get the strictest budget since they are the abuse
// surface.

type AccountModule struct {
	Handler *handlers.AccountHandler
}

func NewAccountModule(h *handlers.AccountHandler) *AccountModule {
	return &AccountModule{Handler: h}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	allowInternal := middleware.AllowPrivateIP()

	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), allowInternal)
	writeLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), allowInternal)
	authLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", writeLimiter, m.Handler.CreateAccount)
		accounts.GET("", readLimiter, m.Handler.GetAccounts)
		accounts.GET("/search", readLimiter, m.Handler.Search)
		accounts.POST("/validate", authLimiter, m.Handler.ValidateCredentials)

		accounts.GET("/:id", readLimiter, m.Handler.GetAccount)
		accounts.PUT("/:id/phone", writeLimiter, m.Handler.UpdatePhoneNumber)
		accounts.DELETE("/:id", writeLimiter, m.Handler.DeleteAccountById)
		accounts.PUT("/:id/role", writeLimiter, m.Handler.ChangeUserRole)

		accounts.POST("/:id/confirm", authLimiter, m.Handler.ConfirmAccount)
		accounts.POST("/:id/email", authLimiter, m.Handler.UpdateEmail)
		accounts.POST("/:id/email/confirm", authLimiter, m.Handler.ConfirmEmailChange)
		accounts.POST("/:id/password/reset", authLimiter, m.Handler.ResetPassword)
		accounts.POST("/:id/tokens/confirmation", authLimiter, m.Handler.GenerateEmailConfirmationToken)
		accounts.POST("/:id/tokens/password-reset", authLimiter, m.Handler.GeneratePasswordResetToken)
	}
}
