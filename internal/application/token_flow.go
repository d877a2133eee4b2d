package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/VentixeEventManagement/AccountServiceProvider/config"
	"github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/entity"
	repo "github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/repository"
	"github.com/VentixeEventManagement/AccountServiceProvider/pkg/helpers"
	"github.com/VentixeEventManagement/AccountServiceProvider/pkg/mailer"
)

// TokenFlow orchestrates the token-backed state transitions: email
// confirmation, password reset and email change. Tokens are derived, not
// persisted; redemption is checked against current account state.
type TokenFlow struct {
	Accounts repo.AccountRepository
	Tokens   TokenCodec
	Hasher   CredentialHasher
	Logger   *logrus.Logger

	// Pub is optional; when configured, generated tokens are also delivered
	// by email through the queue.
	Pub *helpers.RabbitPublisher
	Cfg *config.Config

	Indexer *SearchIndexer
}

func NewTokenFlow(accounts repo.AccountRepository, tokens TokenCodec, hasher CredentialHasher, logger *logrus.Logger, pub *helpers.RabbitPublisher, cfg *config.Config, indexer *SearchIndexer) *TokenFlow {
	return &TokenFlow{Accounts: accounts, Tokens: tokens, Hasher: hasher, Logger: logger, Pub: pub, Cfg: cfg, Indexer: indexer}
}

// GenerateConfirmationToken issues an email-confirmation token for the
// account and enqueues its delivery.
func (t *TokenFlow) GenerateConfirmationToken(ctx context.Context, id string) (string, error) {
	a, err := t.getAccount(ctx, id, MsgNoAccount)
	if err != nil {
		return "", err
	}
	token, err := t.Tokens.Issue(PurposeConfirmEmail, a.ID, "", t.Cfg.ConfirmTokenTTL)
	if err != nil {
		return "", unexpected(err)
	}
	t.enqueueTokenEmail(ctx, a, a.Email, mailer.TemplateConfirmEmail, t.Cfg.ConfirmEmailURL, token, t.Cfg.ConfirmTokenTTL)
	return token, nil
}

// ConfirmAccount redeems a confirmation token and marks the email confirmed.
// An already-confirmed account short-circuits to success without touching
// the token; the returned flag tells the caller which path was taken.
func (t *TokenFlow) ConfirmAccount(ctx context.Context, id, token string) (alreadyConfirmed bool, err error) {
	a, err := t.getAccount(ctx, id, MsgNoAccount)
	if err != nil {
		return false, err
	}
	if a.EmailConfirmed {
		return true, nil
	}
	if _, err := t.Tokens.Redeem(token, PurposeConfirmEmail, a.ID); err != nil {
		return false, invalidTokenError(err)
	}
	a.EmailConfirmed = true
	if err := checkDeadline(ctx); err != nil {
		return false, err
	}
	if err := t.Accounts.Update(ctx, a); err != nil {
		return false, unexpected(err)
	}
	t.Indexer.IndexAccount(ctx, a, "")
	return false, nil
}

// GeneratePasswordResetToken issues a password-reset token and enqueues its
// delivery.
func (t *TokenFlow) GeneratePasswordResetToken(ctx context.Context, id string) (string, error) {
	a, err := t.getAccount(ctx, id, MsgUserNotFound)
	if err != nil {
		return "", err
	}
	token, err := t.Tokens.Issue(PurposePasswordReset, a.ID, "", t.Cfg.ResetTokenTTL)
	if err != nil {
		return "", unexpected(err)
	}
	t.enqueueTokenEmail(ctx, a, a.Email, mailer.TemplateResetPassword, t.Cfg.ResetPasswordURL, token, t.Cfg.ResetTokenTTL)
	return token, nil
}

// ResetPassword redeems a reset token and stores the re-hashed password.
// The account is untouched when the token fails validation.
func (t *TokenFlow) ResetPassword(ctx context.Context, id, token, newPassword string) error {
	a, err := t.getAccount(ctx, id, MsgUserNotFound)
	if err != nil {
		return err
	}
	if _, err := t.Tokens.Redeem(token, PurposePasswordReset, a.ID); err != nil {
		return invalidTokenError(err)
	}
	if len(newPassword) < t.Cfg.MinPasswordLength {
		return validationError(fmt.Sprintf("Passwords must be at least %d characters.", t.Cfg.MinPasswordLength))
	}
	hash, err := t.Hasher.Hash(newPassword)
	if err != nil {
		return unexpected(err)
	}
	a.PasswordHash = hash
	if err := checkDeadline(ctx); err != nil {
		return err
	}
	if err := t.Accounts.Update(ctx, a); err != nil {
		return unexpected(err)
	}
	t.Indexer.IndexAccount(ctx, a, "")
	return nil
}

// UpdateEmail starts the email-change flow by issuing a token whose payload
// pins the target address. A new email equal to the current one (ignoring
// case) short-circuits to success with no token.
func (t *TokenFlow) UpdateEmail(ctx context.Context, id, newEmail string) (string, error) {
	a, err := t.getAccount(ctx, id, MsgUserNotFound)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(a.Email, newEmail) {
		return "", nil
	}
	token, err := t.Tokens.Issue(PurposeChangeEmail, a.ID, newEmail, t.Cfg.ChangeEmailTokenTTL)
	if err != nil {
		return "", unexpected(err)
	}
	// The token travels to the address being claimed, not the current one.
	t.enqueueTokenEmail(ctx, a, newEmail, mailer.TemplateChangeEmail, t.Cfg.ChangeEmailURL, token, t.Cfg.ChangeEmailTokenTTL)
	return token, nil
}

// ConfirmEmailChange redeems a change-email token and overwrites the
// account's email. The token's embedded target must equal the supplied new
// email exactly; a token issued for a different address never redeems.
func (t *TokenFlow) ConfirmEmailChange(ctx context.Context, id, newEmail, token string) error {
	a, err := t.getAccount(ctx, id, MsgUserNotFound)
	if err != nil {
		return err
	}
	payload, err := t.Tokens.Redeem(token, PurposeChangeEmail, a.ID)
	if err != nil {
		return invalidTokenError(err)
	}
	if payload != newEmail {
		return invalidTokenError(errors.New("token issued for a different email"))
	}
	a.Email = newEmail
	if err := checkDeadline(ctx); err != nil {
		return err
	}
	if err := t.Accounts.Update(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return validationError(fmt.Sprintf("Email '%s' is already taken.", newEmail))
		}
		return unexpected(err)
	}
	t.Indexer.IndexAccount(ctx, a, "")
	return nil
}

func (t *TokenFlow) getAccount(ctx context.Context, id, missingMsg string) (*entity.Account, error) {
	a, err := t.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError(missingMsg)
		}
		return nil, unexpected(err)
	}
	return a, nil
}

// enqueueTokenEmail hands the token to the email queue, best effort. Token
// generation never fails because mail infrastructure is down.
func (t *TokenFlow) enqueueTokenEmail(ctx context.Context, a *entity.Account, to, template, baseURL, token string, ttl time.Duration) {
	if t.Pub == nil || t.Cfg == nil || !t.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       to,
		Template: template,
		Data: map[string]any{
			"Name":      a.UserName,
			"Token":     token,
			"Link":      baseURL + "?token=" + token,
			"ExpiresIn": ttl.String(),
		},
	}
	if err := t.Pub.PublishJSON(ctx, job); err != nil && t.Logger != nil {
		t.Logger.WithError(err).WithField("account_id", a.ID).Warn("failed to publish email job")
	}
}
