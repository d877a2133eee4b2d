package application

import "time"

// Token purposes. A token redeems only for the exact purpose and subject it
// was issued for.
const (
	PurposeConfirmEmail  = "email-confirmation"
	PurposePasswordReset = "password-reset"
	PurposeChangeEmail   = "change-email"
)

// CredentialHasher derives and verifies password hashes. The algorithm is
// the collaborator's concern; this package never sees plaintext beyond the
// call boundary.
type CredentialHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// TokenCodec issues and validates purpose-scoped, expiring opaque tokens.
// Redeem returns the payload embedded at issue time; any mismatch in
// purpose, subject or expiry is an error.
type TokenCodec interface {
	Issue(purpose, subject, payload string, ttl time.Duration) (string, error)
	Redeem(token, purpose, subject string) (string, error)
}
