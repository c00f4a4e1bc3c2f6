package auth

import (
	"context"

	"github.com/mmynk/messmonitor/internal/models"
)

// Authenticator is the auth provider behind registration and login. It only
// manages credentials; user profiles live in the user store.
type Authenticator interface {
	// Register creates an account for email and returns it with a fresh UID.
	// Returns ErrEmailExists if the email is taken.
	Register(ctx context.Context, email, credential string) (*models.Credential, error)

	// Authenticate verifies the credential and returns the matching account.
	Authenticate(ctx context.Context, email, credential string) (*models.Credential, error)

	// Delete removes the account for uid. Used to roll back a registration
	// whose profile write failed.
	Delete(ctx context.Context, uid string) error

	// ValidateCredential checks the credential meets the provider's rules.
	ValidateCredential(credential string) error
}
