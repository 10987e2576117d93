package codec

import (
	"context"

	"github.com/electronshop/shopkeeper/internal/cryptox"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
)

// Credentials seals username, email and secret. Role is plaintext.
type Credentials struct {
	base
}

func NewCredentials(c cryptox.FieldCipher, l logging.Logger, r FailureRecorder) *Credentials {
	return &Credentials{base: newBase("credential", c, l, r)}
}

func (c *Credentials) Encode(cred models.Credential) (ledger.UserArgs, error) {
	a := ledger.UserArgs{
		Username:     cred.Username,
		Email:        cred.Email,
		PasswordHash: cred.Secret,
		Role:         cred.Role,
	}
	err := c.seal(
		slot{"username", &a.Username},
		slot{"email", &a.Email},
		slot{"secret", &a.PasswordHash},
	)
	return a, err
}

func (c *Credentials) Decode(ctx context.Context, r ledger.UserRecord) models.Credential {
	cred := models.Credential{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		Secret:   r.PasswordHash,
		Role:     r.Role,
	}
	cred.EncryptedFields = c.open(ctx, r.ID,
		slot{"username", &cred.Username},
		slot{"email", &cred.Email},
		slot{"secret", &cred.Secret},
	)
	cred.Encrypted = len(cred.EncryptedFields) > 0
	return cred
}

// OpenEmail decrypts only the email of r, for scans that must stay cheap.
func (c *Credentials) OpenEmail(r ledger.UserRecord) Field {
	return Open(c.cipher, r.Email)
}

// OpenSecret decrypts only the secret of r.
func (c *Credentials) OpenSecret(r ledger.UserRecord) Field {
	return Open(c.cipher, r.PasswordHash)
}
