// Package models defines the domain records exchanged between the ledger
// layer, the repositories and the transport.
package models

// Credential is a registered account. Username, Email and Secret are stored
// on the ledger as cipher tokens; Role is plaintext.
//
// When a field cannot be decrypted the raw token is left in place, Encrypted
// is set and the field name is listed in EncryptedFields.
type Credential struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Secret   string `json:"-"`
	Role     string `json:"role"`

	Encrypted       bool     `json:"encrypted,omitempty"`
	EncryptedFields []string `json:"encrypted_fields,omitempty"`
}

// Public returns a copy safe to hand to callers: the secret is dropped.
func (c Credential) Public() Credential {
	c.Secret = ""
	return c
}
