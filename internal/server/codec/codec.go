// Package codec maps domain records to ledger arguments and back.
//
// Encoding seals exactly the confidential fields of an entity with the field
// cipher. Decoding is total: a field that cannot be opened keeps its raw
// token, and the record is flagged Encrypted with the field listed in
// EncryptedFields. One unreadable field never drops a record.
package codec

import (
	"context"
	"fmt"

	"github.com/electronshop/shopkeeper/internal/cryptox"
	"github.com/electronshop/shopkeeper/internal/logging"
)

// FailureRecorder counts unreadable fields per entity kind.
type FailureRecorder interface {
	ObserveDecodeFailure(entity string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDecodeFailure(string) {}

// Field is the outcome of opening one token.
type Field struct {
	Value string
	Err   error
}

// OK reports whether the token was opened.
func (f Field) OK() bool { return f.Err == nil }

// Open decrypts token. On failure Value holds the token unchanged.
func Open(c cryptox.FieldCipher, token string) Field {
	plain, err := c.Decrypt(token)
	if err != nil {
		return Field{Value: token, Err: err}
	}
	return Field{Value: plain}
}

type slot struct {
	name string
	v    *string
}

type base struct {
	entity   string
	cipher   cryptox.FieldCipher
	logger   logging.Logger
	recorder FailureRecorder
}

func newBase(entity string, c cryptox.FieldCipher, l logging.Logger, r FailureRecorder) base {
	if r == nil {
		r = nopRecorder{}
	}
	return base{entity: entity, cipher: c, logger: l.With("module", "codec", "entity", entity), recorder: r}
}

// seal encrypts every slot in place.
func (b base) seal(slots ...slot) error {
	for _, s := range slots {
		tok, err := b.cipher.Encrypt(*s.v)
		if err != nil {
			return fmt.Errorf("encrypt %s.%s: %w", b.entity, s.name, err)
		}
		*s.v = tok
	}
	return nil
}

// open decrypts every slot in place and returns the names of the slots that
// kept their token.
func (b base) open(ctx context.Context, id uint64, slots ...slot) []string {
	var failed []string
	for _, s := range slots {
		f := Open(b.cipher, *s.v)
		if !f.OK() {
			failed = append(failed, s.name)
			continue
		}
		*s.v = f.Value
	}
	if len(failed) > 0 {
		b.recorder.ObserveDecodeFailure(b.entity)
		b.logger.Warn(ctx, "record partially encrypted", "id", id, "fields", failed)
	}
	return failed
}
