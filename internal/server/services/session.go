// Package services holds the logic that spans repositories. This file
// implements SessionAuthenticator: login by email and secret over the
// credential records of the ledger, and session verification.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/dbx"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/auth"
	"github.com/electronshop/shopkeeper/internal/server/codec"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
	"github.com/electronshop/shopkeeper/internal/server/repositories/repomanager"
)

// CredentialSource lists every credential record as stored.
type CredentialSource interface {
	ListCredentials(ctx context.Context) ([]ledger.UserRecord, error)
}

// IndexKeyer derives the side index key of an email.
type IndexKeyer interface {
	IndexKey(email string) string
}

// Session is the outcome of a successful login.
type Session struct {
	User      models.Credential `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type SessionAuthenticator struct {
	source   CredentialSource
	codec    *codec.Credentials
	logger   logging.Logger
	secret   []byte
	validity time.Duration

	// Optional email side index. Both are nil when no database is configured.
	db    *sql.DB
	rm    repomanager.RepositoryManager
	keyer IndexKeyer
}

func NewSessionAuthenticator(src CredentialSource, c *codec.Credentials, logger logging.Logger, secret []byte, validity time.Duration) *SessionAuthenticator {
	return &SessionAuthenticator{
		source:   src,
		codec:    c,
		logger:   logger.With("module", "session"),
		secret:   secret,
		validity: validity,
	}
}

// WithEmailIndex enables the side index. Lookups through it are hints: the
// record found is verified exactly like a scanned one, and a miss falls back
// to the full scan.
func (s *SessionAuthenticator) WithEmailIndex(db *sql.DB, rm repomanager.RepositoryManager, keyer IndexKeyer) *SessionAuthenticator {
	s.db, s.rm, s.keyer = db, rm, keyer
	return s
}

// Login authenticates email and password. It returns common.ErrAuthRejected
// when no credential matches.
func (s *SessionAuthenticator) Login(ctx context.Context, in payload.Fields) (*Session, error) {
	p := payload.Read(in)
	email := p.String("email")
	password := p.Secret("password")
	if err := p.Err(); err != nil {
		return nil, err
	}

	recs, err := s.source.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}

	rec, ok, stale := s.lookupIndexed(ctx, recs, email, password)
	if !ok {
		rec, ok = s.scan(ctx, recs, email, password)
		switch {
		case ok:
			s.remember(ctx, email, rec.ID)
		case stale:
			s.forget(ctx, email)
		}
	}
	if !ok {
		s.logger.Info(ctx, "login rejected", "candidates", len(recs))
		return nil, common.ErrAuthRejected
	}

	user := s.codec.Decode(ctx, rec).Public()
	token, expires, err := auth.GenerateToken(user.ID, user.Email, user.Role, s.secret, s.validity)
	if err != nil {
		return nil, common.OperationFailed("issue session token", err)
	}
	s.logger.Info(ctx, "login accepted", "user_id", user.ID)
	return &Session{User: user, Token: token, ExpiresAt: expires}, nil
}

// scan walks every record in ledger order. Records whose email or secret
// cannot be decrypted are skipped; the first full match wins.
func (s *SessionAuthenticator) scan(ctx context.Context, recs []ledger.UserRecord, email, password string) (ledger.UserRecord, bool) {
	for _, rec := range recs {
		if s.matches(ctx, rec, email, password) {
			return rec, true
		}
	}
	return ledger.UserRecord{}, false
}

func (s *SessionAuthenticator) matches(ctx context.Context, rec ledger.UserRecord, email, password string) bool {
	e := s.codec.OpenEmail(rec)
	if !e.OK() {
		s.logger.Debug(ctx, "skipping unreadable credential", "id", rec.ID)
		return false
	}
	if !strings.EqualFold(e.Value, email) {
		return false
	}
	secret := s.codec.OpenSecret(rec)
	if !secret.OK() {
		s.logger.Debug(ctx, "skipping unreadable credential", "id", rec.ID)
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret.Value), []byte(password)) == 1
}

// lookupIndexed tries the side index first. stale reports an entry whose
// credential is gone or no longer carries email; a wrong password alone does
// not make an entry stale.
func (s *SessionAuthenticator) lookupIndexed(ctx context.Context, recs []ledger.UserRecord, email, password string) (_ ledger.UserRecord, ok, stale bool) {
	if s.db == nil {
		return ledger.UserRecord{}, false, false
	}
	id, err := s.rm.EmailIndex(s.db).Lookup(ctx, s.keyer.IndexKey(email))
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "email index lookup failed", "error", err)
		}
		return ledger.UserRecord{}, false, false
	}
	for _, rec := range recs {
		if rec.ID != id {
			continue
		}
		if s.matches(ctx, rec, email, password) {
			return rec, true, false
		}
		e := s.codec.OpenEmail(rec)
		return ledger.UserRecord{}, false, !e.OK() || !strings.EqualFold(e.Value, email)
	}
	return ledger.UserRecord{}, false, true
}

// remember records a scanned match in the side index. Failures only cost the
// next login a scan.
func (s *SessionAuthenticator) remember(ctx context.Context, email string, id uint64) {
	if s.db == nil {
		return
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.rm.EmailIndex(tx).Remember(ctx, s.keyer.IndexKey(email), id)
	})
	if err != nil {
		s.logger.Warn(ctx, "email index update failed", "error", err)
	}
}

// forget drops an entry that points at the wrong credential.
func (s *SessionAuthenticator) forget(ctx context.Context, email string) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.rm.EmailIndex(tx).Forget(ctx, s.keyer.IndexKey(email))
	})
	if err != nil {
		s.logger.Warn(ctx, "email index cleanup failed", "error", err)
	}
}

// VerifySession reports whether the credential userID still carries email.
// The secret is not checked. An unknown id is common.ErrNotFound.
func (s *SessionAuthenticator) VerifySession(ctx context.Context, in payload.Fields) (bool, error) {
	p := payload.Read(in)
	userID := p.PositiveInt("user_id")
	email := p.String("email")
	if err := p.Err(); err != nil {
		return false, err
	}

	recs, err := s.source.ListCredentials(ctx)
	if err != nil {
		return false, err
	}
	for _, rec := range recs {
		if rec.ID != userID {
			continue
		}
		e := s.codec.OpenEmail(rec)
		return e.OK() && strings.EqualFold(e.Value, email), nil
	}
	return false, common.NotFound("session invalid")
}

// Authorize parses a session token for the transport's guards.
func (s *SessionAuthenticator) Authorize(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.secret)
}
