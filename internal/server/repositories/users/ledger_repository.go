package users

import (
	"context"
	"fmt"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/codec"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

type LedgerRepository struct {
	ledger Ledger
	codec  *codec.Credentials
	logger logging.Logger
}

func NewLedgerRepository(l Ledger, c *codec.Credentials, logger logging.Logger) *LedgerRepository {
	return &LedgerRepository{ledger: l, codec: c, logger: logger.With("module", "users")}
}

// Register stores a new credential. The role is always user.
func (r *LedgerRepository) Register(ctx context.Context, in payload.Fields) (models.Confirmation, error) {
	p := payload.Read(in)
	cred := models.Credential{
		Username: p.String("name"),
		Email:    p.Email("email"),
		Secret:   p.Secret("password"),
		Role:     common.RoleUser,
	}
	if err := p.Err(); err != nil {
		return models.Confirmation{}, err
	}

	args, err := r.codec.Encode(cred)
	if err != nil {
		return models.Confirmation{}, fmt.Errorf("encode credential: %w", err)
	}

	conf, err := r.ledger.RegisterCredential(ctx, args)
	if err != nil {
		return models.Confirmation{}, common.Surface("register", err)
	}
	r.logger.Info(ctx, "credential registered", "block", conf.Position, "tx", conf.HandleID)
	return conf, nil
}

// Profile returns the decoded credential with the given id, without secret.
func (r *LedgerRepository) Profile(ctx context.Context, userID uint64) (models.Credential, error) {
	if userID == 0 {
		return models.Credential{}, common.Validation("invalid or missing fields", "user_id")
	}
	recs, err := r.ledger.ListCredentials(ctx)
	if err != nil {
		return models.Credential{}, err
	}
	for _, rec := range recs {
		if rec.ID == userID {
			return r.codec.Decode(ctx, rec).Public(), nil
		}
	}
	return models.Credential{}, common.NotFound("user not found")
}

func (r *LedgerRepository) List(ctx context.Context) (models.List[models.Credential], error) {
	recs, err := r.ledger.ListCredentials(ctx)
	if err != nil {
		return models.List[models.Credential]{}, err
	}
	out := make([]models.Credential, 0, len(recs))
	for _, rec := range recs {
		out = append(out, r.codec.Decode(ctx, rec).Public())
	}
	return models.NewList(out), nil
}
