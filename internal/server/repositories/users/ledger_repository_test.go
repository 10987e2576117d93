package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/cryptox"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/codec"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/ledger/ledgertest"
	"github.com/electronshop/shopkeeper/internal/server/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*LedgerRepository, *ledgertest.Ledger, *cryptox.Cipher) {
	t.Helper()
	c, err := cryptox.NewCipherWithKey([]byte(strings.Repeat("u", 32)))
	require.NoError(t, err)
	l := ledgertest.New()
	return NewLedgerRepository(l, codec.NewCredentials(c, logging.NewNopLogger(), nil), logging.NewNopLogger()), l, c
}

func TestRegister_SealsFieldsAndForcesRole(t *testing.T) {
	repo, l, c := newRepo(t)
	ctx := context.Background()

	conf, err := repo.Register(ctx, payload.Fields{"name": "Alice", "email": "a@x.com", "password": " p1 ", "role": "admin"})
	require.NoError(t, err)
	assert.True(t, conf.Confirmed)
	assert.Equal(t, uint64(1), conf.Position)
	assert.NotEmpty(t, conf.HandleID)

	recs, err := l.ListCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, common.RoleUser, recs[0].Role)
	assert.NotEqual(t, "a@x.com", recs[0].Email)

	secret, err := c.Decrypt(recs[0].PasswordHash)
	require.NoError(t, err)
	assert.Equal(t, " p1 ", secret)
}

func TestRegister_ValidationNeverReachesLedger(t *testing.T) {
	repo, l, _ := newRepo(t)

	_, err := repo.Register(context.Background(), payload.Fields{"name": "", "email": "nope"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.ElementsMatch(t, []string{"name", "email", "password"}, common.FieldsOf(err))
	assert.Empty(t, l.Submitted)
}

func TestRegister_RejectionSurfacesAsOperationFailed(t *testing.T) {
	repo, l, _ := newRepo(t)
	l.Reject[ledger.MethodAddUser] = errors.New("execution reverted: duplicate")

	_, err := repo.Register(context.Background(), payload.Fields{"name": "A", "email": "a@x.com", "password": "p"})
	require.ErrorIs(t, err, common.ErrOperationFailed)
	assert.Contains(t, err.Error(), "duplicate")
	assert.Empty(t, l.Submitted)
}

func TestProfile(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.Register(ctx, payload.Fields{"name": "A", "email": "a@x.com", "password": "p"})
	require.NoError(t, err)
	_, err = repo.Register(ctx, payload.Fields{"name": "B", "email": "b@x.com", "password": "q"})
	require.NoError(t, err)

	got, err := repo.Profile(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Username)
	assert.Equal(t, "b@x.com", got.Email)
	assert.Empty(t, got.Secret)

	_, err = repo.Profile(ctx, 3)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.Profile(ctx, 0)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestList_KeepsUnreadableRecords(t *testing.T) {
	repo, l, _ := newRepo(t)
	ctx := context.Background()

	l.SeedUsers(ledger.UserRecord{Username: "x", Email: "y", PasswordHash: "z", Role: "user"})
	_, err := repo.Register(ctx, payload.Fields{"name": "A", "email": "a@x.com", "password": "p"})
	require.NoError(t, err)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, got.Count)

	assert.True(t, got.Items[0].Encrypted)
	assert.Equal(t, []string{"username", "email", "secret"}, got.Items[0].EncryptedFields)
	assert.Empty(t, got.Items[0].Secret)
	assert.False(t, got.Items[1].Encrypted)
	assert.Equal(t, "a@x.com", got.Items[1].Email)
}
