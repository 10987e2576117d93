package dbx

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS idx (email_key TEXT PRIMARY KEY, credential_id INTEGER)`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM idx`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO idx(email_key, credential_id) VALUES ('k1', 1)`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO idx(email_key, credential_id) VALUES ('k1', 1)`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, countRows(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO idx(email_key, credential_id) VALUES ('k1', 1)`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err)
}

func TestExec_ReportsRowsAffected(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	n, err := Exec(ctx, db, `INSERT INTO idx(email_key, credential_id) VALUES ('k1', 1), ('k2', 2)`)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	n, err = Exec(ctx, db, `DELETE FROM idx WHERE email_key = ?`, "missing")
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestExec_WrapsDriverError(t *testing.T) {
	db := setupDB(t)

	_, err := Exec(context.Background(), db, `INSERT INTO nope VALUES (1)`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "db error")
}

func TestWithTx_RepointsIndexEntry(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	_, err := Exec(ctx, db, `INSERT INTO idx(email_key, credential_id) VALUES ('k1', 1)`)
	require.NoError(t, err)

	err = WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := Exec(ctx, tx, `DELETE FROM idx WHERE email_key = ?`, "k1"); err != nil {
			return err
		}
		_, err := Exec(ctx, tx, `INSERT INTO idx(email_key, credential_id) VALUES (?, ?)`, "k1", 2)
		return err
	})
	require.NoError(t, err)

	var id int64
	require.NoError(t, db.QueryRow(`SELECT credential_id FROM idx WHERE email_key = 'k1'`).Scan(&id))
	require.Equal(t, int64(2), id)
	require.Equal(t, 1, countRows(t, db))
}
