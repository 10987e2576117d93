package payload

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_CollectsEveryBadField(t *testing.T) {
	r := Read(Fields{"user_id": "abc", "quantity": float64(-1), "product_id": float64(3)})

	assert.Zero(t, r.PositiveInt("user_id"))
	assert.Equal(t, uint64(3), r.PositiveInt("product_id"))
	assert.Zero(t, r.PositiveInt("quantity"))
	assert.Zero(t, r.PositiveInt("quantity"))

	err := r.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
	assert.Equal(t, []string{"user_id", "quantity"}, common.FieldsOf(err))
}

func TestReader_Numbers(t *testing.T) {
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(`{"a":"7","b":7,"c":0,"d":"0","e":1.5,"f":"x"}`), &f))
	r := Read(f)

	assert.Equal(t, uint64(7), r.PositiveInt("a"))
	assert.Equal(t, uint64(7), r.PositiveInt("b"))
	assert.Equal(t, int64(0), r.NonNegativeInt("c"))
	assert.Equal(t, int64(0), r.NonNegativeInt("d"))
	assert.Zero(t, r.PositiveInt("e"))
	assert.Zero(t, r.NonNegativeInt("f"))
	assert.Equal(t, []string{"e", "f"}, common.FieldsOf(r.Err()))
}

func TestReader_PositiveDecimal(t *testing.T) {
	r := Read(Fields{"price": "19.990", "zero": "0", "num": float64(10.5), "neg": "-1", "bad": "1,5"})

	assert.Equal(t, "19.99", r.PositiveDecimal("price"))
	assert.Equal(t, "10.5", r.PositiveDecimal("num"))
	assert.Empty(t, r.PositiveDecimal("zero"))
	assert.Empty(t, r.PositiveDecimal("neg"))
	assert.Empty(t, r.PositiveDecimal("bad"))
	assert.Equal(t, []string{"zero", "neg", "bad"}, common.FieldsOf(r.Err()))
}

func TestReader_StringsAndEmail(t *testing.T) {
	r := Read(Fields{"name": "  Alice ", "email": "User@Example.com", "bad_email": "nope", "obj": map[string]any{}, "pw": " p w "})

	assert.Equal(t, "Alice", r.String("name"))
	assert.Equal(t, "User@Example.com", r.Email("email"))
	assert.Empty(t, r.Email("bad_email"))
	assert.Empty(t, r.String("obj"))
	assert.Empty(t, r.String("missing"))
	assert.Equal(t, " p w ", r.Secret("pw"))

	assert.Equal(t, []string{"bad_email", "obj", "missing"}, common.FieldsOf(r.Err()))
}

func TestReader_OptionalString(t *testing.T) {
	r := Read(Fields{"category": "", "image": nil, "query": "phone"})

	_, ok := r.OptionalString("category")
	assert.False(t, ok)
	_, ok = r.OptionalString("image")
	assert.False(t, ok)
	q, ok := r.OptionalString("query")
	assert.True(t, ok)
	assert.Equal(t, "phone", q)
	assert.NoError(t, r.Err())
}

func TestReader_OneOf(t *testing.T) {
	r := Read(Fields{"status": "shipped", "other": "returned"})

	assert.Equal(t, "shipped", r.OneOf("status", "pending", "shipped"))
	assert.Empty(t, r.OneOf("other", "pending", "shipped"))
	assert.Equal(t, []string{"other"}, common.FieldsOf(r.Err()))
}

func TestID(t *testing.T) {
	n, err := ID("order_id", "7")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	_, err = ID("order_id", "-7")
	assert.True(t, errors.Is(err, common.ErrValidation))
	assert.Equal(t, []string{"order_id"}, common.FieldsOf(err))
}
