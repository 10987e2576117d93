package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := WriteRejected("addOrder", errors.New("execution reverted"))

	assert.True(t, errors.Is(err, ErrWriteRejected))
	assert.False(t, errors.Is(err, ErrOperationFailed))
	assert.Contains(t, err.Error(), "addOrder")
	assert.Contains(t, err.Error(), "execution reverted")
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("checkout: %w", ConfirmationTimeout("0xabc", errors.New("deadline")))

	assert.Equal(t, KindConfirmationTimeout, KindOf(err))
	assert.True(t, errors.Is(err, ErrConfirmationTimeout))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestValidation_ListsFields(t *testing.T) {
	err := Validation("invalid input", "user_id", "quantity")

	assert.Equal(t, []string{"user_id", "quantity"}, FieldsOf(err))
	assert.Equal(t, "invalid input (user_id, quantity)", err.Error())
}

func TestDecode_UnwrapsCause(t *testing.T) {
	cause := errors.New("bad padding")
	err := Decode(cause)

	assert.True(t, errors.Is(err, ErrDecode))
	assert.True(t, errors.Is(err, cause))
}

func TestSurface(t *testing.T) {
	rejected := WriteRejected("addToCart", errors.New("execution reverted: no such product"))

	err := Surface("add to cart", rejected)
	assert.Equal(t, KindOperationFailed, KindOf(err))
	assert.True(t, errors.Is(err, ErrWriteRejected))
	assert.Contains(t, err.Error(), "no such product")

	timeout := ConfirmationTimeout("0x1", errors.New("deadline"))
	assert.Same(t, timeout, Surface("add to cart", timeout))
	assert.Nil(t, Surface("x", nil))
}
