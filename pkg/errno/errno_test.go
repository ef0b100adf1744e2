package errno

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	code, msg := Decode(nil)
	assert.Equal(t, OK.Code, code)
	assert.Equal(t, OK.Message, msg)

	wrapped := fmt.Errorf("no spend creates coin 0xab: %w", ErrMalformedOffer)
	code, msg = Decode(wrapped)
	assert.Equal(t, ErrMalformedOffer.Code, code)
	assert.Equal(t, wrapped.Error(), msg)
	assert.True(t, errors.Is(wrapped, ErrMalformedOffer))
	assert.False(t, errors.Is(wrapped, ErrEncoding))

	code, _ = Decode(errors.New("boom"))
	assert.Equal(t, InternalServerError.Code, code)
}

func TestWithMessage(t *testing.T) {
	e := ErrBind.WithMessage("receiver 格式不正确")
	code, msg := Decode(e)
	assert.Equal(t, ErrBind.Code, code)
	assert.Equal(t, "receiver 格式不正确", msg)
	assert.Equal(t, "Error occurred while binding the request body to the struct", ErrBind.Message)
}
