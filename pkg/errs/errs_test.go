package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	withCode := NewWithCode(ErrorTypeServerError, 503, "bad gateway chain")
	assert.Equal(t, "server_error error (code 503): bad gateway chain", withCode.Error())

	withoutCode := New(ErrorTypeInvalidInput, "url %q has no scheme", "x.edu/f")
	assert.Equal(t, `invalid_input error: url "x.edu/f" has no scheme`, withoutCode.Error())
}

func TestCategory(t *testing.T) {
	assert.Equal(t, ErrorTypeNetwork, Category(New(ErrorTypeNetwork, "timeout")))
	assert.Equal(t, ErrorTypeUnknown, Category(errors.New("plain")))
	assert.Equal(t, ErrorTypeUnknown, Category(nil))

	wrapped := fmt.Errorf("while downloading: %w", New(ErrorTypeFilesystem, "disk full"))
	assert.Equal(t, ErrorTypeFilesystem, Category(wrapped))
}

func TestFatalityPolicy(t *testing.T) {
	assert.True(t, IsFatal(NewWithCode(ErrorTypeAuth, 401, "token rejected")))
	assert.False(t, IsFatal(New(ErrorTypeNetwork, "reset")))

	assert.True(t, AbortsCourse(New(ErrorTypeFilesystem, "permission denied")))
	assert.False(t, AbortsCourse(New(ErrorTypeNotFound, "missing")))
}
