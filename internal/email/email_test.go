package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationTokenRoundTrip(t *testing.T) {
	token := NewVerificationToken(1)
	require.Len(t, token, 6)

	assert.True(t, HasToken(1))
	assert.True(t, VerifyToken(1, token))
	assert.False(t, VerifyToken(1, "AAAAAA"))
	assert.False(t, VerifyToken(1, ""))

	// Tokens are per user.
	assert.False(t, HasToken(2))
	assert.False(t, VerifyToken(2, token))
}

func TestRenewingInvalidatesPreviousToken(t *testing.T) {
	old := NewVerificationToken(3)
	renewed := NewVerificationToken(3)

	assert.True(t, VerifyToken(3, renewed))
	if old != renewed {
		assert.False(t, VerifyToken(3, old))
	}
}

func TestTokenAge(t *testing.T) {
	_, ok := TokenAge(4)
	assert.False(t, ok)

	NewVerificationToken(4)
	age, ok := TokenAge(4)
	require.True(t, ok)
	assert.Less(t, age, time.Minute)
}
