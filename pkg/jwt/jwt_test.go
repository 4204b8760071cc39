package jwt

import (
	"testing"

	"metaserver/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42)
	require.NoError(t, err)

	id, err := ParseSubject(token, KindUser)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	userToken, err := GenerateToken(1)
	require.NoError(t, err)
	serverToken, err := GenerateServerToken(1)
	require.NoError(t, err)

	_, err = ParseSubject(userToken, KindServer)
	assert.Error(t, err)
	_, err = ParseSubject(serverToken, KindUser)
	assert.Error(t, err)
	_, err = ParseSubject(userToken, KindProof)
	assert.Error(t, err)
}

func TestVerifyProof(t *testing.T) {
	proof, err := GenerateProof(7)
	require.NoError(t, err)

	assert.True(t, VerifyProof(7, proof))
	assert.False(t, VerifyProof(8, proof))
	assert.False(t, VerifyProof(7, "garbage"))

	// Session tokens are not proofs.
	session, err := GenerateToken(7)
	require.NoError(t, err)
	assert.False(t, VerifyProof(7, session))
}

func TestParseSubjectRejectsTampering(t *testing.T) {
	token, err := GenerateToken(1)
	require.NoError(t, err)

	_, err = ParseSubject(token+"x", KindUser)
	assert.Error(t, err)
	_, err = ParseSubject("", KindUser)
	assert.Error(t, err)
}
