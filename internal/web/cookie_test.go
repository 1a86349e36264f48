package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookieSigning(t *testing.T) {
	const secret = "test-secret"

	signed := signSessionID(secret, "session-123")

	id, ok := verifySessionValue(secret, signed)
	require.True(t, ok)
	assert.Equal(t, "session-123", id)
}

func TestVerifySessionValue_RejectsTampering(t *testing.T) {
	const secret = "test-secret"
	signed := signSessionID(secret, "session-123")

	cases := map[string]string{
		"swapped id":    "session-456." + signed[len("session-123."):],
		"wrong secret":  signSessionID("other-secret", "session-123"),
		"no signature":  "session-123",
		"empty value":   "",
		"empty id":      "." + signed[len("session-123."):],
		"garbage":       "not-a-cookie-value",
		"truncated sig": signed[:len(signed)-4],
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := verifySessionValue(secret, value)
			assert.False(t, ok)
		})
	}
}
