package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndVerify(t *testing.T) {
	mgr := NewManager(testSecret, "invoicepro", time.Hour)

	userID := snowflake.ID(42)
	signed, err := mgr.Generate(userID, "jane@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	gotID, gotEmail, err := mgr.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "jane@example.com", gotEmail)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	mgr := NewManager(testSecret, "invoicepro", time.Hour)
	other := NewManager("ffffffffffffffffffffffffffffffff", "invoicepro", time.Hour)

	signed, err := mgr.Generate(snowflake.ID(7), "a@b.co")
	require.NoError(t, err)

	_, _, err = other.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	mgr := NewManager(testSecret, "invoicepro", time.Hour)
	other := NewManager(testSecret, "someone-else", time.Hour)

	signed, err := mgr.Generate(snowflake.ID(7), "a@b.co")
	require.NoError(t, err)

	_, _, err = other.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	mgr := NewManager(testSecret, "invoicepro", -time.Minute)

	signed, err := mgr.Generate(snowflake.ID(7), "a@b.co")
	require.NoError(t, err)

	_, _, err = mgr.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	mgr := NewManager(testSecret, "invoicepro", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, _, err := mgr.Verify(raw)
		assert.Error(t, err, raw)
	}
}
