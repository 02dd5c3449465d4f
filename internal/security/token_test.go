package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Create(SubscriptionAction(4), "")
	require.NoError(t, err)

	assert.True(t, issuer.Verify(token, "ml_subscription_4", ""))
}

func TestTokenIssuer_RejectsMismatches(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Create(ActionExport, "user-1")
	require.NoError(t, err)

	assert.False(t, issuer.Verify(token, ActionBulkEmail, "user-1"), "other action")
	assert.False(t, issuer.Verify(token, ActionExport, "user-2"), "other subject")
	assert.False(t, issuer.Verify("", ActionExport, "user-1"), "empty token")
	assert.False(t, issuer.Verify("not-a-token", ActionExport, "user-1"), "garbage")

	other := NewTokenIssuer("different-secret", time.Hour)
	assert.False(t, other.Verify(token, ActionExport, "user-1"), "other secret")
}

func TestTokenIssuer_Expiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Create(SubscriptionAction(1), "")
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(59 * time.Minute) }
	assert.True(t, issuer.Verify(token, SubscriptionAction(1), ""))

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	assert.False(t, issuer.Verify(token, SubscriptionAction(1), ""))
}

func TestIsHoneypotTriggered(t *testing.T) {
	assert.False(t, IsHoneypotTriggered(""))
	assert.True(t, IsHoneypotTriggered("x"))
	assert.True(t, IsHoneypotTriggered(" "))
}
