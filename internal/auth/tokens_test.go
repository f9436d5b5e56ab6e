package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userbase-hq/userbase/internal/shared"
)

func TestIssuePairSubjectRoundTrip(t *testing.T) {
	issuer := NewIssuer("super-secret", 15*time.Minute, 7*24*time.Hour)

	pair, err := issuer.IssuePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	accessSubject, err := issuer.Subject(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accessSubject)

	refreshSubject, err := issuer.Subject(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), refreshSubject)
}

func TestIssuePairTokensAreUnique(t *testing.T) {
	issuer := NewIssuer("super-secret", time.Minute, time.Minute)

	first, err := issuer.IssuePair(7)
	require.NoError(t, err)
	second, err := issuer.IssuePair(7)
	require.NoError(t, err)

	// Same user, same instant: the jti claim still makes every token distinct.
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestSubjectRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("super-secret", -time.Second, -time.Second)

	pair, err := issuer.IssuePair(1)
	require.NoError(t, err)

	_, err = issuer.Subject(pair.AccessToken)
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestSubjectRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("right-secret", time.Minute, time.Minute)
	other := NewIssuer("wrong-secret", time.Minute, time.Minute)

	pair, err := issuer.IssuePair(1)
	require.NoError(t, err)

	_, err = other.Subject(pair.AccessToken)
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestSubjectRejectsMalformedToken(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute, time.Minute)

	_, err := issuer.Subject("not.a.jwt")
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}
