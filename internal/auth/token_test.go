package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueAndParseToken(t *testing.T) {
	userID := primitive.NewObjectID()

	token, err := IssueToken(userID, true, "secret", time.Hour)
	require.NoError(t, err)

	p, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.True(t, p.IsAdmin)
}

func TestParseTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	userID := primitive.NewObjectID()

	token, err := IssueToken(userID, false, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(token, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := IssueToken(userID, false, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = BearerToken("  bearer xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, header := range []string{"", "abc", "Basic abc", "Bearer"} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}
