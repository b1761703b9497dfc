package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	uid := primitive.NewObjectID()

	token, exp, err := m.Issue(uid, models.RoleAdmin)
	require.NoError(t, err)

	id, gotExp, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uid, id.UserID)
	assert.True(t, id.IsAdmin())
	assert.WithinDuration(t, exp, gotExp, time.Second)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("a", time.Hour).Issue(primitive.NewObjectID(), models.RoleUser)
	require.NoError(t, err)

	_, _, err = NewTokenManager("b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue(primitive.NewObjectID(), models.RoleUser)
	require.NoError(t, err)

	m.now = time.Now
	_, _, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityOwns(t *testing.T) {
	uid := primitive.NewObjectID()
	id := Identity{UserID: uid, Role: models.RoleUser}
	assert.True(t, id.Owns(uid))
	assert.False(t, id.Owns(primitive.NewObjectID()))
	assert.False(t, Identity{}.Owns(primitive.NilObjectID))
}
