// internal/models/user_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeProfileData(t *testing.T) {
	u := &User{ProfileData: JSONB{"bio": "beatmaker", "location": "Taipei"}}

	u.MergeProfileData(map[string]interface{}{"bio": "producer", "website": "https://example.com"})

	assert.Equal(t, "producer", u.ProfileData["bio"])
	assert.Equal(t, "Taipei", u.ProfileData["location"])
	assert.Equal(t, "https://example.com", u.ProfileData["website"])
}

func TestMergeProfileDataInitializesNilProfile(t *testing.T) {
	u := &User{}

	u.MergeProfileData(map[string]interface{}{"bio": "crate digger"})

	require.NotNil(t, u.ProfileData)
	assert.Equal(t, "crate digger", u.ProfileData["bio"])
}

func TestMergeProfileDataEmptyUpdateIsNoOp(t *testing.T) {
	u := &User{ProfileData: JSONB{"bio": "beatmaker"}}

	u.MergeProfileData(nil)
	u.MergeProfileData(map[string]interface{}{})

	assert.Equal(t, JSONB{"bio": "beatmaker"}, u.ProfileData)
}

func TestPasswordRoundTrip(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("Tr0ub4dor&3"))

	assert.NoError(t, u.CheckPassword("Tr0ub4dor&3"))
	assert.Error(t, u.CheckPassword("wrong"))
	assert.NotEqual(t, "Tr0ub4dor&3", u.PasswordHash)
}
