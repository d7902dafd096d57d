package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tourbook/service-earnings/internal/common/auth"
)

func TestIdentity_IsAuthorizedGuide(t *testing.T) {
	assert.True(t, Identity{UserID: "g-1", Role: auth.RoleGuide}.IsAuthorizedGuide())
	assert.False(t, Identity{UserID: "", Role: auth.RoleGuide}.IsAuthorizedGuide())
	assert.False(t, Identity{UserID: "t-1", Role: auth.RoleTourist}.IsAuthorizedGuide())
	assert.False(t, Identity{UserID: "a-1", Role: auth.RoleAdmin}.IsAuthorizedGuide())
	assert.False(t, Anonymous.IsAuthorizedGuide())
}
