package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoles(t *testing.T) {
	for _, r := range ElevatedRoles {
		assert.True(t, IsElevated(r))
	}
	assert.False(t, IsElevated(RoleSales))
	assert.False(t, IsElevated(RoleAudit))
	assert.True(t, IsReadOnly(RoleAudit))

	id, ok := ParseRole(" Admin ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, id)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}
