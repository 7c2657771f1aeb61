package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Authorize(t *testing.T) {
	p := NewPolicy()

	assert.NoError(t, p.Authorize(Actor{ID: 1, Role: RoleAdmin}, AbilityManageAttachments))
	assert.NoError(t, p.Authorize(Actor{ID: 2, Role: RoleManager}, AbilityManageContact))
	assert.ErrorIs(t, p.Authorize(Actor{ID: 3, Role: RoleTeacher}, AbilityManageAttachments), ErrForbidden)
	assert.ErrorIs(t, p.Authorize(Actor{}, AbilityManagePosts), ErrUnauthenticated)

	p.Grant(RoleTeacher, AbilityManagePosts)
	assert.NoError(t, p.Authorize(Actor{ID: 3, Role: RoleTeacher}, AbilityManagePosts))
}
