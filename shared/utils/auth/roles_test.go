package utils

import (
	"testing"

	"forgecms-backend/shared/database/models"

	"github.com/stretchr/testify/assert"
)

func TestRoleLevelOrdering(t *testing.T) {
	assert.Greater(t, RoleLevel(models.RoleOwner), RoleLevel(models.RoleAdmin))
	assert.Greater(t, RoleLevel(models.RoleAdmin), RoleLevel(models.RoleEditor))
	assert.Greater(t, RoleLevel(models.RoleEditor), RoleLevel(models.RoleViewer))
	assert.Equal(t, 0, RoleLevel("superuser"))
}

func TestCanWrite(t *testing.T) {
	assert.True(t, CanWrite(models.RoleOwner))
	assert.True(t, CanWrite(models.RoleAdmin))
	assert.True(t, CanWrite(models.RoleEditor))
	assert.False(t, CanWrite(models.RoleViewer))
	assert.False(t, CanWrite(""))
}

func TestCanModifyMember(t *testing.T) {
	tests := []struct {
		name       string
		actorRole  string
		targetRole string
		want       bool
	}{
		{"owner can remove admin", models.RoleOwner, models.RoleAdmin, true},
		{"owner can remove another owner", models.RoleOwner, models.RoleOwner, true},
		{"admin cannot touch owner", models.RoleAdmin, models.RoleOwner, false},
		{"admin can remove editor", models.RoleAdmin, models.RoleEditor, true},
		{"admin can remove admin", models.RoleAdmin, models.RoleAdmin, true},
		{"editor cannot manage members", models.RoleEditor, models.RoleViewer, false},
		{"viewer cannot manage members", models.RoleViewer, models.RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModifyMember(tt.actorRole, tt.targetRole))
		})
	}
}

func TestOrgManagementGates(t *testing.T) {
	assert.True(t, CanManageOrg(models.RoleAdmin))
	assert.False(t, CanManageOrg(models.RoleEditor))
	assert.True(t, CanDeleteOrg(models.RoleOwner))
	assert.False(t, CanDeleteOrg(models.RoleAdmin))
}
