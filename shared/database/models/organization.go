package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization roles in decreasing privilege order
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

type Organization struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Slug      string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Metadata  JSONMap   `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership binds a user to an organization with a role
type Membership struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_org"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_org"`
	Role           string    `json:"role" gorm:"size:20;not null;default:'viewer'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	User         User         `json:"user" gorm:"foreignKey:UserID"`
	Organization Organization `json:"organization" gorm:"foreignKey:OrganizationID"`
}

// Invitation is a pending, email-addressed membership offer
type Invitation struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email          string    `json:"email" gorm:"size:255;not null"`
	Role           string    `json:"role" gorm:"size:20;not null;default:'viewer'"`
	Token          string    `json:"-" gorm:"size:255;uniqueIndex;not null"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null"`
	InvitedBy      uuid.UUID `json:"invited_by" gorm:"type:uuid;not null"`
	ExpiresAt      time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	Organization Organization `json:"organization" gorm:"foreignKey:OrganizationID"`
}
