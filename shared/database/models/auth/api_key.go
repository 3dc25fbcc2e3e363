package auth

import (
	"time"

	"forgecms-backend/shared/database/models"

	"github.com/google/uuid"
)

// ApiKey authenticates machine clients against a single organization.
// Only a bcrypt hash of the secret is stored; the plaintext is shown once
// at creation time.
type ApiKey struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string     `json:"name" gorm:"size:200;not null"`
	KeyPrefix      string     `json:"key_prefix" gorm:"size:16;uniqueIndex;not null"`
	KeyHash        string     `json:"-" gorm:"size:255;not null"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null"`
	Role           string     `json:"role" gorm:"size:20;not null;default:'editor'"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	LastUsedAt     *time.Time `json:"last_used_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization models.Organization `json:"organization" gorm:"foreignKey:OrganizationID"`
}
