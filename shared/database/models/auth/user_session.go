package auth

import (
	"time"

	"forgecms-backend/shared/database/models"

	"github.com/google/uuid"
)

// UserSession tracks an authenticated session and the organization it is
// currently working in. OrganizationID is the active-organization pointer
// that organization switch and deletion cascades operate on.
type UserSession struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;not null"`
	SessionID      string     `json:"session_id" gorm:"size:255;uniqueIndex;not null"`
	TokenHash      string     `json:"token_hash" gorm:"size:255;not null"`
	OrganizationID *uuid.UUID `json:"organization_id" gorm:"type:uuid"`
	UserAgent      string     `json:"user_agent" gorm:"size:500"`
	IPAddress      string     `json:"ip_address" gorm:"size:50"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	ExpiresAt      time.Time  `json:"expires_at" gorm:"not null"`
	LastUsedAt     *time.Time `json:"last_used_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	User models.User `json:"user" gorm:"foreignKey:UserID"`
}
