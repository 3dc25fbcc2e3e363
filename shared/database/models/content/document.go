package content

import (
	"time"

	"forgecms-backend/shared/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Document is a content entry of a registered schema type. DraftData is the
// unvalidated working copy; PublishedData is the canonical copy promoted by
// a successful publish, with PublishedHash recording the content hash at
// that moment.
type Document struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Type string    `json:"type" gorm:"size:100;not null;index"`

	DraftData     models.JSONMap `json:"draft_data" gorm:"not null"`
	PublishedData models.JSONMap `json:"published_data,omitempty"`
	Status        string         `json:"status" gorm:"size:20;not null;default:'draft';index"`
	PublishedHash string         `json:"published_hash,omitempty" gorm:"size:64"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`

	// Owner context
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	CreatedBy      uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	UpdatedBy      uuid.UUID `json:"updated_by" gorm:"type:uuid"`

	// Timestamps
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
