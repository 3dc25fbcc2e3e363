package content

import (
	"time"

	"forgecms-backend/shared/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset types
const (
	AssetTypeImage = "image"
	AssetTypeFile  = "file"
)

// Asset is the metadata record for a binary stored in object storage.
// Descriptive fields (title, description, alt, credit line, metadata) are
// mutable; the binary, derived dimensions and storage coordinates are not.
type Asset struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AssetType string    `json:"asset_type" gorm:"size:20;not null;index"`

	// Storage
	URL       string `json:"url" gorm:"not null"`
	Path      string `json:"path" gorm:"not null"`
	ObjectKey string `json:"object_key" gorm:"not null;unique"`

	// File information
	Filename         string `json:"filename" gorm:"not null"`
	OriginalFilename string `json:"original_filename" gorm:"not null"`
	MimeType         string `json:"mime_type" gorm:"size:100;not null;index"`
	Size             int64  `json:"size" gorm:"not null"`
	Width            *int   `json:"width,omitempty"`
	Height           *int   `json:"height,omitempty"`

	// Descriptive metadata
	Title       string         `json:"title"`
	Description string         `json:"description" gorm:"type:text"`
	Alt         string         `json:"alt"`
	CreditLine  string         `json:"credit_line"`
	Metadata    models.JSONMap `json:"metadata"`

	// Owner context
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	UploadedBy     uuid.UUID `json:"uploaded_by" gorm:"type:uuid;not null"`

	// Timestamps
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
