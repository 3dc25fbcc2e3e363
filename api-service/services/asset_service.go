package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"

	// Registered decoders for image dimension probing
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forgecms-backend/shared/database/models"
	"forgecms-backend/shared/database/models/content"
	"forgecms-backend/shared/utils/query"
)

// AssetService persists asset binaries to object storage and their
// metadata to the database
type AssetService struct {
	db      *gorm.DB
	storage *StorageService
}

// UploadAssetInput carries an upload request into the service
type UploadAssetInput struct {
	Data             []byte
	OriginalFilename string
	MimeType         string
	Title            string
	Description      string
	Alt              string
	CreditLine       string
	OrganizationID   uuid.UUID
	UploadedBy       uuid.UUID
}

// AssetFilters narrows asset listings
type AssetFilters struct {
	AssetType string
	MimeType  string
	Search    string
}

// NewAssetService creates an asset service
func NewAssetService(db *gorm.DB, storage *StorageService) *AssetService {
	return &AssetService{db: db, storage: storage}
}

// UploadAsset stores the binary and creates the metadata row. The binary
// write happens first; if the database insert fails the object is removed
// again so storage does not leak.
func (s *AssetService) UploadAsset(ctx context.Context, input UploadAssetInput) (*content.Asset, error) {
	var org models.Organization
	if err := s.db.First(&org, input.OrganizationID).Error; err != nil {
		return nil, fmt.Errorf("organization not found: %w", err)
	}

	keyPrefix := "org/" + org.Slug

	objectKey, publicURL, err := s.storage.Store(
		ctx,
		bytes.NewReader(input.Data),
		input.OriginalFilename,
		input.MimeType,
		int64(len(input.Data)),
		keyPrefix,
	)
	if err != nil {
		return nil, err
	}

	asset := content.Asset{
		AssetType:        classifyAsset(input.MimeType),
		URL:              publicURL,
		Path:             "/" + objectKey,
		ObjectKey:        objectKey,
		Filename:         filepath.Base(objectKey),
		OriginalFilename: input.OriginalFilename,
		MimeType:         input.MimeType,
		Size:             int64(len(input.Data)),
		Title:            input.Title,
		Description:      input.Description,
		Alt:              input.Alt,
		CreditLine:       input.CreditLine,
		OrganizationID:   input.OrganizationID,
		UploadedBy:       input.UploadedBy,
	}

	if asset.AssetType == content.AssetTypeImage {
		if width, height, ok := probeImageDimensions(input.Data); ok {
			asset.Width = &width
			asset.Height = &height
		}
	}

	if err := s.db.Create(&asset).Error; err != nil {
		// Roll the binary back so the bucket does not accumulate orphans
		if delErr := s.storage.Delete(ctx, objectKey); delErr != nil {
			log.Printf("❌ Failed to clean up object %s after db error: %v", objectKey, delErr)
		}
		return nil, fmt.Errorf("failed to save asset: %w", err)
	}

	return &asset, nil
}

// FindAssetByID returns an organization's asset by id
func (s *AssetService) FindAssetByID(orgID, assetID uuid.UUID) (*content.Asset, error) {
	var asset content.Asset
	err := s.db.Where("organization_id = ?", orgID).First(&asset, assetID).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindAssets lists an organization's assets with filters and pagination
func (s *AssetService) FindAssets(orgID uuid.UUID, filters AssetFilters, params query.ListParams) ([]content.Asset, int64, error) {
	dbQuery := s.db.Model(&content.Asset{}).Where("organization_id = ?", orgID)

	if filters.AssetType != "" {
		dbQuery = dbQuery.Where("asset_type = ?", filters.AssetType)
	}
	if filters.MimeType != "" {
		dbQuery = dbQuery.Where("mime_type = ?", filters.MimeType)
	}
	dbQuery = query.ApplySearch(dbQuery, filters.Search, []string{"original_filename", "title", "description"})

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []content.Asset
	err := query.ApplyPagination(dbQuery, params).Order("created_at DESC").Find(&assets).Error
	if err != nil {
		return nil, 0, err
	}

	return assets, total, nil
}

// UpdateAssetMetadata updates descriptive fields only. The binary, its
// storage coordinates and derived dimensions are immutable.
func (s *AssetService) UpdateAssetMetadata(orgID, assetID uuid.UUID, updates map[string]interface{}) (*content.Asset, error) {
	asset, err := s.FindAssetByID(orgID, assetID)
	if err != nil {
		return nil, err
	}

	allowed := map[string]bool{
		"title":       true,
		"description": true,
		"alt":         true,
		"credit_line": true,
		"metadata":    true,
	}

	filtered := make(map[string]interface{})
	for field, value := range updates {
		if allowed[field] {
			filtered[field] = value
		}
	}

	if len(filtered) == 0 {
		return asset, nil
	}

	if err := s.db.Model(asset).Updates(filtered).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// DeleteAsset removes the backing object first, then the metadata row
func (s *AssetService) DeleteAsset(ctx context.Context, orgID, assetID uuid.UUID) error {
	asset, err := s.FindAssetByID(orgID, assetID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, asset.ObjectKey); err != nil {
		return fmt.Errorf("failed to delete backing object: %w", err)
	}

	return s.db.Delete(asset).Error
}

// classifyAsset buckets a MIME type into image or file
func classifyAsset(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return content.AssetTypeImage
	}
	return content.AssetTypeFile
}

// probeImageDimensions decodes just the image header
func probeImageDimensions(data []byte) (int, int, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
