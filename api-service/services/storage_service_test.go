package services

import (
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecms-backend/shared/config"
)

var allowedTypes = []string{"image/jpeg", "image/png", "application/pdf"}

func TestValidateUpload(t *testing.T) {
	maxSize := int64(10 * 1024 * 1024)

	assert.NoError(t, ValidateUpload("image/png", 1024, allowedTypes, maxSize))

	err := ValidateUpload("application/x-msdownload", 1024, allowedTypes, maxSize)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")

	err = ValidateUpload("image/png", maxSize+1, allowedTypes, maxSize)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")

	assert.Error(t, ValidateUpload("image/png", 0, allowedTypes, maxSize))
}

func TestGenerateObjectKeyShape(t *testing.T) {
	key, err := GenerateObjectKey("org/acme", "Summer Photo.JPG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "org/acme/"), "key: %s", key)
	assert.Regexp(t, regexp.MustCompile(`^org/acme/summer-photo-\d+-[0-9a-f]{8}\.jpg$`), key)
}

func TestGenerateObjectKeyIsCollisionResistant(t *testing.T) {
	a, err := GenerateObjectKey("", "file.png")
	require.NoError(t, err)
	b, err := GenerateObjectKey("", "file.png")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGenerateObjectKeyFallbackName(t *testing.T) {
	key, err := GenerateObjectKey("uploads", "€€€.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "uploads/file-"), "key: %s", key)
}

func TestPublicURLKeepsBucketOutOfPath(t *testing.T) {
	s := &StorageService{
		bucketName:    "forgecms-assets",
		publicBaseURL: "http://forgecms-assets.localhost:9000",
	}

	parsed, err := url.Parse(s.PublicURL("org/acme/cover-1234-abcd1234.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "/org/acme/cover-1234-abcd1234.jpg", parsed.Path)
	assert.NotContains(t, parsed.Path, s.bucketName)
}

func TestDefaultAssetBaseURLKeepsBucketOutOfPath(t *testing.T) {
	cfg := config.GetConfig()

	parsed, err := url.Parse(cfg.AssetPublicBaseURL)
	require.NoError(t, err)
	assert.NotContains(t, parsed.Path, cfg.MinIOBucketName)
}
