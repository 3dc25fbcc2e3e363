package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"forgecms-backend/shared/config"
	utils "forgecms-backend/shared/utils/auth"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService wraps the S3-compatible object store backing assets
type StorageService struct {
	client        *minio.Client
	bucketName    string
	publicBaseURL string
	allowedTypes  []string
	maxSizeBytes  int64
}

// StorageInfo reports bucket usage
type StorageInfo struct {
	ObjectCount int64 `json:"object_count"`
	TotalSize   int64 `json:"total_size"`
}

// NewStorageService connects to MinIO and ensures the asset bucket exists
func NewStorageService() (*StorageService, error) {
	cfg := config.GetConfig()

	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %v", err)
	}

	endpoint := parsedURL.Host
	useSSL := cfg.MinIOUseSSL

	log.Printf("🔗 Connecting to MinIO: %s (SSL: %v)", endpoint, useSSL)

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	service := &StorageService{
		client:        minioClient,
		bucketName:    cfg.MinIOBucketName,
		publicBaseURL: strings.TrimRight(cfg.AssetPublicBaseURL, "/"),
		allowedTypes:  cfg.GetAssetAllowedMimeTypes(),
		maxSizeBytes:  cfg.GetAssetMaxFileSizeBytes(),
	}

	if err := service.initializeBucket(); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *StorageService) initializeBucket() error {
	ctx := context.Background()

	log.Printf("🪣 Checking bucket: %s", s.bucketName)

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("✅ MinIO bucket '%s' created successfully", s.bucketName)
	} else {
		log.Printf("✅ MinIO bucket '%s' already exists", s.bucketName)
	}

	return nil
}

// ValidateUpload checks the MIME type against the allow-list and the size
// against the configured maximum. Called before any byte is written.
func ValidateUpload(mimeType string, size int64, allowedTypes []string, maxSizeBytes int64) error {
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > maxSizeBytes {
		return fmt.Errorf("file size %d exceeds the %d byte limit", size, maxSizeBytes)
	}

	for _, allowed := range allowedTypes {
		if mimeType == allowed {
			return nil
		}
	}
	return fmt.Errorf("mime type %q is not allowed", mimeType)
}

// GenerateObjectKey builds a collision-resistant object key for an upload:
// <prefix>/<sanitized-name>-<unixnano>-<random>.<ext>. The bucket name is
// never part of the key.
func GenerateObjectKey(prefix, originalFilename string) (string, error) {
	ext := filepath.Ext(originalFilename)
	base := strings.TrimSuffix(filepath.Base(originalFilename), ext)
	base = sanitizeFilename(base)
	if base == "" {
		base = "file"
	}

	random, err := utils.GenerateRandomToken(4)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixNano(), random, strings.ToLower(ext))
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key, nil
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// Store validates and uploads a binary, returning its object key and
// public URL
func (s *StorageService) Store(ctx context.Context, reader io.Reader, originalFilename, mimeType string, size int64, keyPrefix string) (string, string, error) {
	if err := ValidateUpload(mimeType, size, s.allowedTypes, s.maxSizeBytes); err != nil {
		return "", "", err
	}

	objectKey, err := GenerateObjectKey(keyPrefix, originalFilename)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate object key: %v", err)
	}

	log.Printf("⬆️ Uploading object: %s/%s (size: %d bytes)", s.bucketName, objectKey, size)

	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload object: %v", err)
	}

	return objectKey, s.PublicURL(objectKey), nil
}

// PublicURL returns the public URL for an object key. The bucket appears
// only in the configured base URL, never as a key path segment.
func (s *StorageService) PublicURL(objectKey string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(objectKey, "/")
}

// Delete removes an object from the bucket
func (s *StorageService) Delete(ctx context.Context, objectKey string) error {
	log.Printf("🗑️ Removing object: %s/%s", s.bucketName, objectKey)

	err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object: %v", err)
	}
	return nil
}

// Exists checks whether an object is present in the bucket
func (s *StorageService) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PresignedURL returns a time-limited private download URL
func (s *StorageService) PresignedURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, expires, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object url: %v", err)
	}
	return presigned.String(), nil
}

// IsHealthy reports whether the object store responds
func (s *StorageService) IsHealthy(ctx context.Context) bool {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err == nil
}

// GetStorageInfo walks the bucket and reports object count and total size
func (s *StorageService) GetStorageInfo(ctx context.Context) (*StorageInfo, error) {
	info := &StorageInfo{}

	objectCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %v", object.Err)
		}
		info.ObjectCount++
		info.TotalSize += object.Size
	}

	return info, nil
}
