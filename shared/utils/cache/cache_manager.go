package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"forgecms-backend/shared/config"
)

// CacheManager caches published document payloads so public reads skip the
// database. Entries are invalidated on publish, unpublish and delete.
type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

// PublishedDocumentCacheData is the cached shape of a published document
type PublishedDocumentCacheData struct {
	DocumentID    string                 `json:"document_id"`
	Type          string                 `json:"type"`
	PublishedData map[string]interface{} `json:"published_data"`
	PublishedHash string                 `json:"published_hash"`
	CachedAt      time.Time              `json:"cached_at"`
}

var (
	globalCacheManager *CacheManager

	// DefaultTTL bounds staleness if an invalidation is ever missed
	DefaultTTL = 30 * time.Minute
)

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{
		client: client,
		ctx:    ctx,
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return nil
}

// GetCacheManager returns the global cache manager instance, or nil if
// Redis is unavailable (callers degrade to database reads)
func GetCacheManager() *CacheManager {
	if globalCacheManager == nil {
		if err := InitCacheManager(); err != nil {
			log.Printf("❌ Failed to initialize cache manager: %v", err)
			return nil
		}
	}
	return globalCacheManager
}

// GeneratePublishedDocKey generates the cache key for a published document
func GeneratePublishedDocKey(orgID, docID uuid.UUID) string {
	return fmt.Sprintf("doc:published:%s:%s", orgID, docID)
}

// SetPublishedDocument caches a freshly published document
func (cm *CacheManager) SetPublishedDocument(orgID, docID uuid.UUID, data *PublishedDocumentCacheData) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %v", err)
	}

	key := GeneratePublishedDocKey(orgID, docID)
	return cm.client.Set(cm.ctx, key, payload, DefaultTTL).Err()
}

// GetPublishedDocument returns the cached published document, or nil on a
// cache miss
func (cm *CacheManager) GetPublishedDocument(orgID, docID uuid.UUID) (*PublishedDocumentCacheData, error) {
	if cm == nil || cm.client == nil {
		return nil, fmt.Errorf("cache manager not initialized")
	}

	key := GeneratePublishedDocKey(orgID, docID)
	payload, err := cm.client.Get(cm.ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data PublishedDocumentCacheData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %v", err)
	}
	return &data, nil
}

// InvalidatePublishedDocument drops the cache entry for a document
func (cm *CacheManager) InvalidatePublishedDocument(orgID, docID uuid.UUID) {
	if cm == nil || cm.client == nil {
		return
	}

	key := GeneratePublishedDocKey(orgID, docID)
	if err := cm.client.Del(cm.ctx, key).Err(); err != nil {
		log.Printf("❌ Failed to invalidate cache key %s: %v", key, err)
	}
}

// InvalidateOrganization drops every cached document of an organization
// (used by the organization deletion cascade)
func (cm *CacheManager) InvalidateOrganization(orgID uuid.UUID) {
	if cm == nil || cm.client == nil {
		return
	}

	pattern := fmt.Sprintf("doc:published:%s:*", orgID)
	iter := cm.client.Scan(cm.ctx, 0, pattern, 0).Iterator()
	for iter.Next(cm.ctx) {
		if err := cm.client.Del(cm.ctx, iter.Val()).Err(); err != nil {
			log.Printf("❌ Failed to invalidate cache key %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("❌ Cache scan failed for %s: %v", pattern, err)
	}
}

// IsHealthy reports whether Redis responds to ping
func (cm *CacheManager) IsHealthy() bool {
	if cm == nil || cm.client == nil {
		return false
	}
	return cm.client.Ping(cm.ctx).Err() == nil
}
