package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// StudyMetadataKey caches the serialized state list of one study.
func StudyMetadataKey(tenantID, studyUID string) string {
	return "wado:" + tenantID + ":study:" + studyUID + ":metadata"
}

// StudyAbsentKey is the negative-lookup sentinel: set when the database has
// already been checked and found nothing, so repeated requests for unknown
// studies stop hitting the DB.
func StudyAbsentKey(tenantID, studyUID string) string {
	return "db:" + tenantID + ":study:" + studyUID + ":metadata"
}

// JWKSKey holds the fetched JWKS document under a fixed well-known id.
const JWKSKey = "jwksurl:8e646686-9d36-480b-95ea-1718b24c1c98"
