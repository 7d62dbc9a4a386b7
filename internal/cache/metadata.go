package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/models"
)

// TTL policy for the two study-metadata keys.
const (
	MetadataTTL     = time.Hour       // positive entries
	AbsentTTL       = 10 * time.Minute // negative-lookup sentinel
	absentSentinel  = "1"
)

// MetadataCache wraps a backend with the study-metadata policy. Every
// operation is best-effort: a cache failure logs at debug and reads fall
// through to the database.
type MetadataCache struct {
	backend Cache
}

// NewMetadataCache creates the policy wrapper.
func NewMetadataCache(backend Cache) *MetadataCache {
	return &MetadataCache{backend: backend}
}

// GetStudyMetadata returns the cached state list, or (nil, false) on miss.
// An unparseable entry is discarded and treated as a miss.
func (c *MetadataCache) GetStudyMetadata(ctx context.Context, tenantID, studyUID string) ([]models.StateMeta, bool) {
	key := StudyMetadataKey(tenantID, studyUID)
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if err != ErrCacheMiss {
			log.Debug().Err(err).Str("key", key).Msg("metadata cache read failed")
		}
		return nil, false
	}

	var metas []models.StateMeta
	if err := json.Unmarshal(data, &metas); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("discarding unparseable cache entry")
		_ = c.backend.Delete(ctx, key)
		return nil, false
	}
	return metas, true
}

// SetStudyMetadata caches the state list for an hour.
func (c *MetadataCache) SetStudyMetadata(ctx context.Context, tenantID, studyUID string, metas []models.StateMeta) {
	data, err := json.Marshal(metas)
	if err != nil {
		log.Debug().Err(err).Str("study_uid", studyUID).Msg("serialize study metadata failed")
		return
	}
	if err := c.backend.Set(ctx, StudyMetadataKey(tenantID, studyUID), data, MetadataTTL); err != nil {
		log.Debug().Err(err).Str("study_uid", studyUID).Msg("metadata cache write failed")
	}
}

// StudyKnownAbsent reports whether a negative sentinel is in place.
func (c *MetadataCache) StudyKnownAbsent(ctx context.Context, tenantID, studyUID string) bool {
	data, err := c.backend.Get(ctx, StudyAbsentKey(tenantID, studyUID))
	if err != nil {
		return false
	}
	return string(data) == absentSentinel
}

// MarkStudyAbsent sets the negative sentinel after a confirmed DB miss.
func (c *MetadataCache) MarkStudyAbsent(ctx context.Context, tenantID, studyUID string) {
	if err := c.backend.Set(ctx, StudyAbsentKey(tenantID, studyUID), []byte(absentSentinel), AbsentTTL); err != nil {
		log.Debug().Err(err).Str("study_uid", studyUID).Msg("negative cache write failed")
	}
}

// ClearStudyAbsent removes a stale sentinel once the study turns out to
// exist after all.
func (c *MetadataCache) ClearStudyAbsent(ctx context.Context, tenantID, studyUID string) {
	if err := c.backend.Delete(ctx, StudyAbsentKey(tenantID, studyUID)); err != nil {
		log.Debug().Err(err).Str("study_uid", studyUID).Msg("negative cache delete failed")
	}
}

// InvalidateStudy drops both keys after an ingest touched the study.
func (c *MetadataCache) InvalidateStudy(ctx context.Context, tenantID, studyUID string) {
	for _, key := range []string{
		StudyMetadataKey(tenantID, studyUID),
		StudyAbsentKey(tenantID, studyUID),
	} {
		if err := c.backend.Delete(ctx, key); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("cache invalidation failed")
		}
	}
}

// SetJWKS caches the fetched JWKS document.
func (c *MetadataCache) SetJWKS(ctx context.Context, doc string, ttl time.Duration) {
	if err := c.backend.Set(ctx, JWKSKey, []byte(doc), ttl); err != nil {
		log.Debug().Err(err).Msg("jwks cache write failed")
	}
}

// GetJWKS returns the cached JWKS document, or "" on miss.
func (c *MetadataCache) GetJWKS(ctx context.Context) string {
	data, err := c.backend.Get(ctx, JWKSKey)
	if err != nil {
		return ""
	}
	return string(data)
}
