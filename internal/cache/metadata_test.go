package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
	"github.com/otcheredev/dicomweb-store/internal/models"
)

func redisBackend(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	backend, err := NewRedisCache("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend, mr
}

func stateList() []models.StateMeta {
	return []models.StateMeta{{
		TenantID:  dbtypes.Make[dbtypes.Len64]("t1"),
		StudyUID:  dbtypes.Make[dbtypes.Len64]("1.2.3"),
		SeriesUID: dbtypes.Make[dbtypes.Len64]("1.2.3.1"),
		SopUID:    dbtypes.Make[dbtypes.Len64]("1.2.3.1.1"),
	}}
}

func TestStudyMetadataRoundTrip(t *testing.T) {
	backend, _ := redisBackend(t)
	mc := NewMetadataCache(backend)
	ctx := context.Background()

	_, hit := mc.GetStudyMetadata(ctx, "t1", "1.2.3")
	assert.False(t, hit)

	mc.SetStudyMetadata(ctx, "t1", "1.2.3", stateList())
	metas, hit := mc.GetStudyMetadata(ctx, "t1", "1.2.3")
	require.True(t, hit)
	require.Len(t, metas, 1)
	assert.Equal(t, "1.2.3.1.1", metas[0].SopUID.String())
}

func TestStudyMetadataTTL(t *testing.T) {
	backend, mr := redisBackend(t)
	mc := NewMetadataCache(backend)
	mc.SetStudyMetadata(context.Background(), "t1", "1.2.3", stateList())

	ttl := mr.TTL(StudyMetadataKey("t1", "1.2.3"))
	assert.Equal(t, time.Hour, ttl)
}

func TestCorruptEntryIsDiscarded(t *testing.T) {
	backend, mr := redisBackend(t)
	mc := NewMetadataCache(backend)
	ctx := context.Background()

	key := StudyMetadataKey("t1", "1.2.3")
	mr.Set(key, "{not json")

	_, hit := mc.GetStudyMetadata(ctx, "t1", "1.2.3")
	assert.False(t, hit)
	assert.False(t, mr.Exists(key), "corrupt entry should be deleted")
}

func TestNegativeCacheSentinel(t *testing.T) {
	backend, mr := redisBackend(t)
	mc := NewMetadataCache(backend)
	ctx := context.Background()

	assert.False(t, mc.StudyKnownAbsent(ctx, "t1", "9.9.9"))
	mc.MarkStudyAbsent(ctx, "t1", "9.9.9")
	assert.True(t, mc.StudyKnownAbsent(ctx, "t1", "9.9.9"))

	ttl := mr.TTL(StudyAbsentKey("t1", "9.9.9"))
	assert.Equal(t, 10*time.Minute, ttl)
}

func TestInvalidateStudyDropsBothKeys(t *testing.T) {
	backend, mr := redisBackend(t)
	mc := NewMetadataCache(backend)
	ctx := context.Background()

	mc.SetStudyMetadata(ctx, "t1", "1.2.3", stateList())
	mc.MarkStudyAbsent(ctx, "t1", "1.2.3")

	mc.InvalidateStudy(ctx, "t1", "1.2.3")
	assert.False(t, mr.Exists(StudyMetadataKey("t1", "1.2.3")))
	assert.False(t, mr.Exists(StudyAbsentKey("t1", "1.2.3")))
}

func TestCacheFailureIsNotFatal(t *testing.T) {
	backend, mr := redisBackend(t)
	mc := NewMetadataCache(backend)
	ctx := context.Background()

	mr.Close()

	// All operations must degrade to misses / no-ops.
	_, hit := mc.GetStudyMetadata(ctx, "t1", "1.2.3")
	assert.False(t, hit)
	assert.False(t, mc.StudyKnownAbsent(ctx, "t1", "1.2.3"))
	mc.SetStudyMetadata(ctx, "t1", "1.2.3", stateList())
	mc.MarkStudyAbsent(ctx, "t1", "1.2.3")
	mc.InvalidateStudy(ctx, "t1", "1.2.3")
}

func TestJWKSDocumentRoundTrip(t *testing.T) {
	backend, _ := redisBackend(t)
	mc := NewMetadataCache(backend)
	ctx := context.Background()

	assert.Empty(t, mc.GetJWKS(ctx))
	mc.SetJWKS(ctx, `{"keys":[]}`, 10*time.Minute)
	assert.Equal(t, `{"keys":[]}`, mc.GetJWKS(ctx))
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	v, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	time.Sleep(20 * time.Millisecond)
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
