package server

import (
	"context"
	"fmt"
	"os"

	"github.com/otcheredev/dicomweb-store/internal/cache"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/repository"
	"github.com/otcheredev/dicomweb-store/internal/storagepath"
	"github.com/otcheredev/dicomweb-store/internal/transcode"
)

// RetrieveService resolves study state through the two-tier cache and reads
// instance bytes off the store, transcoding when negotiation demands it.
type RetrieveService struct {
	repo   *repository.StateRepository
	cache  *cache.MetadataCache
	layout storagepath.Layout
}

// NewRetrieveService wires the retrieval path.
func NewRetrieveService(repo *repository.StateRepository, mc *cache.MetadataCache, layout storagepath.Layout) *RetrieveService {
	return &RetrieveService{repo: repo, cache: mc, layout: layout}
}

// ResolveStudy returns the ordered state list for a study. Resolution order:
// positive cache, negative cache, database. A confirmed database miss plants
// the negative sentinel so the next lookup stops here.
func (s *RetrieveService) ResolveStudy(ctx context.Context, tenantID, studyUID string) ([]models.StateMeta, error) {
	if metas, hit := s.cache.GetStudyMetadata(ctx, tenantID, studyUID); hit {
		metadataCacheHits.Inc()
		return metas, nil
	}
	if s.cache.StudyKnownAbsent(ctx, tenantID, studyUID) {
		negativeCacheHits.Inc()
		return nil, nil
	}
	metadataCacheMisses.Inc()

	metas, err := s.repo.GetStateMetas(ctx, tenantID, studyUID)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		s.cache.MarkStudyAbsent(ctx, tenantID, studyUID)
		return nil, nil
	}
	s.cache.SetStudyMetadata(ctx, tenantID, studyUID, metas)
	s.cache.ClearStudyAbsent(ctx, tenantID, studyUID)
	return metas, nil
}

// FilterSeries narrows a study's state list to one series.
func FilterSeries(metas []models.StateMeta, seriesUID string) []models.StateMeta {
	out := make([]models.StateMeta, 0, len(metas))
	for i := range metas {
		if metas[i].SeriesUID.String() == seriesUID {
			out = append(out, metas[i])
		}
	}
	return out
}

// FilterInstance narrows a series list to one SOP instance.
func FilterInstance(metas []models.StateMeta, sopUID string) []models.StateMeta {
	out := make([]models.StateMeta, 0, 1)
	for i := range metas {
		if metas[i].SopUID.String() == sopUID {
			out = append(out, metas[i])
		}
	}
	return out
}

// ErrNotAcceptable signals a transfer-syntax negotiation failure.
var ErrNotAcceptable = fmt.Errorf("stored transfer syntax cannot satisfy the Accept header")

// negotiable reports whether an instance stored in the given syntax can
// satisfy an explicit transfer-syntax list: either directly, or through the
// RLE conversion the engine performs on the fly. An empty list accepts the
// default behavior.
func negotiable(stored string, requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	served := stored
	if !transcode.IsCornerstoneSupported(stored) {
		served = transcode.RLELossless
	}
	for _, want := range requested {
		if want == served {
			return true
		}
	}
	return false
}

// InstanceBytes reads one instance off disk, converting it to RLE Lossless
// in an in-memory buffer when the stored syntax is not viewer-decodable
// and the client did not opt into transfer-syntax=*. The returned syntax is
// what the bytes actually carry.
func (s *RetrieveService) InstanceBytes(meta *models.StateMeta, wildcard bool) ([]byte, string, error) {
	path := meta.FilePath
	stored := meta.TransferSyntaxUID.String()

	if wildcard || transcode.IsCornerstoneSupported(stored) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read instance %s: %w", path, err)
		}
		return data, stored, nil
	}

	// Convert in memory; the stored file is never touched and nothing hits
	// disk for this response.
	buf, err := transcode.ConvertToBuffer(path, meta.FileSize, transcode.RLELossless)
	if err != nil {
		return nil, "", fmt.Errorf("transcode %s: %w", meta.SopUID.String(), err)
	}
	onTheFlyTranscodes.Inc()
	return buf.Bytes(), transcode.RLELossless, nil
}
