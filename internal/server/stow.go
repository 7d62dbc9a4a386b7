package server

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/suyashkumar/dicom"

	"github.com/otcheredev/dicomweb-store/internal/broker"
	"github.com/otcheredev/dicomweb-store/internal/middleware"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/storagepath"
)

// maxStowBody bounds the ingress payload.
const maxStowBody = 2 << 30

// STOWHandler accepts multipart/related DICOM uploads, lays the files out on
// the store, and hands the metadata to the ingest topic for asynchronous
// persistence.
type STOWHandler struct {
	layout    storagepath.Layout
	publisher broker.Publisher
}

// NewSTOWHandler creates the handler.
func NewSTOWHandler(layout storagepath.Layout, publisher broker.Publisher) *STOWHandler {
	return &STOWHandler{layout: layout, publisher: publisher}
}

// Store handles POST /stow-rs/studies.
func (h *STOWHandler) Store(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		http.Error(w, "Tenant ID not found", http.StatusBadRequest)
		return
	}

	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || params["boundary"] == "" {
		http.Error(w, "multipart/related with a boundary is required", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxStowBody))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	parts, err := SplitParts(body, params["boundary"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored := 0
	for _, part := range parts {
		if err := h.storeOne(r, tenantID, part); err != nil {
			if models.IsExtractionError(err) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Str("tenant_id", tenantID).Msg("STOW store failed")
			http.Error(w, "failed to store instance", http.StatusInternalServerError)
			return
		}
		stored++
	}

	w.Header().Set("Content-Type", "application/dicom+json")
	w.WriteHeader(http.StatusOK)
	writeDicomJSON(w, nil)
	log.Info().Int("instances", stored).Str("tenant_id", tenantID).Msg("STOW upload accepted")
}

func (h *STOWHandler) storeOne(r *http.Request, tenantID string, part []byte) error {
	ds, err := dicom.Parse(bytes.NewReader(part), int64(len(part)), nil)
	if err != nil {
		return models.ErrMissingSopUID
	}

	meta, err := ExtractStoreMeta(&ds, tenantID, int64(len(part)))
	if err != nil {
		return err
	}

	studyDate := meta.StudyInfo.StudyDate.Format("20060102")
	path, err := h.layout.InstanceFile(
		tenantID, studyDate,
		meta.StudyInfo.StudyInstanceUID.String(),
		meta.SeriesInfo.SeriesInstanceUID.String(),
		meta.ImageInfo.SOPInstanceUID.String(),
		true,
	)
	if err != nil {
		return err
	}
	if err := storagepath.WriteFileAtomic(path, part); err != nil {
		return err
	}
	meta.FilePath = path
	loc := path
	meta.ImageInfo.PixelDataLocation = &loc
	meta.ImageInfo.CreatedTime = time.Now().UTC()

	if h.publisher != nil {
		if err := h.publisher.SendMessage(r.Context(), meta); err != nil {
			return err
		}
	}
	return nil
}
