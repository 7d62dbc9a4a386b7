package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/middleware"
	"github.com/otcheredev/dicomweb-store/internal/models"
)

// WADOHandler serves the WADO-RS retrieval routes.
type WADOHandler struct {
	svc *RetrieveService
}

// NewWADOHandler creates the handler.
func NewWADOHandler(svc *RetrieveService) *WADOHandler {
	return &WADOHandler{svc: svc}
}

// resolve pulls tenant and study state, writing the error response itself
// when resolution fails. A nil, true return means the caller should stop.
func (h *WADOHandler) resolve(w http.ResponseWriter, r *http.Request) ([]models.StateMeta, bool) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		http.Error(w, "Tenant ID not found", http.StatusBadRequest)
		return nil, true
	}
	studyUID := chi.URLParam(r, "studyUID")
	if studyUID == "" {
		http.Error(w, "Study UID is required", http.StatusBadRequest)
		return nil, true
	}

	metas, err := h.svc.ResolveStudy(r.Context(), tenantID, studyUID)
	if err != nil {
		log.Error().Err(err).Str("study_uid", studyUID).Msg("Failed to resolve study")
		http.Error(w, "Failed to resolve study", http.StatusInternalServerError)
		return nil, true
	}
	if len(metas) == 0 {
		http.Error(w, "Study not found", http.StatusNotFound)
		return nil, true
	}
	return metas, false
}

// streamInstances writes one multipart/related part per state record,
// stopping as soon as the client goes away.
func (h *WADOHandler) streamInstances(w http.ResponseWriter, r *http.Request, metas []models.StateMeta) {
	accept := r.Header.Get("Accept")
	if accept == "" {
		// DICOMweb also allows negotiation through the accept query
		// parameter; keys are matched case-insensitively.
		if vals := GetParam(ParseQuery(r.URL.RawQuery), "accept"); len(vals) > 0 {
			accept = vals[0]
		}
	}
	syntaxes, wildcard := AcceptedTransferSyntaxes(accept)
	if !wildcard {
		for i := range metas {
			if !negotiable(metas[i].TransferSyntaxUID.String(), syntaxes) {
				http.Error(w, ErrNotAcceptable.Error(), http.StatusNotAcceptable)
				return
			}
		}
	}

	boundary := uuid.NewString()
	mw := NewMultipartWriter(w, boundary)
	w.Header().Set("Content-Type", mw.ContentType("application/dicom"))
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	for i := range metas {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, syntax, err := h.svc.InstanceBytes(&metas[i], wildcard)
		if err != nil {
			// The header is out; all that is left is to stop cleanly.
			log.Error().Err(err).Str("sop_uid", metas[i].SopUID.String()).Msg("Failed to read instance")
			return
		}
		partType := `application/dicom; transfer-syntax=` + syntax
		if err := mw.WritePart(partType, data); err != nil {
			return
		}
		instancesServed.Inc()
	}
	if err := mw.Close(); err != nil {
		log.Debug().Err(err).Msg("closing multipart stream failed")
	}
}

func writeDicomJSON(w http.ResponseWriter, metas []models.StateMeta) {
	objects := make([]models.DicomJSON, 0, len(metas))
	for i := range metas {
		objects = append(objects, metas[i].ToDicomJSON())
	}
	w.Header().Set("Content-Type", "application/dicom+json")
	if err := json.NewEncoder(w).Encode(objects); err != nil {
		log.Debug().Err(err).Msg("encoding metadata response failed")
	}
}

// RetrieveStudy streams every instance of a study.
func (h *WADOHandler) RetrieveStudy(w http.ResponseWriter, r *http.Request) {
	metas, done := h.resolve(w, r)
	if done {
		return
	}
	h.streamInstances(w, r, metas)
}

// RetrieveStudyMetadata returns the study's DICOM JSON array.
func (h *WADOHandler) RetrieveStudyMetadata(w http.ResponseWriter, r *http.Request) {
	metas, done := h.resolve(w, r)
	if done {
		return
	}
	writeDicomJSON(w, metas)
}

// RetrieveSeries streams every instance of one series.
func (h *WADOHandler) RetrieveSeries(w http.ResponseWriter, r *http.Request) {
	metas, done := h.resolve(w, r)
	if done {
		return
	}
	series := FilterSeries(metas, chi.URLParam(r, "seriesUID"))
	if len(series) == 0 {
		http.Error(w, "Series not found", http.StatusNotFound)
		return
	}
	h.streamInstances(w, r, series)
}

// RetrieveSeriesMetadata returns one series' DICOM JSON array.
func (h *WADOHandler) RetrieveSeriesMetadata(w http.ResponseWriter, r *http.Request) {
	metas, done := h.resolve(w, r)
	if done {
		return
	}
	series := FilterSeries(metas, chi.URLParam(r, "seriesUID"))
	if len(series) == 0 {
		http.Error(w, "Series not found", http.StatusNotFound)
		return
	}
	writeDicomJSON(w, series)
}

// RetrieveInstance streams a single instance.
func (h *WADOHandler) RetrieveInstance(w http.ResponseWriter, r *http.Request) {
	metas, done := h.resolve(w, r)
	if done {
		return
	}
	series := FilterSeries(metas, chi.URLParam(r, "seriesUID"))
	instance := FilterInstance(series, chi.URLParam(r, "instanceUID"))
	if len(instance) == 0 {
		http.Error(w, "Instance not found", http.StatusNotFound)
		return
	}
	h.streamInstances(w, r, instance)
}

// RetrieveInstanceMetadata returns a single instance's DICOM JSON.
func (h *WADOHandler) RetrieveInstanceMetadata(w http.ResponseWriter, r *http.Request) {
	metas, done := h.resolve(w, r)
	if done {
		return
	}
	series := FilterSeries(metas, chi.URLParam(r, "seriesUID"))
	instance := FilterInstance(series, chi.URLParam(r, "instanceUID"))
	if len(instance) == 0 {
		http.Error(w, "Instance not found", http.StatusNotFound)
		return
	}
	writeDicomJSON(w, instance)
}

// RetrieveFrames streams the requested frames of one instance, one part per
// frame.
func (h *WADOHandler) RetrieveFrames(w http.ResponseWriter, r *http.Request) {
	metas, done := h.resolve(w, r)
	if done {
		return
	}
	series := FilterSeries(metas, chi.URLParam(r, "seriesUID"))
	instance := FilterInstance(series, chi.URLParam(r, "instanceUID"))
	if len(instance) == 0 {
		http.Error(w, "Instance not found", http.StatusNotFound)
		return
	}

	wanted, err := ParseFrameList(chi.URLParam(r, "frameList"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	meta := &instance[0]
	frames, err := ExtractFrames(meta.FilePath, wanted)
	if err != nil {
		log.Error().Err(err).Str("sop_uid", meta.SopUID.String()).Msg("Failed to extract frames")
		http.Error(w, "Failed to extract frames", http.StatusNotFound)
		return
	}

	boundary := uuid.NewString()
	mw := NewMultipartWriter(w, boundary)
	w.Header().Set("Content-Type", mw.ContentType("application/octet-stream"))
	w.WriteHeader(http.StatusOK)

	partType := "application/octet-stream; transfer-syntax=" + meta.TransferSyntaxUID.String()
	ctx := r.Context()
	for _, data := range frames {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := mw.WritePart(partType, data); err != nil {
			return
		}
	}
	_ = mw.Close()
}

// Echo is the liveness probe.
func Echo(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Success"))
}
