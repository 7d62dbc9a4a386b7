package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/dicomweb-store/internal/middleware"
	"github.com/otcheredev/dicomweb-store/internal/models"
)

func testRouter(svc *RetrieveService) *chi.Mux {
	wado := NewWADOHandler(svc)
	r := chi.NewRouter()
	r.Route("/wado-rs", func(r chi.Router) {
		r.Use(middleware.TenantID)
		r.Get("/studies/{studyUID}/metadata", wado.RetrieveStudyMetadata)
		r.Get("/studies/{studyUID}/series/{seriesUID}/metadata", wado.RetrieveSeriesMetadata)
	})
	r.Get("/echo", Echo)
	return r
}

func TestEchoLiveness(t *testing.T) {
	svc, _, _ := setupService(t)
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success", rec.Body.String())
}

func TestStudyMetadataRequiresTenant(t *testing.T) {
	svc, _, _ := setupService(t)
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/wado-rs/studies/1.2.3/metadata", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudyMetadataUnknownStudyIs404(t *testing.T) {
	svc, mock, _ := setupService(t)
	router := testRouter(svc)

	mock.ExpectQuery(`SELECT (.+) FROM "state_meta"`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "sop_uid"}))

	req := httptest.NewRequest(http.MethodGet, "/wado-rs/studies/9.9.9/metadata", nil)
	req.Header.Set("X-Tenant-ID", "t1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The negative sentinel absorbs the retry without further SQL.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudyMetadataReturnsDicomJSON(t *testing.T) {
	svc, mock, _ := setupService(t)
	router := testRouter(svc)

	mock.ExpectQuery(`SELECT (.+) FROM "state_meta"`).WillReturnRows(stateRows())

	req := httptest.NewRequest(http.MethodGet, "/wado-rs/studies/1.2.3/metadata", nil)
	req.Header.Set("X-Tenant-ID", "t1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/dicom+json", rec.Header().Get("Content-Type"))

	var objects []models.DicomJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &objects))
	require.Len(t, objects, 2)
	assert.Equal(t, []any{"1.2.3"}, objects[0][models.TagStudyInstanceUID].Value)
}

func TestSeriesMetadataUnknownSeriesIs404(t *testing.T) {
	svc, mock, _ := setupService(t)
	router := testRouter(svc)

	mock.ExpectQuery(`SELECT (.+) FROM "state_meta"`).WillReturnRows(stateRows())

	req := httptest.NewRequest(http.MethodGet, "/wado-rs/studies/1.2.3/series/7.7.7/metadata", nil)
	req.Header.Set("X-Tenant-ID", "t1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
