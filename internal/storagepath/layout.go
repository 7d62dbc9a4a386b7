// Package storagepath maps DICOM hierarchy coordinates onto the on-disk
// layout shared by the ingest consumers, the retrieval engine, and the JSON
// worker. The mapping is deterministic: per tenant and study date every UID
// triple resolves to exactly one path.
package storagepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout holds the two store roots from configuration.
type Layout struct {
	DicomStore string
	JSONStore  string
}

// StudyDir is {dicom_store}/{tenant}/{study_date}/{study_uid}.
func (l Layout) StudyDir(tenantID, studyDate, studyUID string, createIfMissing bool) (string, error) {
	dir := filepath.Join(l.DicomStore, tenantID, studyDate, studyUID)
	if createIfMissing {
		if err := ensureDir(dir); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// SeriesDir is {study_dir}/{series_uid}.
func (l Layout) SeriesDir(tenantID, studyDate, studyUID, seriesUID string, createIfMissing bool) (string, error) {
	dir := filepath.Join(l.DicomStore, tenantID, studyDate, studyUID, seriesUID)
	if createIfMissing {
		if err := ensureDir(dir); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// InstanceFile is {series_dir}/{sop_uid}.dcm.
func (l Layout) InstanceFile(tenantID, studyDate, studyUID, seriesUID, sopUID string, createIfMissing bool) (string, error) {
	dir, err := l.SeriesDir(tenantID, studyDate, studyUID, seriesUID, createIfMissing)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sopUID+".dcm"), nil
}

// StudyJSONFile is {json_store}/{tenant}/metadata/{study_date}/{study_uid}.json.
func (l Layout) StudyJSONFile(tenantID, studyDate, studyUID string, createIfMissing bool) (string, error) {
	dir := filepath.Join(l.JSONStore, tenantID, "metadata", studyDate)
	if createIfMissing {
		if err := ensureDir(dir); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, studyUID+".json"), nil
}

// SeriesJSONFile is {json_store}/{tenant}/metadata/{study_date}/{study_uid}/{series_uid}.json.
func (l Layout) SeriesJSONFile(tenantID, studyDate, studyUID, seriesUID string, createIfMissing bool) (string, error) {
	dir := filepath.Join(l.JSONStore, tenantID, "metadata", studyDate, studyUID)
	if createIfMissing {
		if err := ensureDir(dir); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, seriesUID+".json"), nil
}

// ensureDir is idempotent and safe under concurrent creation.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
