package models

import "errors"

// Entity extraction failures. These surface as 4xx on HTTP ingress and as a
// logged drop on the consumer path.
var (
	ErrMissingPatientID = errors.New("missing patient ID in DICOM object")
	ErrEmptyPatientID   = errors.New("patient ID is empty in DICOM object")
	ErrMissingStudyUID  = errors.New("missing study UID in DICOM object")
	ErrEmptyStudyUID    = errors.New("study UID is empty in DICOM object")
	ErrMissingSeriesUID = errors.New("missing series UID in DICOM object")
	ErrEmptySeriesUID   = errors.New("series UID is empty in DICOM object")
	ErrMissingSopUID    = errors.New("missing SOP UID in DICOM object")
	ErrEmptySopUID      = errors.New("SOP UID is empty in DICOM object")
	ErrMissingStudyDate = errors.New("missing study date in DICOM object")
	ErrEmptyStudyDate   = errors.New("study date is empty in DICOM object")
	ErrMissingModality  = errors.New("missing modality in DICOM object")
	ErrEmptyModality    = errors.New("modality is empty in DICOM object")
)

// extractionErrors gates IsExtractionError.
var extractionErrors = []error{
	ErrMissingPatientID, ErrEmptyPatientID,
	ErrMissingStudyUID, ErrEmptyStudyUID,
	ErrMissingSeriesUID, ErrEmptySeriesUID,
	ErrMissingSopUID, ErrEmptySopUID,
	ErrMissingStudyDate, ErrEmptyStudyDate,
	ErrMissingModality, ErrEmptyModality,
}

// IsExtractionError reports whether err belongs to the validation taxonomy.
func IsExtractionError(err error) bool {
	for _, e := range extractionErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Validate checks the required fields of an ingest payload before any row is
// written. A series without a study, or a study without a patient, never
// reaches the storage provider.
func (m *StoreMeta) Validate() error {
	if m.PatientInfo.PatientID.String() == "" {
		return ErrEmptyPatientID
	}
	if m.StudyInfo.StudyInstanceUID.String() == "" {
		return ErrEmptyStudyUID
	}
	if m.SeriesInfo.SeriesInstanceUID.String() == "" {
		return ErrEmptySeriesUID
	}
	if m.ImageInfo.SOPInstanceUID.String() == "" {
		return ErrEmptySopUID
	}
	if m.SeriesInfo.Modality == "" {
		return ErrEmptyModality
	}
	if m.StudyInfo.StudyDate == nil {
		return ErrMissingStudyDate
	}
	return nil
}
