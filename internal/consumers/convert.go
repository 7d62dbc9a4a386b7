package consumers

import (
	"time"

	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/uidhash"
)

// StateFromStore projects an ingest payload onto the canonical state record,
// computing the partition hashes as it goes.
func StateFromStore(m *models.StoreMeta) models.StateMeta {
	studyUID := m.StudyInfo.StudyInstanceUID.String()
	seriesUID := m.SeriesInfo.SeriesInstanceUID.String()

	studyDateOrigin := dbtypes.DicomDateString(dbtypes.DefaultDicomDate)
	if m.StudyInfo.StudyDate != nil {
		studyDateOrigin = dbtypes.MakeDicomDate(m.StudyInfo.StudyDate.Format("20060102"))
	}

	now := time.Now().UTC()
	return models.StateMeta{
		TenantID:  dbtypes.Make[dbtypes.Len64](m.TenantID),
		SopUID:    m.ImageInfo.SOPInstanceUID,
		StudyUID:  m.StudyInfo.StudyInstanceUID,
		SeriesUID: m.SeriesInfo.SeriesInstanceUID,
		PatientID: m.PatientInfo.PatientID,

		PatientName:      m.PatientInfo.PatientName,
		PatientSex:       m.PatientInfo.PatientSex,
		PatientBirthDate: m.PatientInfo.PatientBirthDate,
		PatientAge:       m.StudyInfo.PatientAge,
		PatientSize:      m.StudyInfo.PatientSize,
		PatientWeight:    m.StudyInfo.PatientWeight,

		StudyDate:        m.StudyInfo.StudyDate,
		StudyTime:        m.StudyInfo.StudyTime,
		AccessionNumber:  m.StudyInfo.AccessionNumber,
		StudyID:          m.StudyInfo.StudyID,
		StudyDescription: m.StudyInfo.StudyDescription,

		Modality:               modalityPtr(m.SeriesInfo.Modality),
		SeriesNumber:           m.SeriesInfo.SeriesNumber,
		SeriesDate:             m.SeriesInfo.SeriesDate,
		SeriesTime:             m.SeriesInfo.SeriesTime,
		SeriesDescription:      m.SeriesInfo.SeriesDescription,
		SeriesRelatedInstances: m.SeriesInfo.NumberOfSeriesRelatedInstances,
		BodyPartExamined:       m.SeriesInfo.BodyPartExamined,
		ProtocolName:           m.SeriesInfo.ProtocolName,

		InstanceNumber:    m.ImageInfo.InstanceNumber,
		TransferSyntaxUID: dbtypes.Make[dbtypes.Len64](m.TransferSyntaxUID),
		SopClassUID:       m.ImageInfo.SOPClassUID,
		FilePath:          m.FilePath,
		FileSize:          m.FileSize,
		NumberOfFrames:    m.NumberOfFrames,

		StudyUIDHash:    uidhash.Hash64(studyUID),
		SeriesUIDHash:   uidhash.SeriesHash32(studyUID, seriesUID),
		StudyDateOrigin: studyDateOrigin,

		JSONStatus:  models.JSONStatusPending,
		CreatedTime: now,
		UpdatedTime: now,
	}
}

func modalityPtr(m string) *string {
	if m == "" {
		return nil
	}
	return &m
}
