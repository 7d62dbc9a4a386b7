package repository

import (
	"time"

	"github.com/otcheredev/dicomweb-store/internal/models"
)

// The entity builders project a denormalized state record back onto the four
// hierarchy tables. Counter columns carry the per-batch delta; the upsert
// turns them into monotonic increments.

func patientFromState(m *models.StateMeta, now time.Time) models.Patient {
	return models.Patient{
		TenantID:         m.TenantID,
		PatientID:        m.PatientID,
		PatientName:      m.PatientName,
		PatientSex:       m.PatientSex,
		PatientBirthDate: m.PatientBirthDate,
		CreatedTime:      now,
		UpdatedTime:      now,
	}
}

func studyFromState(m *models.StateMeta, now time.Time) models.Study {
	return models.Study{
		TenantID:         m.TenantID,
		StudyInstanceUID: m.StudyUID,
		PatientID:        m.PatientID,
		PatientAge:       m.PatientAge,
		PatientSize:      m.PatientSize,
		PatientWeight:    m.PatientWeight,
		StudyDate:        m.StudyDate,
		StudyTime:        m.StudyTime,
		AccessionNumber:  m.AccessionNumber,
		StudyID:          m.StudyID,
		StudyDescription: m.StudyDescription,
		ReceivedInstances: 1,
		SpaceSize:         m.FileSize,
		CreatedTime:       now,
		UpdatedTime:       now,
	}
}

func seriesFromState(m *models.StateMeta, now time.Time) models.Series {
	modality := ""
	if m.Modality != nil {
		modality = *m.Modality
	}
	return models.Series{
		TenantID:          m.TenantID,
		SeriesInstanceUID: m.SeriesUID,
		StudyInstanceUID:  m.StudyUID,
		PatientID:         m.PatientID,
		Modality:          modality,
		SeriesNumber:      m.SeriesNumber,
		SeriesDate:        m.SeriesDate,
		SeriesTime:        m.SeriesTime,
		SeriesDescription: m.SeriesDescription,
		BodyPartExamined:  m.BodyPartExamined,
		ProtocolName:      m.ProtocolName,
		NumberOfSeriesRelatedInstances: m.SeriesRelatedInstances,
		ReceivedInstances:              1,
		SpaceSize:                      m.FileSize,
		CreatedTime:                    now,
		UpdatedTime:                    now,
	}
}

func imageFromState(m *models.StateMeta, now time.Time) models.Image {
	path := m.FilePath
	return models.Image{
		TenantID:          m.TenantID,
		SOPInstanceUID:    m.SopUID,
		SeriesInstanceUID: m.SeriesUID,
		StudyInstanceUID:  m.StudyUID,
		PatientID:         m.PatientID,
		InstanceNumber:    m.InstanceNumber,
		TransferSyntaxUID: m.TransferSyntaxUID,
		SOPClassUID:       m.SopClassUID,
		PixelDataLocation: &path,
		NumberOfFrames:    m.NumberOfFrames,
		SpaceSize:         m.FileSize,
		CreatedTime:       now,
		UpdatedTime:       now,
	}
}
