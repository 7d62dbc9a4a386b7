package server

import (
	"time"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/pkg/dicomutil"
)

func parseDicomDate(raw string) *time.Time {
	if len(raw) != 8 {
		return nil
	}
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return nil
	}
	return &t
}

// ExtractStoreMeta validates a received dataset and projects it onto the
// ingest payload. The required-field checks mirror the consumer's: a dataset
// that fails here is rejected with 400 before anything is written.
func ExtractStoreMeta(ds *dicom.Dataset, tenantID string, fileSize int64) (*models.StoreMeta, error) {
	patientID := dicomutil.GetString(ds, tag.PatientID)
	if patientID == "" {
		return nil, models.ErrEmptyPatientID
	}
	studyUID := dicomutil.GetString(ds, tag.StudyInstanceUID)
	if studyUID == "" {
		return nil, models.ErrEmptyStudyUID
	}
	seriesUID := dicomutil.GetString(ds, tag.SeriesInstanceUID)
	if seriesUID == "" {
		return nil, models.ErrEmptySeriesUID
	}
	sopUID := dicomutil.GetString(ds, tag.SOPInstanceUID)
	if sopUID == "" {
		return nil, models.ErrEmptySopUID
	}
	modality := dicomutil.GetString(ds, tag.Modality)
	if modality == "" {
		return nil, models.ErrEmptyModality
	}
	studyDateRaw := dicomutil.GetString(ds, tag.StudyDate)
	if studyDateRaw == "" {
		return nil, models.ErrEmptyStudyDate
	}
	studyDate := parseDicomDate(studyDateRaw)
	if studyDate == nil {
		return nil, models.ErrEmptyStudyDate
	}

	transferSyntax := dicomutil.GetString(ds, tag.TransferSyntaxUID)
	sopClass := dicomutil.GetString(ds, tag.SOPClassUID)

	tenant := dbtypes.Make[dbtypes.Len64](tenantID)

	meta := &models.StoreMeta{
		TenantID:          tenantID,
		FileSize:          fileSize,
		TransferSyntaxUID: transferSyntax,
		NumberOfFrames:    dicomutil.GetInt(ds, tag.NumberOfFrames, 1),
		PatientInfo: models.Patient{
			TenantID:         tenant,
			PatientID:        dbtypes.Make[dbtypes.Len64](patientID),
			PatientName:      dicomutil.GetStringPtr(ds, tag.PatientName),
			PatientSex:       dicomutil.GetStringPtr(ds, tag.PatientSex),
			PatientBirthDate: parseDicomDate(dicomutil.GetString(ds, tag.PatientBirthDate)),
			EthnicGroup:      dicomutil.GetStringPtr(ds, tag.EthnicGroup),
		},
		StudyInfo: models.Study{
			TenantID:               tenant,
			StudyInstanceUID:       dbtypes.Make[dbtypes.Len64](studyUID),
			PatientID:              dbtypes.Make[dbtypes.Len64](patientID),
			PatientAge:             dicomutil.GetStringPtr(ds, tag.PatientAge),
			PatientSize:            dicomutil.GetFloatPtr(ds, tag.PatientSize),
			PatientWeight:          dicomutil.GetFloatPtr(ds, tag.PatientWeight),
			StudyDate:              studyDate,
			StudyTime:              dicomutil.GetStringPtr(ds, tag.StudyTime),
			AccessionNumber:        dicomutil.GetStringPtr(ds, tag.AccessionNumber),
			StudyID:                dicomutil.GetStringPtr(ds, tag.StudyID),
			StudyDescription:       dicomutil.GetStringPtr(ds, tag.StudyDescription),
			ReferringPhysicianName: dicomutil.GetStringPtr(ds, tag.ReferringPhysicianName),
		},
		SeriesInfo: models.Series{
			TenantID:          tenant,
			SeriesInstanceUID: dbtypes.Make[dbtypes.Len64](seriesUID),
			StudyInstanceUID:  dbtypes.Make[dbtypes.Len64](studyUID),
			PatientID:         dbtypes.Make[dbtypes.Len64](patientID),
			Modality:          modality,
			SeriesNumber:      dicomutil.GetIntPtr(ds, tag.SeriesNumber),
			SeriesDate:        parseDicomDate(dicomutil.GetString(ds, tag.SeriesDate)),
			SeriesTime:        dicomutil.GetStringPtr(ds, tag.SeriesTime),
			SeriesDescription: dicomutil.GetStringPtr(ds, tag.SeriesDescription),
			BodyPartExamined:  dicomutil.GetStringPtr(ds, tag.BodyPartExamined),
			ProtocolName:      dicomutil.GetStringPtr(ds, tag.ProtocolName),
		},
		ImageInfo: models.Image{
			TenantID:                  tenant,
			SOPInstanceUID:            dbtypes.Make[dbtypes.Len64](sopUID),
			SeriesInstanceUID:         dbtypes.Make[dbtypes.Len64](seriesUID),
			StudyInstanceUID:          dbtypes.Make[dbtypes.Len64](studyUID),
			PatientID:                 dbtypes.Make[dbtypes.Len64](patientID),
			InstanceNumber:            dicomutil.GetIntPtr(ds, tag.InstanceNumber),
			ImageOrientationPatient:   dicomutil.GetBackslashJoined(ds, tag.ImageOrientationPatient),
			ImagePositionPatient:      dicomutil.GetBackslashJoined(ds, tag.ImagePositionPatient),
			SliceThickness:            dicomutil.GetFloatPtr(ds, tag.SliceThickness),
			SliceLocation:             dicomutil.GetFloatPtr(ds, tag.SliceLocation),
			SamplesPerPixel:           dicomutil.GetIntPtr(ds, tag.SamplesPerPixel),
			PhotometricInterpretation: dicomutil.GetStringPtr(ds, tag.PhotometricInterpretation),
			Rows:                      dicomutil.GetIntPtr(ds, tag.Rows),
			Columns:                   dicomutil.GetIntPtr(ds, tag.Columns),
			BitsAllocated:             dicomutil.GetIntPtr(ds, tag.BitsAllocated),
			BitsStored:                dicomutil.GetIntPtr(ds, tag.BitsStored),
			HighBit:                   dicomutil.GetIntPtr(ds, tag.HighBit),
			PixelRepresentation:       dicomutil.GetIntPtr(ds, tag.PixelRepresentation),
			RescaleIntercept:          dicomutil.GetFloatPtr(ds, tag.RescaleIntercept),
			RescaleSlope:              dicomutil.GetFloatPtr(ds, tag.RescaleSlope),
			RescaleType:               dicomutil.GetStringPtr(ds, tag.RescaleType),
			NumberOfFrames:            dicomutil.GetInt(ds, tag.NumberOfFrames, 1),
			TransferSyntaxUID:         dbtypes.Make[dbtypes.Len64](transferSyntax),
			SOPClassUID:               dbtypes.Make[dbtypes.Len64](sopClass),
			SpaceSize:                 fileSize,
		},
	}
	return meta, nil
}
