package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
)

func strPtr(s string) *string { return &s }

func sampleState() StateMeta {
	num := int32(3)
	studyDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return StateMeta{
		TenantID:          dbtypes.Make[dbtypes.Len64]("t1"),
		SopUID:            dbtypes.Make[dbtypes.Len64]("1.2.3.1.1"),
		StudyUID:          dbtypes.Make[dbtypes.Len64]("1.2.3"),
		SeriesUID:         dbtypes.Make[dbtypes.Len64]("1.2.3.1"),
		PatientID:         dbtypes.Make[dbtypes.Len64]("P001"),
		PatientName:       strPtr("DOE^JANE"),
		Modality:          strPtr("CT"),
		SeriesNumber:      &num,
		StudyDate:         &studyDate,
		TransferSyntaxUID: dbtypes.Make[dbtypes.Len64]("1.2.840.10008.1.2.1"),
		SopClassUID:       dbtypes.Make[dbtypes.Len64]("1.2.840.10008.5.1.4.1.1.2"),
		FilePath:          "/store/t1/20240115/1.2.3/1.2.3.1/1.2.3.1.1.dcm",
		NumberOfFrames:    1,
		StudyUIDHash:      0xDEADBEEF12345678,
		SeriesUIDHash:     0xCAFE1234,
		StudyDateOrigin:   dbtypes.MakeDicomDate("20240115"),
		JSONStatus:        JSONStatusPending,
		CreatedTime:       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		UpdatedTime:       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestStateMetaJSONRoundTrip(t *testing.T) {
	orig := sampleState()
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var got StateMeta
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, orig, got)
}

func TestStateMetaHashesSurviveSerde(t *testing.T) {
	orig := sampleState()
	data, _ := json.Marshal(orig)
	var got StateMeta
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, orig.StudyUIDHash, got.StudyUIDHash)
	assert.Equal(t, orig.SeriesUIDHash, got.SeriesUIDHash)
	assert.Equal(t, "20240115", got.StudyDateOrigin.String())
}

func TestToDicomJSONRequiredUIDs(t *testing.T) {
	m := sampleState()
	obj := m.ToDicomJSON()

	assert.Equal(t, []any{"1.2.3"}, obj[TagStudyInstanceUID].Value)
	assert.Equal(t, []any{"1.2.3.1"}, obj[TagSeriesInstanceUID].Value)
	assert.Equal(t, []any{"1.2.3.1.1"}, obj[TagSOPInstanceUID].Value)
	assert.Equal(t, "UI", obj[TagSOPClassUID].VR)
	assert.Equal(t, []any{"20240115"}, obj[TagStudyDate].Value)
	assert.Equal(t, []any{"CT"}, obj[TagModality].Value)
}

func TestToDicomJSONOmitsAbsentAttributes(t *testing.T) {
	m := sampleState()
	m.PatientAge = nil
	m.BodyPartExamined = nil
	obj := m.ToDicomJSON()
	_, hasAge := obj[TagPatientAge]
	_, hasBodyPart := obj[TagBodyPartExamined]
	assert.False(t, hasAge)
	assert.False(t, hasBodyPart)
}

func TestStoreMetaValidate(t *testing.T) {
	valid := StoreMeta{
		PatientInfo: Patient{PatientID: dbtypes.Make[dbtypes.Len64]("P001")},
		StudyInfo: Study{
			StudyInstanceUID: dbtypes.Make[dbtypes.Len64]("1.2.3"),
			StudyDate:        func() *time.Time { d := time.Now(); return &d }(),
		},
		SeriesInfo: Series{
			SeriesInstanceUID: dbtypes.Make[dbtypes.Len64]("1.2.3.1"),
			Modality:          "CT",
		},
		ImageInfo: Image{SOPInstanceUID: dbtypes.Make[dbtypes.Len64]("1.2.3.1.1")},
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*StoreMeta)
		want   error
	}{
		{"empty patient", func(m *StoreMeta) { m.PatientInfo.PatientID = "" }, ErrEmptyPatientID},
		{"empty study", func(m *StoreMeta) { m.StudyInfo.StudyInstanceUID = "" }, ErrEmptyStudyUID},
		{"empty series", func(m *StoreMeta) { m.SeriesInfo.SeriesInstanceUID = "" }, ErrEmptySeriesUID},
		{"empty sop", func(m *StoreMeta) { m.ImageInfo.SOPInstanceUID = "" }, ErrEmptySopUID},
		{"empty modality", func(m *StoreMeta) { m.SeriesInfo.Modality = "" }, ErrEmptyModality},
		{"missing study date", func(m *StoreMeta) { m.StudyInfo.StudyDate = nil }, ErrMissingStudyDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := valid
			tc.mutate(&m)
			err := m.Validate()
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsExtractionError(err))
		})
	}
}
