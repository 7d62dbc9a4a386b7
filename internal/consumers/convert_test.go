package consumers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/uidhash"
)

func sampleStore() models.StoreMeta {
	studyDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return models.StoreMeta{
		TenantID:          "t1",
		FilePath:          "/in/a.dcm",
		FileSize:          1024,
		TransferSyntaxUID: "1.2.840.10008.1.2.1",
		NumberOfFrames:    1,
		PatientInfo: models.Patient{
			TenantID:  dbtypes.Make[dbtypes.Len64]("t1"),
			PatientID: dbtypes.Make[dbtypes.Len64]("P001"),
		},
		StudyInfo: models.Study{
			StudyInstanceUID: dbtypes.Make[dbtypes.Len64]("1.2.3"),
			StudyDate:        &studyDate,
		},
		SeriesInfo: models.Series{
			SeriesInstanceUID: dbtypes.Make[dbtypes.Len64]("1.2.3.1"),
			Modality:          "CT",
		},
		ImageInfo: models.Image{
			SOPInstanceUID: dbtypes.Make[dbtypes.Len64]("1.2.3.1.1"),
			SOPClassUID:    dbtypes.Make[dbtypes.Len64]("1.2.840.10008.5.1.4.1.1.2"),
		},
	}
}

func TestStateFromStoreComputesHashes(t *testing.T) {
	store := sampleStore()
	state := StateFromStore(&store)

	assert.Equal(t, uidhash.Hash64("1.2.3"), state.StudyUIDHash)
	assert.Equal(t, uidhash.SeriesHash32("1.2.3", "1.2.3.1"), state.SeriesUIDHash)
	assert.Equal(t, "20240115", state.StudyDateOrigin.String())
}

func TestStateFromStoreCarriesIdentity(t *testing.T) {
	store := sampleStore()
	state := StateFromStore(&store)

	assert.Equal(t, "t1", state.TenantID.String())
	assert.Equal(t, "1.2.3.1.1", state.SopUID.String())
	assert.Equal(t, "CT", *state.Modality)
	assert.Equal(t, "1.2.840.10008.1.2.1", state.TransferSyntaxUID.String())
	assert.Equal(t, "/in/a.dcm", state.FilePath)
	assert.Equal(t, models.JSONStatusPending, state.JSONStatus)
}

func TestStateFromStoreMissingDateFallsBack(t *testing.T) {
	store := sampleStore()
	store.StudyInfo.StudyDate = nil
	state := StateFromStore(&store)
	assert.Equal(t, dbtypes.DefaultDicomDate, state.StudyDateOrigin.String())
}
