package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/otcheredev/dicomweb-store/internal/database"
	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
	"github.com/otcheredev/dicomweb-store/internal/models"
)

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	prev := database.DB
	database.DB = gdb
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})
	return mock
}

func TestGetStudyMissingReturnsNil(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "study_info"`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "study_instance_uid"}))

	repo := NewStateRepository()
	study, err := repo.GetStudy(context.Background(), "t1", "9.9.9")
	require.NoError(t, err)
	assert.Nil(t, study)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStudyFound(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "study_info"`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "study_instance_uid", "patient_id"}).
			AddRow("t1", "1.2.3", "P001"))

	repo := NewStateRepository()
	study, err := repo.GetStudy(context.Background(), "t1", "1.2.3")
	require.NoError(t, err)
	require.NotNil(t, study)
	assert.Equal(t, "1.2.3", study.StudyInstanceUID.String())
}

func TestSaveStateListRejectsOrphanState(t *testing.T) {
	setupMockDB(t)
	repo := NewStateRepository()

	orphan := models.StateMeta{
		TenantID: dbtypes.Make[dbtypes.Len64]("t1"),
		SopUID:   dbtypes.Make[dbtypes.Len64]("1.2.3.1.1"),
		// No study, no patient: a series without a study is rejected before
		// any SQL runs.
	}
	err := repo.SaveStateList(context.Background(), []models.StateMeta{orphan})
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestSaveStateListEmptyBatchIsNoop(t *testing.T) {
	setupMockDB(t)
	repo := NewStateRepository()
	assert.NoError(t, repo.SaveStateList(context.Background(), nil))
}

func TestGetStateMetasOrdering(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "state_meta" WHERE tenant_id = (.+) ORDER BY series_number IS NULL, series_number ASC, instance_number IS NULL, instance_number ASC, sop_uid ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "sop_uid", "study_uid"}).
			AddRow("t1", "1.2.3.1.1", "1.2.3").
			AddRow("t1", "1.2.3.1.2", "1.2.3"))

	repo := NewStateRepository()
	metas, err := repo.GetStateMetas(context.Background(), "t1", "1.2.3")
	require.NoError(t, err)
	assert.Len(t, metas, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJSONMetasDeduplicatesSeries(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "state_meta"`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "sop_uid", "study_uid", "series_uid"}).
			AddRow("t1", "1.2.3.1.1", "1.2.3", "1.2.3.1").
			AddRow("t1", "1.2.3.1.2", "1.2.3", "1.2.3.1").
			AddRow("t1", "1.2.3.2.1", "1.2.3", "1.2.3.2"))

	repo := NewStateRepository()
	metas, err := repo.GetJSONMetas(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, metas, 2, "one row per series")
}
