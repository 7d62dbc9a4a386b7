package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/otcheredev/dicomweb-store/internal/database"
	"github.com/otcheredev/dicomweb-store/internal/models"
)

// StateRepository is the storage provider for the DICOM hierarchy. All
// operations are tenant-scoped; writes are transactional upserts in the
// fixed order patient, study, series, image, state.
type StateRepository struct{}

// NewStateRepository creates a new state repository
func NewStateRepository() *StateRepository {
	return &StateRepository{}
}

// GetStudy is a point lookup. A missing row returns (nil, nil).
func (r *StateRepository) GetStudy(ctx context.Context, tenantID, studyUID string) (*models.Study, error) {
	var study models.Study
	err := database.DB.WithContext(ctx).
		Where("tenant_id = ? AND study_instance_uid = ?", tenantID, studyUID).
		First(&study).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get study %s: %v", ErrDatabase, studyUID, err)
	}
	return &study, nil
}

// GetSeries is a point lookup. A missing row returns (nil, nil).
func (r *StateRepository) GetSeries(ctx context.Context, tenantID, seriesUID string) (*models.Series, error) {
	var series models.Series
	err := database.DB.WithContext(ctx).
		Where("tenant_id = ? AND series_instance_uid = ?", tenantID, seriesUID).
		First(&series).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get series %s: %v", ErrDatabase, seriesUID, err)
	}
	return &series, nil
}

// SaveState upserts a single state record.
func (r *StateRepository) SaveState(ctx context.Context, state *models.StateMeta) error {
	return r.SaveStateList(ctx, []models.StateMeta{*state})
}

// SaveStateList upserts all four entity levels plus the state projection in
// one transaction. Entities repeated within the batch are deduplicated by
// key with their counter deltas summed, so the batch stays at one statement
// per table regardless of size.
func (r *StateRepository) SaveStateList(ctx context.Context, states []models.StateMeta) error {
	if len(states) == 0 {
		return nil
	}
	now := time.Now().UTC()

	patients := make([]models.Patient, 0, len(states))
	studies := make([]models.Study, 0, len(states))
	series := make([]models.Series, 0, len(states))
	images := make([]models.Image, 0, len(states))
	stateRows := make([]models.StateMeta, 0, len(states))

	patientIdx := map[string]int{}
	studyIdx := map[string]int{}
	seriesIdx := map[string]int{}
	imageIdx := map[string]int{}

	for i := range states {
		s := &states[i]
		if s.StudyUID.String() == "" || s.PatientID.String() == "" {
			return fmt.Errorf("%w: state %s lacks hierarchy parents", ErrExtractionFailed, s.SopUID)
		}

		pk := s.TenantID.String() + "\x00" + s.PatientID.String()
		if _, ok := patientIdx[pk]; !ok {
			patientIdx[pk] = len(patients)
			patients = append(patients, patientFromState(s, now))
		}

		sk := s.TenantID.String() + "\x00" + s.StudyUID.String()
		if j, ok := studyIdx[sk]; ok {
			studies[j].ReceivedInstances++
			studies[j].SpaceSize += s.FileSize
		} else {
			studyIdx[sk] = len(studies)
			studies = append(studies, studyFromState(s, now))
		}

		srk := s.TenantID.String() + "\x00" + s.SeriesUID.String()
		if j, ok := seriesIdx[srk]; ok {
			series[j].ReceivedInstances++
			series[j].SpaceSize += s.FileSize
		} else {
			seriesIdx[srk] = len(series)
			series = append(series, seriesFromState(s, now))
		}

		row := *s
		row.CreatedTime = now
		row.UpdatedTime = now

		ik := s.TenantID.String() + "\x00" + s.SopUID.String()
		if j, ok := imageIdx[ik]; ok {
			images[j] = imageFromState(s, now)
			stateRows[j] = row
			continue
		}
		imageIdx[ik] = len(images)
		images = append(images, imageFromState(s, now))
		stateRows = append(stateRows, row)
	}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(upsertPatient()).Create(&patients).Error; err != nil {
			return fmt.Errorf("upsert patients: %w", err)
		}
		if err := tx.Clauses(upsertStudy(tx)).Create(&studies).Error; err != nil {
			return fmt.Errorf("upsert studies: %w", err)
		}
		if err := tx.Clauses(upsertSeries(tx)).Create(&series).Error; err != nil {
			return fmt.Errorf("upsert series: %w", err)
		}
		if err := tx.Clauses(upsertImage()).Create(&images).Error; err != nil {
			return fmt.Errorf("upsert images: %w", err)
		}
		if err := tx.Clauses(upsertState()).Create(&stateRows).Error; err != nil {
			return fmt.Errorf("upsert state rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: save state list: %v", ErrTransactionFailed, err)
	}
	return nil
}

// SaveJSONList persists the worker's materialization results: the json_meta
// projection plus the status/retry columns on the matching state rows.
func (r *StateRepository) SaveJSONList(ctx context.Context, metas []models.JSONMeta) error {
	if len(metas) == 0 {
		return nil
	}
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := make([]models.JSONMeta, len(metas))
		copy(rows, metas)
		if err := tx.Clauses(upsertJSONMeta()).Create(&rows).Error; err != nil {
			return fmt.Errorf("upsert json metas: %w", err)
		}
		for i := range metas {
			m := &metas[i]
			err := tx.Model(&models.StateMeta{}).
				Where("tenant_id = ? AND study_uid = ? AND series_uid = ?",
					m.TenantID.String(), m.StudyUID.String(), m.SeriesUID.String()).
				Updates(map[string]any{
					"json_status": m.JSONStatus,
					"retry_times": gorm.Expr("retry_times + ?", 1),
					"flag_time":   m.FlagTime,
				}).Error
			if err != nil {
				return fmt.Errorf("update state json status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: save json list: %v", ErrTransactionFailed, err)
	}
	return nil
}

// GetStateMetas loads the full projection of one study, ordered for
// rendering: series_number then instance_number ascending, nulls last, ties
// broken by sop_uid.
func (r *StateRepository) GetStateMetas(ctx context.Context, tenantID, studyUID string) ([]models.StateMeta, error) {
	var metas []models.StateMeta
	err := database.DB.WithContext(ctx).
		Where("tenant_id = ? AND study_uid = ?", tenantID, studyUID).
		Order("series_number IS NULL, series_number ASC, instance_number IS NULL, instance_number ASC, sop_uid ASC").
		Find(&metas).Error
	if err != nil {
		return nil, fmt.Errorf("%w: get state metas for study %s: %v", ErrDatabase, studyUID, err)
	}
	return metas, nil
}

// GetJSONMetas returns one representative state row per series whose JSON
// document is still pending or failed and whose last update is at or before
// endTime. The time lag guarantees the ingest transaction has committed
// before the worker reads.
func (r *StateRepository) GetJSONMetas(ctx context.Context, endTime time.Time) ([]models.StateMeta, error) {
	var rows []models.StateMeta
	err := database.DB.WithContext(ctx).
		Where("updated_time <= ? AND json_status <> ?", endTime, models.JSONStatusOK).
		Order("updated_time ASC").
		Limit(2000).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: get json metas: %v", ErrDatabase, err)
	}

	// One row per (tenant, study, series); the worker renders whole series.
	seen := map[string]bool{}
	out := rows[:0]
	for i := range rows {
		key := rows[i].TenantID.String() + "\x00" + rows[i].StudyUID.String() + "\x00" + rows[i].SeriesUID.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rows[i])
	}
	return out, nil
}

// UpdateTransferSyntax records the post-transcode syntax of one instance in
// both image_info and state_meta within a single transaction.
func (r *StateRepository) UpdateTransferSyntax(ctx context.Context, tenantID, sopUID, transferSyntaxUID string) error {
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Image{}).
			Where("tenant_id = ? AND sop_instance_uid = ?", tenantID, sopUID).
			Update("transfer_syntax_uid", transferSyntaxUID).Error; err != nil {
			return err
		}
		return tx.Model(&models.StateMeta{}).
			Where("tenant_id = ? AND sop_uid = ?", tenantID, sopUID).
			Update("transfer_syntax_uid", transferSyntaxUID).Error
	})
	if err != nil {
		return fmt.Errorf("%w: update transfer syntax for %s: %v", ErrTransactionFailed, sopUID, err)
	}
	return nil
}
