// Package worker materializes per-series DICOM JSON documents in the
// background, gated on host load so it never competes with ingest.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/repository"
	"github.com/otcheredev/dicomweb-store/internal/storagepath"
)

const (
	tickInterval = 30 * time.Second
	// The ingest path gets this long to commit before we read.
	quiesceWindow = 3 * time.Minute

	cpuThreshold = 60.0
	memThreshold = 70.0
)

// LoadProbe samples host utilization. Swappable for tests.
type LoadProbe interface {
	CPUPercent() (float64, error)
	MemoryPercent() (float64, error)
}

type systemProbe struct{}

func (systemProbe) CPUPercent() (float64, error) {
	// Per-core sample over a short window, averaged.
	perCore, err := cpu.Percent(200*time.Millisecond, true)
	if err != nil {
		return 0, err
	}
	if len(perCore) == 0 {
		return 0, nil
	}
	var total float64
	for _, v := range perCore {
		total += v
	}
	return total / float64(len(perCore)), nil
}

func (systemProbe) MemoryPercent() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// JSONWorker is the background materializer.
type JSONWorker struct {
	repo   *repository.StateRepository
	layout storagepath.Layout
	probe  LoadProbe
}

// NewJSONWorker builds the worker with the real system probe.
func NewJSONWorker(repo *repository.StateRepository, layout storagepath.Layout) *JSONWorker {
	return &JSONWorker{repo: repo, layout: layout, probe: systemProbe{}}
}

// NewJSONWorkerWithProbe injects a probe; used by tests.
func NewJSONWorkerWithProbe(repo *repository.StateRepository, layout storagepath.Layout, probe LoadProbe) *JSONWorker {
	return &JSONWorker{repo: repo, layout: layout, probe: probe}
}

// Run ticks every 30 seconds until ctx is cancelled. A tick in flight
// finishes its batch before the worker exits.
func (w *JSONWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(context.WithoutCancel(ctx))
		}
	}
}

// ShouldRun applies the load gate.
func (w *JSONWorker) ShouldRun() bool {
	cpuUsage, err := w.probe.CPUPercent()
	if err != nil {
		log.Debug().Err(err).Msg("cpu probe failed; skipping tick")
		return false
	}
	memUsage, err := w.probe.MemoryPercent()
	if err != nil {
		log.Debug().Err(err).Msg("memory probe failed; skipping tick")
		return false
	}
	if cpuUsage >= cpuThreshold || memUsage >= memThreshold {
		log.Info().Float64("cpu", cpuUsage).Float64("mem", memUsage).Msg("system busy; skipping JSON generation")
		return false
	}
	return true
}

func (w *JSONWorker) tick(ctx context.Context) {
	if !w.ShouldRun() {
		return
	}

	endTime := time.Now().UTC().Add(-quiesceWindow)
	records, err := w.repo.GetJSONMetas(ctx, endTime)
	if err != nil {
		log.Error().Err(err).Msg("loading pending JSON records failed")
		return
	}
	if len(records) == 0 {
		return
	}
	log.Info().Int("records", len(records)).Msg("generating series JSON metadata")

	results := make([]models.JSONMeta, 0, len(records))
	for i := range records {
		record := &records[i]
		status := models.JSONStatusOK
		if err := w.generate(ctx, record); err != nil {
			log.Error().Err(err).
				Str("study_uid", record.StudyUID.String()).
				Str("series_uid", record.SeriesUID.String()).
				Msg("series JSON generation failed")
			status = models.JSONStatusFailed
		}
		now := time.Now().UTC()
		results = append(results, models.JSONMeta{
			TenantID:        record.TenantID,
			StudyUID:        record.StudyUID,
			SeriesUID:       record.SeriesUID,
			StudyUIDHash:    record.StudyUIDHash,
			SeriesUIDHash:   record.SeriesUIDHash,
			StudyDateOrigin: record.StudyDateOrigin,
			FlagTime:        &record.UpdatedTime,
			CreatedTime:     now,
			JSONStatus:      status,
			RetryTimes:      record.RetryTimes + 1,
		})
	}

	if err := w.repo.SaveJSONList(ctx, results); err != nil {
		log.Error().Err(err).Int("records", len(results)).Msg("persisting JSON statuses failed")
		return
	}
	log.Info().Int("records", len(results)).Msg("series JSON metadata persisted")
}

// generate renders one series as an application/dicom+json array and writes
// it atomically to the series JSON path.
func (w *JSONWorker) generate(ctx context.Context, record *models.StateMeta) error {
	metas, err := w.repo.GetStateMetas(ctx, record.TenantID.String(), record.StudyUID.String())
	if err != nil {
		return err
	}

	seriesUID := record.SeriesUID.String()
	objects := make([]models.DicomJSON, 0, len(metas))
	for i := range metas {
		if metas[i].SeriesUID.String() == seriesUID {
			objects = append(objects, metas[i].ToDicomJSON())
		}
	}
	if len(objects) == 0 {
		return fmt.Errorf("no state rows for series %s", seriesUID)
	}

	data, err := json.Marshal(objects)
	if err != nil {
		return fmt.Errorf("serialize series %s: %w", seriesUID, err)
	}

	path, err := w.layout.SeriesJSONFile(
		record.TenantID.String(),
		record.StudyDateOrigin.String(),
		record.StudyUID.String(),
		seriesUID,
		true,
	)
	if err != nil {
		return err
	}
	return storagepath.WriteFileAtomic(path, data)
}
