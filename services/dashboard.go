package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bikeshop-prices/models"
	"bikeshop-prices/storage"
	"bikeshop-prices/utils"
)

// Snapshot is one immutable canonical record set.
type Snapshot struct {
	ID       uuid.UUID
	Records  []*models.ShopRecord
	Report   models.LoadReport
	LoadedAt time.Time
}

// View is everything the presentation layer reads for one (snapshot,
// settings) pair. It is never modified after construction.
type View struct {
	SnapshotID uuid.UUID
	SettingsID uuid.UUID
	Settings   models.SelectionSettings

	Total     int
	Records   []*models.ShopRecord
	Histogram []float64
	Scatter   []models.ScatterPoint
	Extent    *models.Extent
	Average   *models.AverageDelta
	Report    models.LoadReport
}

type settingsVersion struct {
	id    uuid.UUID
	value models.SelectionSettings
}

// Dashboard owns the current record snapshot and selection settings and
// derives views from them. Both inputs are swapped wholesale; a view is
// recomputed in full only when either reference changed.
type Dashboard struct {
	logger     *utils.Logger
	source     storage.RowSource
	normalizer *Normalizer
	sink       storage.RecordWriter

	mu       sync.RWMutex
	snapshot *Snapshot
	settings settingsVersion

	viewMu sync.Mutex
	view   *View
}

// NewDashboard starts with an empty snapshot and default settings. sink may
// be nil; when set, every successful reload is persisted to it.
func NewDashboard(logger *utils.Logger, source storage.RowSource, normalizer *Normalizer, sink storage.RecordWriter) *Dashboard {
	return &Dashboard{
		logger:     logger,
		source:     source,
		normalizer: normalizer,
		sink:       sink,
		snapshot:   &Snapshot{ID: uuid.New(), LoadedAt: time.Now()},
		settings:   settingsVersion{id: uuid.New(), value: models.DefaultSelectionSettings()},
	}
}

// Reload fetches and normalizes the dataset once. On failure the previous
// snapshot stays in place; there is no retry.
func (d *Dashboard) Reload(ctx context.Context) error {
	rows, err := d.source.LoadRows(ctx)
	if err != nil {
		d.logger.Error("[dashboard] Dataset load failed, keeping previous snapshot: %v", err)
		return fmt.Errorf("dashboard: reload: %w", err)
	}

	records, report := d.normalizer.Normalize(rows)
	snap := &Snapshot{ID: uuid.New(), Records: records, Report: report, LoadedAt: time.Now()}

	d.mu.Lock()
	d.snapshot = snap
	d.mu.Unlock()

	d.logger.Info("[dashboard] Snapshot %s loaded with %d records", snap.ID, len(records))

	if d.sink != nil {
		if err := d.sink.Write(records); err != nil {
			d.logger.Error("[dashboard] Persisting snapshot %s failed: %v", snap.ID, err)
		}
	}
	return nil
}

// Snapshot returns the current record set.
func (d *Dashboard) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// Settings returns the current selection settings.
func (d *Dashboard) Settings() models.SelectionSettings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings.value
}

// ReplaceSettings installs s as the new settings value and returns its version.
func (d *Dashboard) ReplaceSettings(s models.SelectionSettings) uuid.UUID {
	v := settingsVersion{id: uuid.New(), value: s}

	d.mu.Lock()
	d.settings = v
	d.mu.Unlock()

	d.logger.Debug("[dashboard] Settings replaced (version %s)", v.id)
	return v.id
}

// View returns the derived view for the current inputs.
func (d *Dashboard) View() *View {
	d.mu.RLock()
	snap, settings := d.snapshot, d.settings
	d.mu.RUnlock()

	d.viewMu.Lock()
	defer d.viewMu.Unlock()

	if d.view != nil && d.view.SnapshotID == snap.ID && d.view.SettingsID == settings.id {
		return d.view
	}

	d.view = buildView(snap, settings)
	d.logger.Debug("[dashboard] Recomputed view: %d of %d records", len(d.view.Records), d.view.Total)
	return d.view
}

func buildView(snap *Snapshot, settings settingsVersion) *View {
	filtered := Filter(snap.Records, settings.value)
	v := &View{
		SnapshotID: snap.ID,
		SettingsID: settings.id,
		Settings:   settings.value,
		Total:      len(snap.Records),
		Records:    filtered,
		Histogram:  HistogramValues(filtered),
		Scatter:    ScatterPoints(filtered),
		Report:     snap.Report,
	}
	if ext, ok := DeltaExtent(filtered); ok {
		v.Extent = &ext
	}
	if avg, ok := AverageDelta(filtered); ok {
		v.Average = &avg
	}
	return v
}
