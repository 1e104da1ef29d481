package trackerbun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-riskreport/report"
	"github.com/uptrace/bun"
)

// Tracker stores report export history in a Bun-backed database.
type Tracker struct {
	DB          *bun.DB
	Now         func() time.Time
	IDGenerator func() string
}

var _ report.ExportTracker = (*Tracker)(nil)

// NewTracker creates a Bun-backed tracker.
func NewTracker(db *bun.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now, IDGenerator: defaultIDGenerator()}
}

// Migrate creates the report_exports table when missing.
func (t *Tracker) Migrate(ctx context.Context) error {
	if t == nil || t.DB == nil {
		return report.NewError(report.KindInternal, "tracker database not configured", nil)
	}
	_, err := t.DB.NewCreateTable().Model((*recordModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Start creates a new export record.
func (t *Tracker) Start(ctx context.Context, record report.ExportRecord) (string, error) {
	if t == nil || t.DB == nil {
		return "", report.NewError(report.KindInternal, "tracker database not configured", nil)
	}
	if record.ID == "" {
		record.ID = t.nextID()
	}
	if record.State == "" {
		record.State = report.StateQueued
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now()
	}

	model, err := modelFromRecord(record)
	if err != nil {
		return "", err
	}
	if _, err := t.DB.NewInsert().Model(&model).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

// SetState updates the export state.
func (t *Tracker) SetState(ctx context.Context, id string, state report.ExportState) error {
	if err := t.check(id); err != nil {
		return err
	}

	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", state).
		Where("id = ?", id)
	if state == report.StateRasterizing {
		query = query.Set("started_at = COALESCE(started_at, ?)", t.now())
	}
	if state == report.StateCanceled || state == report.StateCompleted {
		query = query.Set("completed_at = COALESCE(completed_at, ?)", t.now())
	}
	return t.exec(ctx, id, query)
}

// Fail marks the export as failed and keeps the error message.
func (t *Tracker) Fail(ctx context.Context, id string, cause error) error {
	if err := t.check(id); err != nil {
		return err
	}

	message := ""
	if cause != nil {
		message = cause.Error()
	}
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", report.StateFailed).
		Set("error_message = ?", message).
		Set("completed_at = COALESCE(completed_at, ?)", t.now()).
		Where("id = ?", id)
	return t.exec(ctx, id, query)
}

// Complete marks the export as completed with its outcome.
func (t *Tracker) Complete(ctx context.Context, id string, result report.ExportResult) error {
	if err := t.check(id); err != nil {
		return err
	}

	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", report.StateCompleted).
		Set("percentage = ?", result.Score.Percentage).
		Set("band = ?", string(result.Score.Band)).
		Set("pages = ?", result.Pages).
		Set("bytes_written = ?", result.Bytes).
		Set("filename = ?", result.Filename).
		Set("completed_at = COALESCE(completed_at, ?)", t.now()).
		Where("id = ?", id)
	if result.Artifact != nil {
		meta, err := json.Marshal(result.Artifact.Meta)
		if err != nil {
			return err
		}
		query = query.
			Set("artifact_key = ?", result.Artifact.Key).
			Set("artifact_meta = ?", meta)
	}
	return t.exec(ctx, id, query)
}

// Status returns a record by ID.
func (t *Tracker) Status(ctx context.Context, id string) (report.ExportRecord, error) {
	if err := t.check(id); err != nil {
		return report.ExportRecord{}, err
	}

	model := new(recordModel)
	err := t.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.ExportRecord{}, report.NewError(report.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
		}
		return report.ExportRecord{}, err
	}
	return model.toRecord()
}

// List returns records matching a filter, newest first.
func (t *Tracker) List(ctx context.Context, filter report.ExportFilter) ([]report.ExportRecord, error) {
	if t == nil || t.DB == nil {
		return nil, report.NewError(report.KindInternal, "tracker database not configured", nil)
	}

	models := make([]recordModel, 0)
	query := t.DB.NewSelect().Model(&models)
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		query = query.Where("created_at <= ?", filter.Until)
	}
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]report.ExportRecord, 0, len(models))
	for _, model := range models {
		record, err := model.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes a record from the tracker.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.check(id); err != nil {
		return err
	}
	return t.exec(ctx, id, t.DB.NewDelete().Model((*recordModel)(nil)).Where("id = ?", id))
}

type execer interface {
	Exec(ctx context.Context, dest ...any) (sql.Result, error)
}

func (t *Tracker) exec(ctx context.Context, id string, query execer) error {
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return report.NewError(report.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return nil
}

func (t *Tracker) check(id string) error {
	if t == nil || t.DB == nil {
		return report.NewError(report.KindInternal, "tracker database not configured", nil)
	}
	if id == "" {
		return report.NewError(report.KindInvalidInput, "export ID is required", nil)
	}
	return nil
}

type recordModel struct {
	bun.BaseModel `bun:"table:report_exports,alias:report_exports"`

	ID           string    `bun:",pk"`
	State        string    `bun:",notnull"`
	Percentage   int       `bun:"percentage"`
	Band         string    `bun:"band"`
	Pages        int       `bun:"pages"`
	BytesWritten int64     `bun:"bytes_written"`
	Filename     string    `bun:"filename"`
	ArtifactKey  string    `bun:"artifact_key"`
	ArtifactMeta []byte    `bun:"artifact_meta"`
	Error        string    `bun:"error_message"`
	CreatedAt    time.Time `bun:"created_at"`
	StartedAt    time.Time `bun:"started_at,nullzero"`
	CompletedAt  time.Time `bun:"completed_at,nullzero"`
}

func modelFromRecord(record report.ExportRecord) (recordModel, error) {
	meta, err := json.Marshal(record.Artifact.Meta)
	if err != nil {
		return recordModel{}, err
	}

	return recordModel{
		ID:           record.ID,
		State:        string(record.State),
		Percentage:   record.Percentage,
		Band:         string(record.Band),
		Pages:        record.Pages,
		BytesWritten: record.Bytes,
		Filename:     record.Filename,
		ArtifactKey:  record.Artifact.Key,
		ArtifactMeta: meta,
		Error:        record.Error,
		CreatedAt:    record.CreatedAt,
		CompletedAt:  record.CompletedAt,
	}, nil
}

func (m recordModel) toRecord() (report.ExportRecord, error) {
	record := report.ExportRecord{
		ID:          m.ID,
		State:       report.ExportState(m.State),
		Percentage:  m.Percentage,
		Band:        report.RiskBand(m.Band),
		Pages:       m.Pages,
		Bytes:       m.BytesWritten,
		Filename:    m.Filename,
		Artifact:    report.ArtifactRef{Key: m.ArtifactKey},
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
		CompletedAt: m.CompletedAt,
	}
	if len(m.ArtifactMeta) > 0 {
		if err := json.Unmarshal(m.ArtifactMeta, &record.Artifact.Meta); err != nil {
			return report.ExportRecord{}, err
		}
	}
	return record, nil
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tracker) nextID() string {
	if t.IDGenerator != nil {
		return t.IDGenerator()
	}
	return defaultIDGenerator()()
}

func defaultIDGenerator() func() string {
	var counter uint64
	return func() string {
		id := atomic.AddUint64(&counter, 1)
		return fmt.Sprintf("rpt-%d", id)
	}
}
