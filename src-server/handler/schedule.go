package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nlcal/src-server/extractor"
	"nlcal/src-server/ical"
	"nlcal/src-server/metric"
	"nlcal/src-server/model"
	"nlcal/src-server/utils"
)

type ScheduleOptions struct {
	// Date the request is read relative to. Zero means today.
	ReferenceDate time.Time
	// Where the file goes. Empty means the configured output dir.
	OutputDir string
	// Hand the written file to the OS viewer.
	Open bool
	// How many occurrence start times to expand. Zero skips the preview.
	Preview int
}

type ScheduleResult struct {
	Event       model.ParsedEvent
	Document    ical.Document
	Filename    string
	Path        string // empty until written
	Occurrences []time.Time
}

// Build runs the request through the oracle and the compiler without
// touching the filesystem.
func Build(ctx context.Context, as *utils.AppState, text string, opts ScheduleOptions) (ScheduleResult, error) {
	referenceDate := opts.ReferenceDate
	if referenceDate.IsZero() {
		now := time.Now()
		referenceDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	startTimer := time.Now()
	event, err := extractor.Extract(ctx, as.Oracle, text, referenceDate)
	metric.ObserveOracle(as.OracleName(), ErrorKind(err), time.Since(startTimer))
	if err != nil {
		metric.IncScheduleError(ErrorKind(err))
		return ScheduleResult{}, fmt.Errorf("Build: %w", err)
	}
	slog.Info("event extracted",
		"title", event.Title,
		"start", event.StartDatetime,
		"end", event.EndDatetime,
		"timezone", event.Timezone,
		"recurring", event.Recurrence != nil,
	)

	doc, err := as.Compiler.Compile(event)
	if err != nil {
		metric.IncScheduleError(ErrorKind(err))
		return ScheduleResult{}, fmt.Errorf("Build: %w", err)
	}

	result := ScheduleResult{
		Event:    event,
		Document: doc,
		Filename: ical.Filename(event),
	}
	if opts.Preview > 0 {
		result.Occurrences, err = ical.Occurrences(event, opts.Preview)
		if err != nil {
			// The document is already valid; a preview failure isn't fatal.
			slog.Warn("can't expand occurrences", "error", err)
		}
	}
	return result, nil
}

// Schedule is Build followed by writing the file, recording it in history
// and optionally opening it.
func Schedule(ctx context.Context, as *utils.AppState, text string, opts ScheduleOptions) (ScheduleResult, error) {
	result, err := Build(ctx, as, text, opts)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("Schedule: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = as.Config.GetOutputDir()
	}
	path := filepath.Join(dir, result.Filename)
	if err := WriteFileAtomic(path, result.Document.Bytes()); err != nil {
		metric.IncScheduleError("write")
		return ScheduleResult{}, fmt.Errorf("Schedule: %w", err)
	}
	result.Path = path
	metric.IncEventsCompiled()
	slog.Info("calendar file written", "path", path, "uid", result.Document.UID)

	if err := RecordHistory(ctx, as, text, opts.ReferenceDate, result); err != nil {
		slog.Warn("can't record history", "error", err)
	}

	if opts.Open {
		if err := utils.OpenFile(path); err != nil {
			slog.Warn("can't open calendar file", "path", path, "error", err)
		}
	}
	return result, nil
}

// RecordHistory stores a generation when a history database is configured.
func RecordHistory(ctx context.Context, as *utils.AppState, text string, referenceDate time.Time, result ScheduleResult) error {
	if as.BunDB == nil {
		return nil
	}
	if referenceDate.IsZero() {
		referenceDate = time.Now()
	}
	record := &model.GeneratedEvent{
		ID:            result.Document.UID,
		Request:       text,
		ReferenceDate: referenceDate.Format(model.DateLayout),
		Title:         result.Event.Title,
		Description:   result.Event.Description,
		Timezone:      result.Event.Timezone,
		StartDatetime: result.Event.StartDatetime,
		EndDatetime:   result.Event.EndDatetime,
		RRule:         result.Document.RRule,
		Filename:      result.Filename,
		Path:          result.Path,
		CreatedAt:     result.Document.DTStamp.UTC().Unix(),
	}
	startTimer := time.Now()
	if err := record.Upsert(ctx, as.BunDB); err != nil {
		return fmt.Errorf("RecordHistory: %w", err)
	}
	metric.ObserveDatabaseWrite(time.Since(startTimer))
	return nil
}

// WriteFileAtomic writes data next to path and renames it into place, so a
// failed write never leaves a partial file behind. An existing file is
// replaced.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("WriteFileAtomic: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if err := os.Remove(tmpName); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("can't remove temp file", "path", tmpName, "error", err)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("WriteFileAtomic: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("WriteFileAtomic: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("WriteFileAtomic: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("WriteFileAtomic: %w", err)
	}
	return nil
}

// ErrorKind labels an error for metrics and exit messages.
func ErrorKind(err error) string {
	var (
		cfgErr    *utils.ConfigurationError
		commErr   *utils.OracleCommunicationError
		schemaErr *model.SchemaViolationError
		renderErr *ical.RenderError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, extractor.ErrEmptyRequest):
		return "empty"
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &commErr):
		return "communication"
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &renderErr):
		return "render"
	default:
		return "other"
	}
}
