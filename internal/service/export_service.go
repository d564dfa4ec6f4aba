package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/models"
	"github.com/noah-isme/timetable-solver/internal/repository"
	"github.com/noah-isme/timetable-solver/pkg/export"
	"github.com/noah-isme/timetable-solver/pkg/jobs"
	"github.com/noah-isme/timetable-solver/pkg/storage"
)

// scheduleSource is the read side ScheduleExportService renders from — the
// same persisted-timetable view the browse endpoint serves, never the
// solver's write path.
type scheduleSource interface {
	List(ctx context.Context, filter repository.ScheduleBrowseFilter) ([]domain.Assignment, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export job behaviour.
type ExportConfig struct {
	APIPrefix  string
	ResultTTL  time.Duration
	Workers    int
	MaxRetries int
}

// ExportJobStatus is the snapshot a caller polls while a rendering job runs.
type ExportJobStatus struct {
	ID           string              `json:"id"`
	Format       models.ReportFormat `json:"format"`
	Status       models.ReportStatus `json:"status"`
	ResultURL    string              `json:"resultUrl,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	FinishedAt   *time.Time          `json:"finishedAt,omitempty"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
}

// ScheduleExportService renders the currently persisted timetable to CSV or
// PDF and stores it behind a signed, time-limited download link. Grounded on
// the teacher's `ExportService` + `ReportWorker` pair, collapsed into one
// in-memory-tracked job since a rendered timetable, unlike the teacher's
// attendance/grade reports, needs no durable job table — a lost in-flight
// render can simply be resubmitted.
type ScheduleExportService struct {
	source  scheduleSource
	storage fileStorage
	signer  *storage.SignedURLSigner
	csv     csvRenderer
	pdf     pdfRenderer
	queue   *jobs.Queue
	logger  *zap.Logger
	cfg     ExportConfig

	mu   sync.RWMutex
	jobs map[string]*ExportJobStatus
}

// NewScheduleExportService wires a ScheduleExportService and starts its
// background render queue against ctx.
func NewScheduleExportService(
	ctx context.Context,
	source scheduleSource,
	store fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
	csv csvRenderer,
	pdf pdfRenderer,
) *ScheduleExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}

	s := &ScheduleExportService{
		source:  source,
		storage: store,
		signer:  signer,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
		cfg:     cfg,
		jobs:    make(map[string]*ExportJobStatus),
	}

	s.queue = jobs.NewQueue("schedule-export", s.render, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logger,
	})
	s.queue.Start(ctx)
	return s
}

// Submit enqueues a render job for the current persisted timetable and
// returns its job ID immediately; callers poll Status for completion.
func (s *ScheduleExportService) Submit(format models.ReportFormat) (string, error) {
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	jobID := uuid.NewString()

	s.mu.Lock()
	s.jobs[jobID] = &ExportJobStatus{
		ID:        jobID,
		Format:    format,
		Status:    models.ReportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: jobID, Type: string(format), Payload: format}); err != nil {
		s.mu.Lock()
		delete(s.jobs, jobID)
		s.mu.Unlock()
		return "", err
	}
	return jobID, nil
}

// Status returns the current state of a submitted export job.
func (s *ScheduleExportService) Status(jobID string) (*ExportJobStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.jobs[jobID]
	if !ok {
		return nil, false
	}
	clone := *status
	return &clone, true
}

// Open returns a handle to a rendered export file for download.
func (s *ScheduleExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// ParseToken validates a download token minted by a completed render.
func (s *ScheduleExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Cleanup removes rendered files past ttl (defaults to cfg.ResultTTL).
func (s *ScheduleExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ScheduleExportService) render(ctx context.Context, job jobs.Job) error {
	format, _ := job.Payload.(models.ReportFormat)
	s.setStatus(job.ID, models.ReportStatusProcessing, "", "")

	assignments, err := s.source.List(ctx, repository.ScheduleBrowseFilter{})
	if err != nil {
		s.setStatus(job.ID, models.ReportStatusFailed, "", err.Error())
		return err
	}

	dataset := assignmentsToDataset(assignments)
	title := "Timetable Export"

	var payload []byte
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.setStatus(job.ID, models.ReportStatusFailed, "", err.Error())
		return err
	}

	filename := fmt.Sprintf("timetable_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.setStatus(job.ID, models.ReportStatusFailed, "", err.Error())
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.setStatus(job.ID, models.ReportStatusFailed, "", err.Error())
		return err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/schedule/export/download/%s", prefix, token)

	s.setStatus(job.ID, models.ReportStatusFinished, url, "")
	return nil
}

func (s *ScheduleExportService) setStatus(jobID string, status models.ReportStatus, url, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.jobs[jobID]
	if !ok {
		return
	}
	current.Status = status
	if url != "" {
		current.ResultURL = url
	}
	if errMsg != "" {
		current.ErrorMessage = errMsg
	}
	if status == models.ReportStatusFinished || status == models.ReportStatusFailed {
		now := time.Now().UTC()
		current.FinishedAt = &now
	}
}

func assignmentsToDataset(assignments []domain.Assignment) export.Dataset {
	headers := []string{"Day", "Start", "End", "Course", "Session Type", "Room", "Building", "Teacher", "Students"}
	rows := make([]map[string]string, 0, len(assignments))
	for _, a := range assignments {
		start, _ := a.StartTime()
		end, _ := a.EndTime()
		rows = append(rows, map[string]string{
			"Day":          a.Day.String(),
			"Start":        start,
			"End":          end,
			"Course":       fmt.Sprintf("%s %s", a.Variable.CourseCode, a.Variable.CourseName),
			"Session Type": a.Variable.SessionType.String(),
			"Room":         a.RoomNumber,
			"Building":     a.BuildingName,
			"Teacher":      a.TeacherName(),
			"Students":     fmt.Sprintf("%d", a.Variable.StudentCount),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
