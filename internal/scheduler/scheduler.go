package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"plan-review/internal/auditchain"
	"plan-review/internal/config"
	"plan-review/internal/models"
)

// taskTimeout bounds a single run of a scheduled task
const taskTimeout = 10 * time.Minute

// TrackStore is the read access the maintenance tasks need
type TrackStore interface {
	ListTracks(ctx context.Context) ([]models.ReviewTrack, error)
	ListRecords(ctx context.Context, ownerID uint, kind models.ReviewKind) ([]models.ReviewRecord, error)
	PendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.PendingReview, error)
}

// AuditWriter persists audit log entries
type AuditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// ChainReport summarizes one hash chain validation run
type ChainReport struct {
	TotalTracks  int      `json:"total_tracks"`
	ValidTracks  int      `json:"valid_tracks"`
	FailedTracks []string `json:"failed_tracks,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// BacklogReport lists reviews that have waited longer than the threshold
type BacklogReport struct {
	Threshold time.Duration          `json:"threshold"`
	Pending   []models.PendingReview `json:"pending"`
}

// Scheduler handles periodic tasks
type Scheduler struct {
	store    TrackStore
	audit    AuditWriter
	config   *config.SchedulerConfig
	now      func() time.Time
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a new scheduler. audit may be nil.
func NewScheduler(store TrackStore, audit AuditWriter, cfg *config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		store:    store,
		audit:    audit,
		config:   cfg,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() error {
	slog.Info("Starting scheduler",
		"hash_chain_validation_enabled", s.config.EnableHashChainValidation,
		"backlog_report_enabled", s.config.EnableBacklogReport)

	if s.config.EnableHashChainValidation {
		if err := s.startCronTask(s.config.HashChainValidationCron, "hash_chain_validation", s.runHashChainValidation); err != nil {
			return fmt.Errorf("failed to start hash chain validation: %w", err)
		}
	}

	if s.config.EnableBacklogReport {
		if err := s.startCronTask(s.config.BacklogReportCron, "backlog_report", s.runBacklogReport); err != nil {
			return fmt.Errorf("failed to start backlog report: %w", err)
		}
	}

	slog.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running tasks
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) startCronTask(cronExpr, taskName string, task func(ctx context.Context)) error {
	sched, err := parseSchedule(cronExpr)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(sched, taskName, task)
	}()
	return nil
}

func (s *Scheduler) loop(sched schedule, taskName string, task func(ctx context.Context)) {
	for {
		now := s.now()
		next := sched.next(now)
		slog.Info("Next task scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			slog.Info("Running scheduled task", "task", taskName)
			ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
			task(ctx)
			cancel()
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) runHashChainValidation(ctx context.Context) {
	if _, err := s.ValidateHashChains(ctx); err != nil {
		slog.Error("Hash chain validation failed", "error", err)
	}
}

func (s *Scheduler) runBacklogReport(ctx context.Context) {
	if _, err := s.ReportBacklog(ctx); err != nil {
		slog.Error("Backlog report failed", "error", err)
	}
}

// ValidateHashChains verifies every review chain and records an alert when any is broken
func (s *Scheduler) ValidateHashChains(ctx context.Context) (*ChainReport, error) {
	slog.Info("Starting hash chain validation")

	tracks, err := s.store.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list review tracks: %w", err)
	}

	report := &ChainReport{TotalTracks: len(tracks)}
	for _, track := range tracks {
		name := fmt.Sprintf("%s/%s/%s", track.ApplicationID, track.Topic, track.ReviewKind)

		records, err := s.store.ListRecords(ctx, track.UnitID, track.ReviewKind)
		if err != nil {
			slog.Error("Hash chain validation error", "track", name, "error", err)
			report.FailedTracks = append(report.FailedTracks, name)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		problems := auditchain.Verify(records)
		if len(problems) > 0 {
			slog.Warn("Hash chain validation failed", "track", name, "errors", problems)
			report.FailedTracks = append(report.FailedTracks, name)
			for _, p := range problems {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", name, p))
			}
			continue
		}
		report.ValidTracks++
	}

	slog.Info("Hash chain validation completed",
		"total_tracks", report.TotalTracks,
		"valid_tracks", report.ValidTracks,
		"failed_tracks", len(report.FailedTracks),
	)

	if len(report.FailedTracks) > 0 {
		if err := s.record(ctx, "integrity.chain_invalid", "review_records", report); err != nil {
			slog.Error("Failed to record hash chain alert", "error", err)
		}
	}
	return report, nil
}

// ReportBacklog lists open reviews older than the configured threshold
func (s *Scheduler) ReportBacklog(ctx context.Context) (*BacklogReport, error) {
	cutoff := s.now().Add(-s.config.BacklogThreshold)

	pending, err := s.store.PendingOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}

	report := &BacklogReport{Threshold: s.config.BacklogThreshold, Pending: pending}
	for _, p := range pending {
		slog.Info("Review waiting for a verdict",
			"record_id", p.RecordID,
			"application_id", p.ApplicationID,
			"topic", p.Topic,
			"review_kind", p.ReviewKind,
			"days_waiting", int(s.now().Sub(p.SubmittedAt).Hours()/24),
		)
	}
	slog.Info("Backlog report completed", "pending_reviews", len(pending))

	if len(pending) > 0 {
		if err := s.record(ctx, "review.backlog", "review_records", report); err != nil {
			slog.Error("Failed to record backlog report", "error", err)
		}
	}
	return report, nil
}

func (s *Scheduler) record(ctx context.Context, action, resource string, details any) error {
	if s.audit == nil {
		return nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode details: %w", err)
	}
	return s.audit.Create(ctx, &models.AuditLog{
		ActorRef: "scheduler",
		Action:   action,
		Resource: resource,
		Details:  string(data),
	})
}
