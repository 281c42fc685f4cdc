package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ReminderService scans for events whose reminder time has arrived and
// fans out eventReminder notifications. Each scan covers the half-open
// window since the previous scan, so a reminder fires exactly once even
// when the scan interval drifts.
type ReminderService struct {
	eventStore EventStore
	notifier   *NotificationService
	cron       *cron.Cron

	mu       sync.Mutex
	lastScan time.Time
}

// NewReminderService creates a new reminder service
func NewReminderService(eventStore EventStore, notifier *NotificationService) *ReminderService {
	return &ReminderService{
		eventStore: eventStore,
		notifier:   notifier,
		cron:       cron.New(),
		lastScan:   time.Now(),
	}
}

// Start schedules the scan loop. Stop must be called on shutdown.
func (s *ReminderService) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.Scan); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("Reminder scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running scan to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Scan delivers reminders for events whose reminder time fell inside the
// window since the previous scan.
func (s *ReminderService) Scan() {
	s.mu.Lock()
	from := s.lastScan
	to := time.Now()
	s.lastScan = to
	s.mu.Unlock()

	events, err := s.eventStore.EventsWithReminderBetween(from, to)
	if err != nil {
		slog.Error("Reminder scan failed", "error", err)
		return
	}
	for i := range events {
		s.notifier.NotifyReminder(&events[i])
	}
	if len(events) > 0 {
		slog.Info("Reminders delivered", "count", len(events))
	}
}
