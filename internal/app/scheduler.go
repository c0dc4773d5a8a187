package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CalendarSyncer повторяет несинхронизированные операции календаря
type CalendarSyncer interface {
	SyncPendingCalendarEvents(ctx context.Context, limit int) (int, error)
}

// calendarSyncBatch сколько броней обрабатывается за один проход
const calendarSyncBatch = 100

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	syncer   CalendarSyncer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(syncer CalendarSyncer, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("calendar_sync_interval", s.interval))

	s.wg.Add(1)
	go s.runCalendarSyncTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

func (s *Scheduler) runCalendarSyncTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.syncCalendar(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.syncCalendar(ctx)
		case <-s.stopChan:
			s.logger.Info("Calendar sync task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Calendar sync task cancelled")
			return
		}
	}
}

func (s *Scheduler) syncCalendar(ctx context.Context) {
	synced, err := s.syncer.SyncPendingCalendarEvents(ctx, calendarSyncBatch)
	if err != nil {
		s.logger.Error("Failed to sync calendar events", zap.Error(err))
		return
	}

	if synced > 0 {
		s.logger.Info("Calendar events synced", zap.Int("count", synced))
	}
}
