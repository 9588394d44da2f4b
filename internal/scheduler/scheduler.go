package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/services"
	"github.com/taskforge-dev/taskforge/internal/types"
	"gorm.io/gorm"
)

// ReminderScheduler periodically notifies assignees about unfinished tasks
// whose start date falls within the next 24 hours. Each task is reminded at
// most once per process lifetime.
type ReminderScheduler struct {
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	reminded map[uint]bool
}

func NewReminderScheduler() *ReminderScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	interval := time.Hour
	if raw := os.Getenv("REMINDER_INTERVAL_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			interval = time.Duration(seconds) * time.Second
		}
	}

	return &ReminderScheduler{
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		reminded: make(map[uint]bool),
	}
}

// Start runs an immediate sweep and then ticks at the configured interval.
func (s *ReminderScheduler) Start() {
	log.Printf("Starting reminder scheduler (interval %s)", s.interval)

	go func() {
		s.sweep(db.DB)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sweep(db.DB)
			}
		}
	}()
}

// Stop cancels the reminder loop.
func (s *ReminderScheduler) Stop() {
	log.Println("Stopping reminder scheduler")
	s.cancel()
}

func (s *ReminderScheduler) sweep(gdb *gorm.DB) {
	now := time.Now()

	var tasks []models.Task

	err := gdb.
		Where("status <> ? AND start_date BETWEEN ? AND ?", types.TaskStatusFinished, now, now.Add(24*time.Hour)).
		Find(&tasks).Error

	if err != nil {
		log.Printf("Reminder sweep failed: %v", err)
		return
	}

	for _, task := range tasks {
		s.mu.Lock()
		seen := s.reminded[task.ID]
		if !seen {
			s.reminded[task.ID] = true
		}
		s.mu.Unlock()

		if seen {
			continue
		}

		var assignees []models.TaskAssignee

		if err := gdb.Where("task_id = ?", task.ID).Find(&assignees).Error; err != nil {
			log.Printf("Failed to load assignees for task %d: %v", task.ID, err)
			continue
		}

		message := fmt.Sprintf("Task %q starts on %s", task.Name, task.StartDate.Format("2006-01-02"))

		for _, assignee := range assignees {
			if err := services.NotifyUser(gdb, assignee.UserID, types.NotifyTaskStartingSoon, message); err != nil {
				log.Printf("Failed to notify user %d about task %d: %v", assignee.UserID, task.ID, err)
			}
		}
	}
}
