// Package tasks runs periodic background jobs next to the HTTP server.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vikasavnish/movein/internal/metrics"
	"github.com/vikasavnish/movein/internal/models"
)

// Task is a background job with an explicit lifecycle.
type Task interface {
	Name() string
	Start()
	Stop()
}

// Manager handles the execution of scheduled tasks
type Manager struct {
	mu    sync.Mutex
	tasks []Task
}

func NewManager() *Manager {
	return &Manager{tasks: make([]Task, 0)}
}

// RegisterTask registers a task with the manager
func (m *Manager) RegisterTask(task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
}

// StartAll starts every registered task.
func (m *Manager) StartAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.tasks {
		task.Start()
		log.Info().Str("task", task.Name()).Msg("task started")
	}
}

// StopAll stops every registered task.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.tasks {
		task.Stop()
		log.Info().Str("task", task.Name()).Msg("task stopped")
	}
}

// ConnectionCounter reports the number of open feed connections.
type ConnectionCounter interface {
	Count() int
}

// StatsTask periodically publishes table sizes and feed connections as
// Prometheus gauges.
type StatsTask struct {
	db       *gorm.DB
	hub      ConnectionCounter
	interval time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

func NewStatsTask(db *gorm.DB, hub ConnectionCounter, interval time.Duration) *StatsTask {
	return &StatsTask{db: db, hub: hub, interval: interval}
}

func (t *StatsTask) Name() string { return "stats" }

// Start begins collection; it runs once immediately and then every interval.
// Calling Start on a running task does nothing.
func (t *StatsTask) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopChan != nil {
		return
	}
	t.stopChan = make(chan struct{})
	t.done = make(chan struct{})

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		t.Collect(context.Background())
		for {
			select {
			case <-ticker.C:
				t.Collect(context.Background())
			case <-stop:
				return
			}
		}
	}(t.stopChan, t.done)
}

// Stop terminates the task and waits for the running collection to finish.
func (t *StatsTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopChan == nil {
		return
	}
	close(t.stopChan)
	<-t.done
	t.stopChan = nil
}

// Collect takes one snapshot.
func (t *StatsTask) Collect(ctx context.Context) {
	tables := map[string]interface{}{
		"users":     &models.User{},
		"states":    &models.State{},
		"cities":    &models.City{},
		"locations": &models.Location{},
		"favorites": &models.Favorite{},
	}
	for table, model := range tables {
		var n int64
		if err := t.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			log.Warn().Err(err).Str("table", table).Msg("failed to count rows")
			continue
		}
		metrics.SetTableRows(table, n)
	}
	if t.hub != nil {
		metrics.SetWebSocketConnections(t.hub.Count())
	}
}
