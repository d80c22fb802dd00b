package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikasavnish/movein/internal/metrics"
	"github.com/vikasavnish/movein/internal/models"
	"github.com/vikasavnish/movein/internal/testutil"
)

type fakeCounter struct{ n int }

func (f fakeCounter) Count() int { return f.n }

type countingTask struct {
	starts, stops int32
}

func (c *countingTask) Name() string { return "counting" }
func (c *countingTask) Start()       { atomic.AddInt32(&c.starts, 1) }
func (c *countingTask) Stop()        { atomic.AddInt32(&c.stops, 1) }

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	a, b := &countingTask{}, &countingTask{}
	m.RegisterTask(a)
	m.RegisterTask(b)

	m.StartAll()
	m.StopAll()

	for _, task := range []*countingTask{a, b} {
		assert.Equal(t, int32(1), atomic.LoadInt32(&task.starts))
		assert.Equal(t, int32(1), atomic.LoadInt32(&task.stops))
	}
}

func TestStatsCollect(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&models.User{Username: "stats", Email: "stats@example.com", HashedPassword: "x"}).Error)
	state := models.State{Name: "Arizona"}
	require.NoError(t, db.Create(&state).Error)

	task := NewStatsTask(db, fakeCounter{n: 3}, time.Hour)
	task.Collect(context.Background())

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.TableRows.WithLabelValues("users")))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.TableRows.WithLabelValues("states")))
	assert.Equal(t, 0.0, promtest.ToFloat64(metrics.TableRows.WithLabelValues("favorites")))
	assert.Equal(t, 3.0, promtest.ToFloat64(metrics.WebSocketConnectionsGauge))
}

func TestStatsStartStop(t *testing.T) {
	db := testutil.NewDB(t)
	task := NewStatsTask(db, fakeCounter{n: 7}, time.Hour)

	task.Start()
	task.Start()
	task.Stop()
	task.Stop()

	// The first collection runs before the ticker fires.
	assert.Equal(t, 7.0, promtest.ToFloat64(metrics.WebSocketConnectionsGauge))
}
