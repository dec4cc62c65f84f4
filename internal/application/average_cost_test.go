package application

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

func TestRoundUpToTen(t *testing.T) {
	tests := map[float64]float64{
		1500:    1500,
		1501:    1510,
		1509.99: 1510,
		0:       0,
		7:       10,
	}
	for in, want := range tests {
		assert.Equal(t, want, RoundUpToTen(in), "%v", in)
	}
}

func TestAverageCostMaintainer_RecomputeLogsAndMarksStale(t *testing.T) {
	logger, hook := newTestLogger()
	bootcamps := newFakeBootcamps(&entity.Bootcamp{ID: "b1"})
	bootcamps.setCost = errBoom
	stale := newFakeStale()
	m := NewAverageCostMaintainer(bootcamps, newFakeCourses(), stale, logger)

	m.Recompute(context.Background(), "b1")

	assert.True(t, stale.has("b1"))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "b1", entry.Data["bootcamp_id"])
}

func TestAverageCostMaintainer_RecomputeOutlivesCancelledRequest(t *testing.T) {
	logger, _ := newTestLogger()
	bootcamps := newFakeBootcamps(&entity.Bootcamp{ID: "b1"})
	courses := newFakeCourses()
	require.NoError(t, courses.Create(context.Background(), &entity.Course{BootcampID: "b1", Tuition: 1501}))
	m := NewAverageCostMaintainer(bootcamps, courses, newFakeStale(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Recompute(ctx, "b1")

	require.NotNil(t, bootcamps.byID["b1"].AverageCost)
	assert.Equal(t, 1510.0, *bootcamps.byID["b1"].AverageCost)
}

func TestAverageCostMaintainer_CancelledFailureStillMarksStale(t *testing.T) {
	logger, _ := newTestLogger()
	bootcamps := newFakeBootcamps(&entity.Bootcamp{ID: "b1"})
	bootcamps.setCost = errBoom
	stale := newFakeStale()
	m := NewAverageCostMaintainer(bootcamps, newFakeCourses(), stale, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Recompute(ctx, "b1")

	assert.True(t, stale.has("b1"))
}

func TestAverageCostMaintainer_ReconcileStale(t *testing.T) {
	logger, _ := newTestLogger()
	bootcamps := newFakeBootcamps(&entity.Bootcamp{ID: "b1"}, &entity.Bootcamp{ID: "b2"})
	courses := newFakeCourses()
	require.NoError(t, courses.Create(context.Background(), &entity.Course{BootcampID: "b1", Tuition: 995}))
	stale := newFakeStale("b1", "b2", "deleted")
	m := NewAverageCostMaintainer(bootcamps, courses, stale, logger)

	n, err := m.ReconcileStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1000.0, *bootcamps.byID["b1"].AverageCost)
	assert.Nil(t, bootcamps.byID["b2"].AverageCost)
	assert.False(t, stale.has("deleted"))
}

func TestAverageCostMaintainer_ReconcileRequeuesFailures(t *testing.T) {
	logger, _ := newTestLogger()
	bootcamps := newFakeBootcamps(&entity.Bootcamp{ID: "b1"})
	bootcamps.setCost = errBoom
	stale := newFakeStale("b1")
	m := NewAverageCostMaintainer(bootcamps, newFakeCourses(), stale, logger)

	n, err := m.ReconcileStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, stale.has("b1"))

	stale.pop = errBoom
	_, err = m.ReconcileStale(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestAverageCostMaintainer_RunStopsWithContext(t *testing.T) {
	logger, _ := newTestLogger()
	bootcamps := newFakeBootcamps(&entity.Bootcamp{ID: "b1"})
	stale := newFakeStale("b1")
	m := NewAverageCostMaintainer(bootcamps, newFakeCourses(), stale, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return !stale.has("b1") }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
