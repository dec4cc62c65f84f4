package application

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

const reconcileBatch = 100

// AverageCostMaintainer keeps Bootcamp.AverageCost equal to the mean course
// tuition rounded up to the next multiple of ten.
type AverageCostMaintainer struct {
	Bootcamps repo.BootcampRepository
	Courses   repo.CourseRepository
	Stale     StaleSet
	Logger    logrus.FieldLogger
}

func NewAverageCostMaintainer(bootcamps repo.BootcampRepository, courses repo.CourseRepository, stale StaleSet, logger logrus.FieldLogger) *AverageCostMaintainer {
	return &AverageCostMaintainer{Bootcamps: bootcamps, Courses: courses, Stale: stale, Logger: logger}
}

// RoundUpToTen rounds avg up to the next multiple of 10.
func RoundUpToTen(avg float64) float64 {
	return math.Ceil(avg/10) * 10
}

// Recompute writes the bootcamp's average cost. It never fails the caller:
// errors are logged and the id is queued for reconciliation.
func (m *AverageCostMaintainer) Recompute(ctx context.Context, bootcampID string) {
	// The course write has already committed; a client hanging up must not
	// leave the average unrepaired.
	ctx = context.WithoutCancel(ctx)
	if err := m.compute(ctx, bootcampID); err != nil {
		helpers.LogWarn(m.Logger, "average cost recompute failed", err, logrus.Fields{"bootcamp_id": bootcampID})
		m.markStale(ctx, bootcampID)
	}
}

func (m *AverageCostMaintainer) compute(ctx context.Context, bootcampID string) error {
	avg, ok, err := m.Courses.AverageTuition(ctx, bootcampID)
	if err != nil {
		return err
	}
	var cost *float64
	if ok {
		c := RoundUpToTen(avg)
		cost = &c
	}
	return m.Bootcamps.SetAverageCost(ctx, bootcampID, cost)
}

func (m *AverageCostMaintainer) markStale(ctx context.Context, ids ...string) {
	if m.Stale == nil || len(ids) == 0 {
		return
	}
	if err := m.Stale.Add(context.WithoutCancel(ctx), ids...); err != nil {
		helpers.LogError(m.Logger, "mark average cost stale failed", err, logrus.Fields{"bootcamp_ids": ids})
	}
}

// ReconcileStale recomputes every queued bootcamp and returns how many were
// fixed. Ids that still fail are queued again; deleted bootcamps are dropped.
func (m *AverageCostMaintainer) ReconcileStale(ctx context.Context) (int, error) {
	if m.Stale == nil {
		return 0, nil
	}
	var (
		fixed  int
		failed []string
	)
	for {
		ids, err := m.Stale.Pop(ctx, reconcileBatch)
		if err != nil {
			m.markStale(ctx, failed...)
			return fixed, err
		}
		for _, id := range ids {
			err := m.compute(ctx, id)
			switch {
			case err == nil:
				fixed++
			case apperror.Is(err, apperror.KindNotFound):
			default:
				helpers.LogWarn(m.Logger, "average cost reconcile failed", err, logrus.Fields{"bootcamp_id": id})
				failed = append(failed, id)
			}
		}
		if len(ids) < reconcileBatch {
			break
		}
	}
	m.markStale(ctx, failed...)
	return fixed, nil
}

// Run reconciles on every tick until ctx is done.
func (m *AverageCostMaintainer) Run(ctx context.Context, interval time.Duration) {
	if m.Stale == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.ReconcileStale(ctx)
			if err != nil {
				helpers.LogWarn(m.Logger, "stale average cost scan failed", err, nil)
				continue
			}
			if n > 0 {
				helpers.LogInfo(m.Logger, "stale average costs reconciled", logrus.Fields{"count": n})
			}
		}
	}
}
