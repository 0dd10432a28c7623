package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	c "rovify-backend/context"
	"rovify-backend/logger"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const jobTimeout = 2 * time.Minute

// Job is a periodic maintenance task. It returns the number of rows it changed.
type Job struct {
	Name string
	Run  func(ctx context.Context, db *sql.DB) (int64, error)
}

// Jobs lists the maintenance tasks registered by Start.
func Jobs() []Job {
	return []Job{
		{Name: "complete_past_events", Run: CompletePastEvents},
		{Name: "reconcile_connection_counters", Run: ReconcileConnectionCounters},
	}
}

type Manager struct {
	scheduler gocron.Scheduler
	db        *sql.DB
}

func NewManager(db *sql.DB) (*Manager, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("newManager: unable to create scheduler: %w", err)
	}
	return &Manager{scheduler: s, db: db}, nil
}

// Start registers every job to run each interval and starts the scheduler.
func (m *Manager) Start(ctx context.Context, interval time.Duration) error {
	for _, job := range Jobs() {
		job := job
		_, err := m.scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() { m.run(job) }),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("start: unable to register %s: %w", job.Name, err)
		}
	}
	m.scheduler.Start()
	logger.Infof(ctx, "start: scheduler running %d jobs every %s", len(Jobs()), interval)
	return nil
}

func (m *Manager) Stop(ctx context.Context) {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Errorf(ctx, "stop: unable to shut down scheduler: %+v", err)
	}
}

func (m *Manager) run(job Job) {
	ctx, cancel := context.WithTimeout(c.NewContext("scheduler."+job.Name), jobTimeout)
	defer cancel()

	defer logger.LogExecutionTime(ctx, time.Now(), job.Name)
	n, err := job.Run(ctx, m.db)
	if err != nil {
		logger.Errorf(ctx, "%s: %+v", job.Name, err)
		return
	}
	if n > 0 {
		logger.Infof(ctx, "%s: updated %d rows", job.Name, n)
	}
}

// CompletePastEvents marks published events whose end (or start, when no end is set) has passed
// as completed.
func CompletePastEvents(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE events SET status = 'completed', updated_at = now()
		WHERE status = 'published' AND COALESCE(end_date, date) < now()`)
	if err != nil {
		return 0, fmt.Errorf("completePastEvents: %w", err)
	}
	return result.RowsAffected()
}

// ReconcileConnectionCounters resets follower and following counters that drifted from the number
// of accepted connections.
func ReconcileConnectionCounters(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `
		WITH counts AS (
			SELECT u.id,
				(SELECT COUNT(*) FROM user_connections c WHERE c.addressee_id = u.id AND c.status = 'accepted') AS followers,
				(SELECT COUNT(*) FROM user_connections c WHERE c.requester_id = u.id AND c.status = 'accepted') AS following
			FROM users u
		)
		UPDATE users u SET followers_count = counts.followers, following_count = counts.following
		FROM counts
		WHERE u.id = counts.id AND (u.followers_count <> counts.followers OR u.following_count <> counts.following)`)
	if err != nil {
		return 0, fmt.Errorf("reconcileConnectionCounters: %w", err)
	}
	return result.RowsAffected()
}
