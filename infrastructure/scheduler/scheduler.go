package scheduler

import (
	"context"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
)

// ISyncLauncher enqueues a sync for one connection. Implemented by the
// sync usecase so scheduled runs share the manual-trigger path.
type ISyncLauncher interface {
	EnqueueSync(ctx context.Context, connection *model.PlatformConnection) (int64, error)
}

// Scheduler owns one recurring cron job per active connection. A
// connection may override the default cadence through its
// "sync_cron" metadata entry.
type Scheduler struct {
	sched       gocron.Scheduler
	launcher    ISyncLauncher
	connections repository.IConnection
	defaultCron string

	mu   sync.Mutex
	jobs map[int64]uuid.UUID
}

func NewScheduler(launcher ISyncLauncher, connections repository.IConnection, defaultCron string) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		sched:       sched,
		launcher:    launcher,
		connections: connections,
		defaultCron: defaultCron,
		jobs:        make(map[int64]uuid.UUID),
	}, nil
}

// Bootstrap registers every active connection, then starts the
// scheduler loop.
func (s *Scheduler) Bootstrap(ctx context.Context) error {
	connections, err := s.connections.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, conn := range connections {
		if err := s.RegisterConnection(conn); err != nil {
			logger.GetLogger().
				WithField("connectionId", conn.ID).
				WithField("error", err).
				Error("Error while registering scheduled sync")
		}
	}
	s.sched.Start()
	logger.GetLogger().WithField("connections", len(connections)).Info("Sync scheduler started")
	return nil
}

func (s *Scheduler) RegisterConnection(connection *model.PlatformConnection) error {
	cronExpr := s.defaultCron
	if override, ok := connection.Metadata["sync_cron"]; ok && override != "" {
		cronExpr = override
	}

	connID := connection.ID
	conn := *connection
	job, err := s.sched.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx := context.Background()
			if _, err := s.launcher.EnqueueSync(ctx, &conn); err != nil {
				logger.GetLogger().
					WithField("connectionId", connID).
					WithField("platform", conn.Platform).
					WithField("error", err).
					Error("Error while enqueueing scheduled sync")
			}
		}),
	)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.jobs[connID]; ok {
		_ = s.sched.RemoveJob(old)
	}
	s.jobs[connID] = job.ID()
	return nil
}

// CancelConnection drops the recurring job for a connection, typically
// after a disconnect or credential auto-deactivation.
func (s *Scheduler) CancelConnection(connectionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.jobs[connectionID]; ok {
		_ = s.sched.RemoveJob(id)
		delete(s.jobs, connectionID)
	}
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
