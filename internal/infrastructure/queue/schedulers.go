package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"repairhub-backend/internal/config"
	"repairhub-backend/internal/shared"
	"repairhub-backend/pkg/logger"
)

// TaskRegistrar is the part of *asynq.Scheduler used to register cron tasks.
type TaskRegistrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

type Scheduler struct {
	scheduler *asynq.Scheduler
	registrar TaskRegistrar
	cfg       config.WorkerConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, cfg config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		registrar: scheduler,
		cfg:       cfg,
	}
}

// RegisterDiscountJobs registers every periodic discount task.
func (s *Scheduler) RegisterDiscountJobs() error {
	return registerDeactivateExpiredJob(s.registrar, s.cfg.DeactivateCron)
}

// ================================================
// Deactivate expired / exhausted discounts
// ================================================
// Pricing never depends on this sweep. It keeps is_active in step with
// the discount window for the back office, so a missed run is harmless.
func registerDeactivateExpiredJob(r TaskRegistrar, cronspec string) error {
	task := asynq.NewTask(shared.TypeDeactivateExpiredDiscounts, nil)

	entryID, err := r.Register(
		cronspec,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
		asynq.Unique(time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register DeactivateExpiredDiscounts job", err)
		return fmt.Errorf("register %s: %w", shared.TypeDeactivateExpiredDiscounts, err)
	}

	logger.Info("Registered DeactivateExpiredDiscounts", map[string]interface{}{
		"cron":     cronspec,
		"entry_id": entryID,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
