// Package job provides background job processing using Asynq.
//
// Handlers send welcome mail and delete replaced profile pictures from
// the image host, both off the request path.
package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/profile-api/internal/config"
)

// JobService holds the Asynq client (enqueue) and server (workers).
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	logger *zerolog.Logger

	mailer Mailer
	images ImageDeleter
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger:   &asynqLogger{log: logger},
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, j.handleWelcomeEmailTask)
	mux.HandleFunc(TaskImageDelete, j.handleImageDeleteTask)
	return mux
}

// Start launches the workers. It does not block.
func (j *JobService) Start() error {
	if j.mailer == nil || j.images == nil {
		return fmt.Errorf("job handlers not initialized")
	}

	j.logger.Info().Msg("starting background job server")

	return j.server.Start(j.mux())
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	j.Client.Close()
}

// EnqueueWelcomeEmail schedules the welcome email for a new user.
func (j *JobService) EnqueueWelcomeEmail(ctx context.Context, to, name string) error {
	task, err := NewWelcomeEmailTask(to, name)
	if err != nil {
		return err
	}
	return j.enqueue(ctx, task)
}

// EnqueueImageDelete schedules removal of an image from the host.
func (j *JobService) EnqueueImageDelete(ctx context.Context, fileID, deleteHandle string) error {
	task, err := NewImageDeleteTask(fileID, deleteHandle)
	if err != nil {
		return err
	}
	return j.enqueue(ctx, task)
}

func (j *JobService) enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}

	j.logger.Debug().
		Str("type", task.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")

	return nil
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	log *zerolog.Logger
}

func (l *asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
