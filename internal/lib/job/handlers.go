package job

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

// Mailer sends the welcome email.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// ImageDeleter removes an image from the image host.
type ImageDeleter interface {
	Delete(ctx context.Context, deleteHandle string) error
}

// InitHandlers sets the dependencies the task handlers call into.
// It must run before Start.
func (j *JobService) InitHandlers(mailer Mailer, images ImageDeleter) {
	j.mailer = mailer
	j.images = images
}

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().Str("type", TaskWelcomeEmail).Str("to", p.To).Logger()
	log.Info().Msg("processing welcome email task")

	if err := j.mailer.SendWelcomeEmail(ctx, p.To, p.Name); err != nil {
		log.Error().Err(err).Msg("failed to send welcome email")
		return err
	}

	log.Info().Msg("successfully sent welcome email")
	return nil
}

func (j *JobService) handleImageDeleteTask(ctx context.Context, t *asynq.Task) error {
	var p ImageDeletePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal image delete payload: %w: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().Str("type", TaskImageDelete).Str("file_id", p.FileID).Logger()

	if err := j.images.Delete(ctx, p.DeleteHandle); err != nil {
		log.Warn().Err(err).Msg("failed to delete image from host")
		return err
	}

	log.Info().Msg("deleted replaced image from host")
	return nil
}
