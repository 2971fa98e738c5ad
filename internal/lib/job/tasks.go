package job

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	TaskWelcomeEmail = "email:welcome"
	TaskImageDelete  = "image:delete"
)

// WelcomeEmailPayload is the payload of TaskWelcomeEmail.
type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// ImageDeletePayload is the payload of TaskImageDelete. FileID is only
// used for logging; the image host deletes by handle.
type ImageDeletePayload struct {
	FileID       string `json:"file_id"`
	DeleteHandle string `json:"delete_handle"`
}

// NewWelcomeEmailTask builds a welcome email task on the default queue.
func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{To: to, Name: name})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcomeEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewImageDeleteTask builds a task removing a replaced image from the host.
// Cleanup is not urgent, so it goes to the low queue with more retries.
func NewImageDeleteTask(fileID, deleteHandle string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageDeletePayload{FileID: fileID, DeleteHandle: deleteHandle})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskImageDelete,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue("low"),
		asynq.Timeout(30*time.Second),
	), nil
}
