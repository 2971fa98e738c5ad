package job

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to, name string
	err      error
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, to, name string) error {
	m.to, m.name = to, name
	return m.err
}

type fakeDeleter struct {
	handles []string
	err     error
}

func (d *fakeDeleter) Delete(_ context.Context, handle string) error {
	d.handles = append(d.handles, handle)
	return d.err
}

func newTestService(m Mailer, d ImageDeleter) *JobService {
	logger := zerolog.Nop()
	j := &JobService{logger: &logger}
	j.InitHandlers(m, d)
	return j
}

func TestNewTasks(t *testing.T) {
	task, err := NewWelcomeEmailTask("a@b.io", "Alice")
	require.NoError(t, err)
	assert.Equal(t, TaskWelcomeEmail, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, WelcomeEmailPayload{To: "a@b.io", Name: "Alice"}, p)

	task, err = NewImageDeleteTask("abc", "del-abc")
	require.NoError(t, err)
	assert.Equal(t, TaskImageDelete, task.Type())
}

func TestWelcomeEmailHandler(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestService(mailer, &fakeDeleter{})

	task, err := NewWelcomeEmailTask("a@b.io", "Alice")
	require.NoError(t, err)

	require.NoError(t, j.mux().ProcessTask(context.Background(), task))
	assert.Equal(t, "a@b.io", mailer.to)
	assert.Equal(t, "Alice", mailer.name)

	mailer.err = errors.New("provider down")
	assert.Error(t, j.mux().ProcessTask(context.Background(), task))
}

func TestImageDeleteHandler(t *testing.T) {
	deleter := &fakeDeleter{}
	j := newTestService(&fakeMailer{}, deleter)

	task, err := NewImageDeleteTask("abc", "del-abc")
	require.NoError(t, err)

	require.NoError(t, j.mux().ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"del-abc"}, deleter.handles)
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	j := newTestService(&fakeMailer{}, &fakeDeleter{})

	err := j.mux().ProcessTask(context.Background(), asynq.NewTask(TaskWelcomeEmail, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestStartRequiresHandlers(t *testing.T) {
	logger := zerolog.Nop()
	j := &JobService{logger: &logger}
	assert.Error(t, j.Start())
}
