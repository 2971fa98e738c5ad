// Package pipeline dispatches API routes through an explicit, ordered list of
// named stages and sends exactly one envelope per request.
//
// A request moves through these states:
//
//	received -> cors_checked -> auth_checked -> validated -> handled -> enveloped -> sent
//
// A failing stage jumps straight to enveloped with its error. Panics inside a
// stage are recovered and reported as internal errors, so every path (success,
// validation failure, auth failure, handler error, panic) ends in one envelope.
package pipeline

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/profile-api/internal/envelope"
	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/metrics"
	"github.com/deppfellow/profile-api/internal/validation"
)

// StageName identifies a stage. Only the names below are accepted.
type StageName string

const (
	StageCORS     StageName = "cors"
	StageAuth     StageName = "auth"
	StageValidate StageName = "validate"
	StageHandle   StageName = "handle"
)

// State is where a request currently is in the pipeline.
type State string

const (
	StateReceived    State = "received"
	StateCORSChecked State = "cors_checked"
	StateAuthChecked State = "auth_checked"
	StateValidated   State = "validated"
	StateHandled     State = "handled"
	StateEnveloped   State = "enveloped"
	StateSent        State = "sent"
)

var stageOrder = map[StageName]int{
	StageCORS:     0,
	StageAuth:     1,
	StageValidate: 2,
	StageHandle:   3,
}

var stageState = map[StageName]State{
	StageCORS:     StateCORSChecked,
	StageAuth:     StateAuthChecked,
	StageValidate: StateValidated,
	StageHandle:   StateHandled,
}

// StageFunc runs one stage. A non-nil error ends the pipeline.
type StageFunc func(c echo.Context, r *Request) error

// Stage is a named step of the pipeline.
type Stage struct {
	Name StageName
	Run  StageFunc
}

// Endpoint is the route-specific part of the pipeline.
type Endpoint interface {
	// Bind turns the validated payload into the handler's request value.
	Bind(payload map[string]any) (any, error)

	// Serve runs the business logic with the bound request.
	Serve(c echo.Context, request any) (any, error)
}

// Route is an immutable route descriptor.
type Route struct {
	// Name labels logs and metrics ("auth.login").
	Name   string
	Method string
	Path   string

	// Public routes skip the auth stage.
	Public bool

	Schema         validation.Schema
	SuccessMessage string

	// SuccessStatus defaults to 200.
	SuccessStatus int

	Endpoint Endpoint
}

// Request carries one request through the stages.
type Request struct {
	Route   *Route
	State   State
	Payload map[string]any
	Bound   any
	Value   any
	Err     error

	// answered is set when a stage already wrote the full response
	// (CORS preflight).
	answered bool
	sent     bool
}

// MarkAnswered tells the dispatcher a stage has written the response itself.
func (r *Request) MarkAnswered() {
	r.answered = true
}

// Options configure a Dispatcher.
type Options struct {
	// Translator localizes validation messages. Defaults to the shared one.
	Translator *validation.Translator
}

// Dispatcher runs routes through its stages.
type Dispatcher struct {
	stages     []Stage
	translator *validation.Translator
}

// New checks that stages are known, unique, non-nil and in pipeline order,
// and that a handle stage is present.
func New(opts Options, stages ...Stage) (*Dispatcher, error) {
	seen := make(map[StageName]bool, len(stages))
	last := -1

	for _, stage := range stages {
		pos, ok := stageOrder[stage.Name]
		if !ok {
			return nil, fmt.Errorf("unknown pipeline stage %q", stage.Name)
		}
		if seen[stage.Name] {
			return nil, fmt.Errorf("duplicate pipeline stage %q", stage.Name)
		}
		if pos < last {
			return nil, fmt.Errorf("pipeline stage %q is out of order", stage.Name)
		}
		if stage.Run == nil {
			return nil, fmt.Errorf("pipeline stage %q has no run function", stage.Name)
		}
		seen[stage.Name] = true
		last = pos
	}

	if !seen[StageHandle] {
		return nil, fmt.Errorf("pipeline requires a %q stage", StageHandle)
	}

	translator := opts.Translator
	if translator == nil {
		translator = validation.DefaultTranslator()
	}

	return &Dispatcher{
		stages:     append([]Stage(nil), stages...),
		translator: translator,
	}, nil
}

// Register mounts routes on g. An OPTIONS handler is added once per path so
// preflight requests are answered by the CORS stage.
func (d *Dispatcher) Register(g *echo.Group, routes ...*Route) {
	preflight := make(map[string]bool)

	for _, route := range routes {
		g.Add(route.Method, route.Path, d.Serve(route))

		if !preflight[route.Path] {
			preflight[route.Path] = true
			g.OPTIONS(route.Path, d.preflight())
		}
	}
}

// Serve returns the echo handler that runs route through every stage.
func (d *Dispatcher) Serve(route *Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := &Request{Route: route, State: StateReceived}
		start := time.Now()

		txn := newrelic.FromContext(c.Request().Context())
		if txn != nil {
			txn.AddAttribute("handler.name", route.Name)
		}

		logger := zerolog.Ctx(c.Request().Context()).With().
			Str("operation", "pipeline").
			Str("route", route.Name).
			Logger()

		logger.Debug().Msg("handling request")

		for _, stage := range d.stages {
			if stage.Name == StageAuth && route.Public {
				r.State = StateAuthChecked
				continue
			}

			stageStart := time.Now()
			err := d.runStage(c, stage, r, &logger)
			stageDuration := time.Since(stageStart)

			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			metrics.RecordStage(route.Name, string(stage.Name), outcome, stageDuration)
			if txn != nil {
				txn.AddAttribute(string(stage.Name)+".duration_ms", stageDuration.Milliseconds())
				txn.AddAttribute(string(stage.Name)+".status", outcome)
			}

			if err != nil {
				r.Err = err
				logger.Debug().
					Err(err).
					Str("stage", string(stage.Name)).
					Dur("stage_duration", stageDuration).
					Msg("pipeline stage failed")
				break
			}

			if r.answered {
				r.sent = true
				r.State = StateSent
				return nil
			}

			r.State = stageState[stage.Name]
		}

		err := d.send(c, r, &logger)

		logger.Info().
			Int("status", c.Response().Status).
			Str("state", string(r.State)).
			Dur("total_duration", time.Since(start)).
			Msg("request completed")

		return err
	}
}

func (d *Dispatcher) runStage(c echo.Context, stage Stage, r *Request, logger *zerolog.Logger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().
				Str("stage", string(stage.Name)).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("recovered panic in pipeline stage")
			err = errs.NewInternalError(fmt.Errorf("panic in %s stage: %v", stage.Name, rec))
		}
	}()

	return stage.Run(c, r)
}

// send builds the envelope and writes it once. A response already committed
// by someone else is left alone.
func (d *Dispatcher) send(c echo.Context, r *Request, logger *zerolog.Logger) error {
	if r.sent || c.Response().Committed {
		r.sent = true
		return nil
	}

	outcome := envelope.Ok(r.Value)
	if r.Err != nil {
		locale := d.translator.Locale(c.Request().Header.Get("Accept-Language"))
		outcome = envelope.Fail(d.translator.LocalizeError(locale, r.Err))
		d.observeFailure(c, r, logger)
	}

	env, status := envelope.Build(outcome, r.Route.SuccessMessage, r.Route.SuccessStatus)
	r.State = StateEnveloped

	r.sent = true
	metrics.RecordResponse(r.Route.Name, status)
	err := c.JSON(status, env)
	r.State = StateSent
	return err
}

func (d *Dispatcher) observeFailure(c echo.Context, r *Request, logger *zerolog.Logger) {
	httpErr := errs.From(r.Err)

	for _, fe := range httpErr.Errors {
		metrics.RecordValidationFailure(r.Route.Name, fe.Reason)
	}

	event := logger.Warn()
	switch httpErr.Kind {
	case errs.KindInternal, errs.KindUpstreamFailure:
		event = logger.Error().Stack()
		if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(r.Err))
		}
	case errs.KindValidationFailed, errs.KindNotFound:
		event = logger.Info()
	}

	event.
		Err(r.Err).
		AnErr("cause", httpErr.Cause()).
		Str("kind", string(httpErr.Kind)).
		Str("collaborator", httpErr.Collaborator).
		Msg("request failed")
}

// preflight answers OPTIONS requests using only the CORS stage.
func (d *Dispatcher) preflight() echo.HandlerFunc {
	return func(c echo.Context) error {
		r := &Request{State: StateReceived}
		for _, stage := range d.stages {
			if stage.Name != StageCORS {
				continue
			}
			if err := stage.Run(c, r); err != nil {
				return err
			}
		}
		if r.answered || c.Response().Committed {
			return nil
		}
		return c.NoContent(http.StatusNoContent)
	}
}
