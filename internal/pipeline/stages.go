package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/validation"
)

// CORS wraps echo's CORS middleware as a stage. When the middleware answers a
// preflight itself (it never calls next), the request is marked answered.
func CORS(config middleware.CORSConfig) Stage {
	mw := middleware.CORSWithConfig(config)

	return Stage{
		Name: StageCORS,
		Run: func(c echo.Context, r *Request) error {
			passed := false
			err := mw(func(echo.Context) error {
				passed = true
				return nil
			})(c)
			if err != nil {
				return err
			}
			if !passed {
				r.MarkAnswered()
			}
			return nil
		},
	}
}

// ValidateRequest extracts params, query and body, validates them against the
// route schema and binds the payload through the endpoint.
func ValidateRequest() Stage {
	return Stage{
		Name: StageValidate,
		Run: func(c echo.Context, r *Request) error {
			if r.Route.Schema.IsEmpty() {
				r.Payload = map[string]any{}
			} else {
				input, err := extractInput(c, r.Route.Schema)
				if err != nil {
					return err
				}

				result := r.Route.Schema.Validate(input)
				if !result.Valid() {
					return errs.NewValidationFailedError(result.Errors)
				}
				r.Payload = result.Payload
			}

			if r.Route.Endpoint == nil {
				return nil
			}

			bound, err := r.Route.Endpoint.Bind(result.Payload)
			if err != nil {
				return err
			}
			r.Bound = bound
			return nil
		},
	}
}

// HandleRequest runs the endpoint's business logic.
func HandleRequest() Stage {
	return Stage{
		Name: StageHandle,
		Run: func(c echo.Context, r *Request) error {
			if r.Route.Endpoint == nil {
				return errs.NewInternalError(fmt.Errorf("route %s has no endpoint", r.Route.Name))
			}

			value, err := r.Route.Endpoint.Serve(c, r.Bound)
			if err != nil {
				return err
			}
			r.Value = value
			return nil
		},
	}
}

// extractInput gathers params, query and body. A body over the size limit is
// reported as such; any other unreadable body is a malformed-body failure.
func extractInput(c echo.Context, schema validation.Schema) (validation.Input, error) {
	input := validation.Input{
		Params: make(map[string]any),
		Query:  make(map[string]any),
	}

	names := c.ParamNames()
	values := c.ParamValues()
	for i, name := range names {
		if i < len(values) {
			input.Params[name] = values[i]
		}
	}

	for key, vals := range c.QueryParams() {
		input.Query[key] = flatten(vals)
	}

	if schema.Body == nil {
		return input, nil
	}

	body, err := readBody(c)
	if err != nil {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) && echoErr.Code == http.StatusRequestEntityTooLarge {
			return input, errs.NewPayloadTooLargeError()
		}
		return input, errs.NewValidationFailedError([]errs.FieldError{validation.MalformedBody()})
	}
	input.Body = body

	return input, nil
}

func flatten(vals []string) any {
	if len(vals) == 1 {
		return vals[0]
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func readBody(c echo.Context) (map[string]any, error) {
	req := c.Request()
	if req.Body == nil || req.Body == http.NoBody {
		return map[string]any{}, nil
	}

	contentType := req.Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return readMultipart(c)
	}
	if strings.HasPrefix(contentType, echo.MIMEApplicationForm) {
		form, err := c.FormParams()
		if err != nil {
			return nil, err
		}
		body := make(map[string]any, len(form))
		for key, vals := range form {
			body[key] = flatten(vals)
		}
		return body, nil
	}

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}, nil
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return body, nil
}

// readMultipart flattens form values and turns every uploaded file into a
// base64 string under its field name.
func readMultipart(c echo.Context) (map[string]any, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	body := make(map[string]any, len(form.Value)+len(form.File))
	for key, vals := range form.Value {
		body[key] = flatten(vals)
	}

	for key, files := range form.File {
		if len(files) == 0 {
			continue
		}
		encoded, err := encodeFile(files[0])
		if err != nil {
			return nil, err
		}
		body[key] = encoded
	}

	return body, nil
}

func encodeFile(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
