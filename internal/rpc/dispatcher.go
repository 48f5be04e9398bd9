package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nitinmogalapalli/stackify/internal/metrics"
	apperrors "github.com/nitinmogalapalli/stackify/internal/platform/errors"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the procedure call envelope: {status:"ok", data} on success,
// {status:"error", kind, message} on failure (plus field detail for
// validation errors).
type Result struct {
	Status  string            `json:"status"`
	Data    any               `json:"data,omitempty"`
	Kind    apperrors.Kind    `json:"kind,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func okResult(data any) Result {
	return Result{Status: StatusOK, Data: data}
}

// HTTPStatus maps the result onto an HTTP status code: 200 for success,
// the error kind's status otherwise.
func (r Result) HTTPStatus() int {
	if r.Status == StatusOK {
		return http.StatusOK
	}
	return apperrors.StatusForKind(r.Kind)
}

func errorResult(err *apperrors.Error) Result {
	return Result{
		Status:  StatusError,
		Kind:    err.Kind,
		Message: err.ClientMessage(),
		Fields:  err.Fields,
	}
}

// Dispatcher resolves inbound calls against the registry and runs them.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Registered reports whether path names a known procedure.
func (d *Dispatcher) Registered(path string) bool {
	_, ok := d.registry.Lookup(path)
	return ok
}

// IsQuery reports whether path names a registered side-effect-free
// procedure. Only queries may be called over GET.
func (d *Dispatcher) IsQuery(path string) bool {
	proc, ok := d.registry.Lookup(path)
	return ok && proc.Query
}

// Dispatch resolves path, validates rawInput against the procedure's input
// schema, enforces the authorization flag, and invokes the body. Every
// failure mode is converted to a structured error result here; nothing
// escapes as a transport-level failure except a broken response writer.
func (d *Dispatcher) Dispatch(ctx context.Context, path string, rawInput json.RawMessage, rc *Context) Result {
	start := time.Now()
	result := d.dispatch(ctx, path, rawInput, rc)
	metrics.ProcedureCallsTotal.WithLabelValues(path, result.Status).Inc()
	metrics.ProcedureDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, path string, rawInput json.RawMessage, rc *Context) Result {
	proc, ok := d.registry.Lookup(path)
	if !ok {
		return errorResult(apperrors.NotFoundError(fmt.Sprintf("no procedure on path %q", path)))
	}

	// Authorization runs before the body and before input decoding: an
	// anonymous caller of a protected procedure causes no side effects.
	if proc.RequiresAuth && !rc.Identity.Authenticated() {
		return errorResult(apperrors.UnauthorizedError("authentication required"))
	}

	input, verr := d.decodeInput(proc, rawInput)
	if verr != nil {
		return errorResult(verr)
	}

	data, err := d.invoke(ctx, proc, rc, input)
	if err != nil {
		structured := apperrors.AsStructuredError(err)
		if structured.Kind == apperrors.KindInternal || structured.Kind == apperrors.KindUnavailable {
			slog.ErrorContext(ctx, "Procedure failed",
				"path", path,
				"kind", structured.Kind,
				"error", structured.Error(),
			)
		}
		return errorResult(structured)
	}

	return okResult(data)
}

// decodeInput unmarshals and validates the raw input against the
// procedure's declared schema. The procedure body may assume well-typed
// input afterwards.
func (d *Dispatcher) decodeInput(proc Procedure, rawInput json.RawMessage) (any, *apperrors.Error) {
	if proc.newInput == nil {
		return nil, nil
	}

	input := proc.newInput()
	if len(rawInput) > 0 {
		if err := json.Unmarshal(rawInput, input); err != nil {
			return nil, apperrors.ValidationError("malformed input")
		}
	}

	if err := d.registry.validate.Struct(input); err != nil {
		verr := apperrors.ValidationError("invalid input")
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				verr.WithField(fe.Field(), fieldDetail(fe))
			}
		}
		return nil, verr
	}

	return input, nil
}

// invoke runs the procedure body, converting panics into internal errors at
// the dispatch boundary.
func (d *Dispatcher) invoke(ctx context.Context, proc Procedure, rc *Context, input any) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.InternalError("procedure panicked", fmt.Errorf("panic in %s: %v", proc.Path, r))
		}
	}()
	return proc.handler(ctx, rc, input)
}

func fieldDetail(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}
