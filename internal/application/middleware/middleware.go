// Package middleware wraps use-case Execute methods with cross-cutting
// behaviour: request validation, structured logging and tracing.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/underwriting/internal/domain/model"
)

const tracerName = "github.com/bibbank/underwriting/internal/application"

// Handler is the shape of every use case's Execute method.
type Handler[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Middleware decorates a Handler.
type Middleware[Req, Resp any] func(next Handler[Req, Resp]) Handler[Req, Resp]

// Chain applies mws so that the first one is outermost.
func Chain[Req, Resp any](h Handler[Req, Resp], mws ...Middleware[Req, Resp]) Handler[Req, Resp] {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Standard wraps h with tracing, logging and validation, in that order.
func Standard[Req, Resp any](name string, h Handler[Req, Resp], v *validator.Validate, logger *slog.Logger) Handler[Req, Resp] {
	return Chain(h,
		Tracing[Req, Resp](name),
		Logging[Req, Resp](name, logger),
		Validate[Req, Resp](v),
	)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate rejects requests that fail their `validate` struct tags with a
// validation DomainError, before the handler runs.
func Validate[Req, Resp any](v *validator.Validate) Middleware[Req, Resp] {
	return func(next Handler[Req, Resp]) Handler[Req, Resp] {
		return func(ctx context.Context, req Req) (Resp, error) {
			if err := v.StructCtx(ctx, req); err != nil {
				var zero Resp
				return zero, validationError(err)
			}
			return next(ctx, req)
		}
	}
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.ErrInvalidRequest.WithDescription("invalid request: %v", err)
	}
	fe := fieldErrs[0]
	if fe.Param() != "" {
		return model.ErrInvalidRequest.WithDescription("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
	}
	return model.ErrInvalidRequest.WithDescription("%s failed %s", fe.Namespace(), fe.Tag())
}

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

// Logging records the outcome and duration of every call. Business failures
// log at warn, anything else at error.
func Logging[Req, Resp any](name string, logger *slog.Logger) Middleware[Req, Resp] {
	return func(next Handler[Req, Resp]) Handler[Req, Resp] {
		return func(ctx context.Context, req Req) (Resp, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			attrs := []any{"use_case", name, "duration_ms", time.Since(start).Milliseconds()}

			var domainErr *model.DomainError
			switch {
			case err == nil:
				logger.DebugContext(ctx, "use case completed", attrs...)
			case errors.As(err, &domainErr):
				logger.WarnContext(ctx, "use case rejected", append(attrs, "code", domainErr.Code, "error", err)...)
			default:
				logger.ErrorContext(ctx, "use case failed", append(attrs, "error", err)...)
			}
			return resp, err
		}
	}
}

// ---------------------------------------------------------------------------
// Tracing
// ---------------------------------------------------------------------------

// Tracing opens a span named after the use case.
func Tracing[Req, Resp any](name string) Middleware[Req, Resp] {
	tracer := otel.Tracer(tracerName)
	return func(next Handler[Req, Resp]) Handler[Req, Resp] {
		return func(ctx context.Context, req Req) (Resp, error) {
			ctx, span := tracer.Start(ctx, fmt.Sprintf("usecase.%s", name),
				trace.WithAttributes(attribute.String("use_case", name)))
			defer span.End()

			resp, err := next(ctx, req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return resp, err
		}
	}
}
