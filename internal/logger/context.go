package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// fields are the per-request attributes every Ctx* call attaches.
type fields struct {
	requestID string
	uid       string
	step      string
}

func fieldsFrom(ctx context.Context) fields {
	if ctx == nil {
		return fields{}
	}
	f, _ := ctx.Value(ctxKey{}).(fields)
	return f
}

func withFields(ctx context.Context, mutate func(*fields)) context.Context {
	f := fieldsFrom(ctx)
	mutate(&f)
	return context.WithValue(ctx, ctxKey{}, f)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withFields(ctx, func(f *fields) { f.requestID = requestID })
}

func WithUserID(ctx context.Context, uid string) context.Context {
	return withFields(ctx, func(f *fields) { f.uid = uid })
}

// WithStep tags log lines emitted while a wizard step is handling a request.
func WithStep(ctx context.Context, step string) context.Context {
	return withFields(ctx, func(f *fields) { f.step = step })
}

func GetRequestID(ctx context.Context) string { return fieldsFrom(ctx).requestID }

func GetUserID(ctx context.Context) string { return fieldsFrom(ctx).uid }

// FromContext returns the global logger with request_id, uid and step
// attached when they are set.
func FromContext(ctx context.Context) *slog.Logger {
	f := fieldsFrom(ctx)
	attrs := make([]any, 0, 6)
	if f.requestID != "" {
		attrs = append(attrs, "request_id", f.requestID)
	}
	if f.uid != "" {
		attrs = append(attrs, "uid", f.uid)
	}
	if f.step != "" {
		attrs = append(attrs, "step", f.step)
	}
	if len(attrs) == 0 {
		return GetLogger()
	}
	return GetLogger().With(attrs...)
}

func CtxDebug(ctx context.Context, msg string, args ...any) { FromContext(ctx).Debug(msg, args...) }

func CtxInfo(ctx context.Context, msg string, args ...any) { FromContext(ctx).Info(msg, args...) }

func CtxWarn(ctx context.Context, msg string, args ...any) { FromContext(ctx).Warn(msg, args...) }

func CtxError(ctx context.Context, msg string, args ...any) { FromContext(ctx).Error(msg, args...) }

// CtxWithError logs msg at error level with err under "error".
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	FromContext(ctx).Error(msg, append([]any{"error", errString(err)}, args...)...)
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
