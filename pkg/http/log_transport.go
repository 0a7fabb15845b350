package http

import (
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type payloadContextKey struct{}

// Embedding batches can be large, only the head of a payload is logged.
const maxLoggedPayload = 2048

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.String("content_type", req.Header.Get("Content-Type")),
		zap.Int64("content_length", req.ContentLength),
	}

	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		if len(payload) > maxLoggedPayload {
			fields = append(fields, zap.Bool("payload_truncated", true))
			payload = payload[:maxLoggedPayload]
		}
		fields = append(fields, zap.ByteString("payload", payload))
	}

	start := time.Now()
	resp, err := t.transport.RoundTrip(req)
	fields = append(fields, zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	if err != nil {
		ctxzap.Debug(ctx, "HTTP outbound request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields,
		zap.Int("status", resp.StatusCode),
		zap.Int64("response_length", resp.ContentLength),
	)
	if resp.StatusCode >= http.StatusBadRequest {
		ctxzap.Warn(ctx, "HTTP outbound request rejected", fields...)
		return resp, nil
	}
	ctxzap.Debug(ctx, "HTTP outbound request", fields...)
	return resp, nil
}

// WithRequestLogging logs every outbound call at debug level. Credential
// headers are never logged.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}

