package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"
)

const (
	maxLoggedBody = 4 << 10
	redacted      = "[FILTERED]"
)

// Keys containing any of these fragments are redacted from headers and JSON
// bodies.
var sensitiveFragments = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"session",
	"credential",
	"cookie",
	"signature",
}

// Bodies of these paths are never logged; they are either opaque payloads or
// carry credentials in full.
var unloggedBodies = []string{
	"/api/v1/billing/webhook",
	"/api/v1/invitations/accept",
	"/api/v1/auth/",
}

// LoggingMiddleware writes one line per request with status, latency and
// redacted request/response bodies. Client errors log at warn, server errors
// at error.
func LoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logBodies := bodyLoggable(r.URL.Path)

			var reqBody []byte
			if logBodies && r.Body != nil {
				reqBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(reqBody))
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			var respBody bytes.Buffer
			if logBodies {
				ww.Tee(&limitedWriter{buf: &respBody, max: maxLoggedBody})
			}

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := logger.Info()
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case status >= http.StatusBadRequest:
				event = logger.Warn()
			}

			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Dict("headers", redactHeaders(r.Header)).
				Int("status_code", status).
				Int("response_size", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_body", redactBody(reqBody)).
				Str("response_body", redactBody(respBody.Bytes())).
				Msg("http request")
		})
	}
}

func bodyLoggable(path string) bool {
	for _, p := range unloggedBodies {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, f := range sensitiveFragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func redactHeaders(h http.Header) *zerolog.Event {
	d := zerolog.Dict()
	for name, values := range h {
		if isSensitive(name) {
			d.Str(name, redacted)
			continue
		}
		d.Str(name, strings.Join(values, ", "))
	}
	return d
}

func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if isSensitive(string(body)) {
			return redacted
		}
		return string(body)
	}

	out, err := json.Marshal(redactJSON(data))
	if err != nil {
		return redacted
	}
	return string(out)
}

func redactJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = redacted
				continue
			}
			out[key] = redactJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = redactJSON(item)
		}
		return out
	default:
		return v
	}
}

// limitedWriter keeps the first max bytes and discards the rest.
type limitedWriter struct {
	buf *bytes.Buffer
	max int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if room := l.max - l.buf.Len(); room > 0 {
		if len(p) > room {
			l.buf.Write(p[:room])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}
