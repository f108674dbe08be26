// logging.go - middleware логирования входящих HTTP-запросов через slog.
// Перехватывает статус-код, размер ответа и длительность обработки.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// responseWriter - обёртка для перехвата статус-кода ответа.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// RequestLogger возвращает middleware, логирующий каждый HTTP-запрос.
// Уровень зависит от статус-кода: INFO (до 4xx), WARN (4xx), ERROR (5xx).
// Если запрос аутентифицирован, в запись попадает id пользователя.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			// Субъект появляется в контексте внутри цепочки, поэтому
			// вложенный middleware сообщает его через указатель.
			var caller callerSlot
			next.ServeHTTP(wrapped, r.WithContext(withCallerSlot(r.Context(), &caller)))

			level := slog.LevelInfo
			if wrapped.statusCode >= 500 {
				level = slog.LevelError
			} else if wrapped.statusCode >= 400 {
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if id := RequestIDFromContext(r.Context()); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if caller.id > 0 {
				attrs = append(attrs, slog.Int64("user_id", caller.id))
			}

			logger.LogAttrs(r.Context(), level, "HTTP запрос", attrs...)
		})
	}
}

// callerSlot - место для id субъекта, заполняемое JWT middleware.
type callerSlot struct {
	id int64
}

const contextKeyCallerSlot contextKey = "caller_slot"

func withCallerSlot(ctx context.Context, slot *callerSlot) context.Context {
	return context.WithValue(ctx, contextKeyCallerSlot, slot)
}

// reportCaller записывает id субъекта в слот логгера, если он есть.
func reportCaller(ctx context.Context, id int64) {
	if slot, ok := ctx.Value(contextKeyCallerSlot).(*callerSlot); ok {
		slot.id = id
	}
}
