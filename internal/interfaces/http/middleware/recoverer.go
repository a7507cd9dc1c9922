package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
)

// Recoverer turns a handler panic into a logged 500 with the standard error
// body.  http.ErrAbortHandler is re-panicked so net/http can abort the
// connection.
func Recoverer(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.WithContext(r.Context()).Error("Handler panicked",
					logging.String("panic", fmt.Sprint(rec)),
					logging.String("stack", string(debug.Stack())),
					logging.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"code":"COMMON_001","message":"internal server error"}`))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
