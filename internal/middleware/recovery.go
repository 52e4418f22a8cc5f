package middleware

import (
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// Recovery is a middleware that recovers from panics and returns a 500 Internal Server Error.
// The panic value and stack are logged with the request ID set by chi's RequestID middleware.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// net/http uses this value to abort a response on purpose
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				utils.LogPanic(chimiddleware.GetReqID(r.Context()), rec, debug.Stack())

				utils.Error(
					w,
					http.StatusInternalServerError,
					constants.CodeInternalError,
					constants.MsgInternalServerError,
					nil,
				)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
