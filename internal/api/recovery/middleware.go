package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/hlog"

	"github.com/machi-events/eventfinder/internal/api/respond"
)

// Middleware turns a handler panic into a logged 500 JSON reply.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Str("panic", fmt.Sprint(rec)).
				Str("route", r.Method+" "+r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			respond.WriteInternalError(w, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}
