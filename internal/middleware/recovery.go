package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"TASKTRACKER_BACK-END/internal/utils"
)

// Recovery turns a handler panic into a logged 500 response
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.Printf("panic recovered: %v\n%s", err, debug.Stack())
				utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
