package restserver

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/chrissnell/printview/internal/log"
)

type ctxKey int

const requestIDKey ctxKey = iota

// requestIDMiddleware tags every request with an ID, reusing the caller's
// when it sends one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(log.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(log.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
