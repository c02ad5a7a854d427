package router

import (
	"net/http"
	"regexp"

	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is echoed on every response.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is accepted from proxies that only set this one.
	HeaderRequestID = "X-Request-ID"
)

var reCorrelationID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// correlationID takes the caller's id when it is well formed and mints a
// new one otherwise, so log lines never carry header injection.
func correlationID(r *http.Request, gen uid.StringID) string {
	for _, h := range []string{HeaderCorrelationID, HeaderRequestID} {
		if v := r.Header.Get(h); reCorrelationID.MatchString(v) {
			return v
		}
	}
	if gen == nil {
		return ""
	}
	return gen.Generate()
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := correlationID(r, gen)
			if cid == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderCorrelationID, cid)
			next.ServeHTTP(w, r.WithContext(instrument.SetCorrelationID(r.Context(), cid)))
		})
	}
}
