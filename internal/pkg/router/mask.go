package router

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gocount/dashboard/internal/pkg/config"
)

const masked = "***"

// alwaysMasked carry credentials: the session token, the ingest key, the
// login password and the emailed code.
var alwaysMasked = []string{"authorization", "cookie", "set-cookie", "x-api-key", "password", "code"}

type masker map[string]struct{}

func newMasker(cfg config.Config) masker {
	m := masker{}
	for _, k := range alwaysMasked {
		m[k] = struct{}{}
	}
	if cfg == nil {
		return m
	}
	for _, field := range cfg.GetArray("instrument.log_mask_fields") {
		if field = strings.ToLower(strings.TrimSpace(field)); field != "" {
			m[field] = struct{}{}
		}
	}
	return m
}

func (m masker) hides(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

func (m masker) header(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		if m.hides(k) {
			out[k] = masked
			continue
		}
		out[k] = h.Get(k)
	}
	return out
}

func (m masker) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if m.hides(k) {
				out[k] = masked
				continue
			}
			out[k] = m.value(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.value(item)
		}
		return out
	default:
		return v
	}
}

// body returns the masked JSON document, or a short description when the
// payload is not JSON.
func (m masker) body(raw []byte, truncated bool) any {
	if len(raw) == 0 {
		return nil
	}
	if truncated {
		return map[string]any{"bytes": len(raw), "truncated": true}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return map[string]any{"bytes": len(raw), "json": false}
	}

	return m.value(doc)
}
