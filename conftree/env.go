package conftree

import (
	"os"
	"strings"
)

// EnvOverlay layers matching environment variables on top of s and returns
// the result. Variables must carry the given prefix; the remainder maps to a
// dot-separated path with underscores as separators, lowercased. With prefix
// "COMPOSE", COMPOSE_SERVER_PORT=8080 sets server.port. Values stay strings;
// Bind and the scalar accessors coerce them on read.
func EnvOverlay(s *Section, prefix string) (*Section, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, ErrEmptyEnvPrefix
	}

	marker := strings.ToUpper(prefix)
	if !strings.HasSuffix(marker, "_") {
		marker += "_"
	}

	overlay := New(nil)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, marker) {
			continue
		}
		trimmed := strings.TrimPrefix(key, marker)
		if trimmed == "" {
			continue
		}
		path := strings.ToLower(strings.ReplaceAll(trimmed, "_", "."))
		overlay.Set(path, value)
	}

	return Merge(s, overlay)
}
