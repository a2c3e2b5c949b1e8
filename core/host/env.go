package host

import (
	"os"
	"strings"
)

// Environ returns the process environment variables starting with prefix,
// with the prefix stripped.
func Environ(prefix string) map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, prefix) {
			continue
		}
		if name := strings.TrimPrefix(k, prefix); name != "" {
			env[name] = v
		}
	}
	return env
}
