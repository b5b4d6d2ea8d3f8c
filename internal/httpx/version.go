package httpx

import (
	"net/http"
	"strings"
)

const supportedVersionsHeader = "api-supported-versions"

// Versions mounts the same routes under /api/v{n} for every listed version.
type Versions struct {
	versions []string
}

func NewVersions(versions ...string) *Versions {
	clean := make([]string, 0, len(versions))
	for _, v := range versions {
		v = strings.TrimPrefix(strings.TrimSpace(v), "v")
		if v != "" {
			clean = append(clean, v)
		}
	}
	return &Versions{versions: clean}
}

// Prefixes returns "/api/v1", "/api/v2", ...
func (v *Versions) Prefixes() []string {
	prefixes := make([]string, 0, len(v.versions))
	for _, version := range v.versions {
		prefixes = append(prefixes, "/api/v"+version)
	}
	return prefixes
}

// Mount calls register once per version prefix.
func (v *Versions) Mount(register func(prefix string)) {
	for _, prefix := range v.Prefixes() {
		register(prefix)
	}
}

// Middleware advertises the supported versions on every response.
func (v *Versions) Middleware(next http.Handler) http.Handler {
	labels := make([]string, 0, len(v.versions))
	for _, version := range v.versions {
		if !strings.Contains(version, ".") {
			version += ".0"
		}
		labels = append(labels, version)
	}
	header := strings.Join(labels, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(supportedVersionsHeader, header)
		next.ServeHTTP(w, r)
	})
}
