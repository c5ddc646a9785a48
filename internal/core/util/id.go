package util

import "github.com/google/uuid"

// NewIDNoDashes mints a process-local unique identifier with hyphens
// stripped, the form instance-name synthesis uses. The core never uses this
// for collector-assigned command serials — those are opaque strings the
// collector controls — only for values the core itself must mint.
func NewIDNoDashes() string {
	id := uuid.New()
	return stripDashes(id.String())
}

func stripDashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
