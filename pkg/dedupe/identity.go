package dedupe

import (
	"strings"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// SameSourceIdentity reports whether a and b were derived from the same
// origin record: both carry a source id, and source and source id are equal.
// Text content is irrelevant.
func SameSourceIdentity(a, b model.Task) bool {
	if strings.TrimSpace(a.SourceID) == "" || strings.TrimSpace(b.SourceID) == "" {
		return false
	}
	return a.Source == b.Source && a.SourceID == b.SourceID
}

// IdentityKey returns the lookup key of a task's source identity, or "" when
// the task has no source id.
func IdentityKey(source model.Source, sourceID string) string {
	if strings.TrimSpace(sourceID) == "" {
		return ""
	}
	return string(source) + "/" + sourceID
}
