package enums

import "fmt"

// EngagementKind labels a counted customer interaction.
type EngagementKind string

const (
	EngagementKindClick      EngagementKind = "click"
	EngagementKindImpression EngagementKind = "impression"
)

var validEngagementKinds = []EngagementKind{
	EngagementKindClick,
	EngagementKindImpression,
}

// IsValid reports whether the value matches the canonical engagement kind enum.
func (k EngagementKind) IsValid() bool {
	for _, candidate := range validEngagementKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseEngagementKind converts the raw string to EngagementKind.
func ParseEngagementKind(value string) (EngagementKind, error) {
	for _, candidate := range validEngagementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid engagement kind %q", value)
}
