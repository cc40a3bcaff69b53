package enums

import "fmt"

// MatchStatus classifies one invoice line against aggregated receiving data.
type MatchStatus string

const (
	MatchStatusAutoConfirmed   MatchStatus = "auto_confirmed"
	MatchStatusManualConfirmed MatchStatus = "manual_confirmed"
	MatchStatusNeedReview      MatchStatus = "need_review"
	MatchStatusUnmatched       MatchStatus = "unmatched"
	MatchStatusIgnored         MatchStatus = "ignored"
)

var validMatchStatuses = []MatchStatus{
	MatchStatusAutoConfirmed,
	MatchStatusManualConfirmed,
	MatchStatusNeedReview,
	MatchStatusUnmatched,
	MatchStatusIgnored,
}

// String implements fmt.Stringer.
func (m MatchStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MatchStatus.
func (m MatchStatus) IsValid() bool {
	for _, candidate := range validMatchStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsSettled reports whether the line no longer needs operator attention.
func (m MatchStatus) IsSettled() bool {
	return m == MatchStatusManualConfirmed || m == MatchStatusIgnored
}

// ParseMatchStatus converts raw input into a MatchStatus.
func ParseMatchStatus(value string) (MatchStatus, error) {
	for _, candidate := range validMatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid match status %q", value)
}
