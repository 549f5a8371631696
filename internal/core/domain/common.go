package domain

import "time"

// AuditFields holds row timestamps shared by persisted entities.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Placeholders used when a provider omits a field.
const (
	UnknownValue       = "Unknown"
	UnnamedAccountName = "Unnamed Account"
	NeverRefreshed     = "Never refreshed"
)

// DateLayout is the calendar date format exchanged with providers.
const DateLayout = "2006-01-02"

// Today truncates t to its calendar date in t's location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// valueOr returns v unless it is blank, in which case it returns fallback.
func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
