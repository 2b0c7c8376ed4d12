package domain

// VerifiedNotice is reported when sanitation found nothing to flag.
const VerifiedNotice = "Data Shield: 100% Verified"

// HealthReport is the ordered list of data-quality notices raised while sanitizing.
type HealthReport []string

// Add appends a notice unless it is already present
func (h HealthReport) Add(notice string) HealthReport {
	for _, existing := range h {
		if existing == notice {
			return h
		}
	}
	return append(h, notice)
}

// Verified reports whether no anomaly was detected
func (h HealthReport) Verified() bool {
	return len(h) == 0
}

// Notices returns the notices to show a caller. The result is never empty.
func (h HealthReport) Notices() []string {
	if h.Verified() {
		return []string{VerifiedNotice}
	}
	return append([]string(nil), h...)
}
