package model

// ExpiryStatus classifies a product against today and the warning window.
type ExpiryStatus string

const (
	StatusGood    ExpiryStatus = "good"
	StatusWarning ExpiryStatus = "warning"
	StatusExpired ExpiryStatus = "expired"
)

// ParseExpiryStatus accepts "good", "warning" and "expired".
func ParseExpiryStatus(s string) (ExpiryStatus, bool) {
	switch ExpiryStatus(s) {
	case StatusGood, StatusWarning, StatusExpired:
		return ExpiryStatus(s), true
	}
	return "", false
}
