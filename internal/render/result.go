package render

import (
	"math"

	"leafscan/pkg/types"
)

// Style names the color treatment of a bar, header or badge.
type Style string

const (
	StyleSuccess Style = "success"
	StyleWarning Style = "warning"
	StyleDanger  Style = "danger"
)

// Tier is the confidence display bucket.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	}
	return "low"
}

// Style returns the bar color for the tier
func (t Tier) Style() Style {
	switch t {
	case TierHigh:
		return StyleSuccess
	case TierMedium:
		return StyleWarning
	}
	return StyleDanger
}

// ConfidencePercent converts a confidence fraction to a whole percentage,
// rounding half away from zero and clamping to 0..100.
func ConfidencePercent(confidence float64) int {
	if math.IsNaN(confidence) {
		return 0
	}
	p := int(math.Round(confidence * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// TierFor buckets a percentage: >= 80 high, >= 60 medium, otherwise low.
func TierFor(percent int) Tier {
	switch {
	case percent >= 80:
		return TierHigh
	case percent >= 60:
		return TierMedium
	}
	return TierLow
}

// Badge is the health status label with its styling.
type Badge struct {
	Label  string
	Class  string
	Header Style
}

// BadgeFor maps the exact health status value to its badge. Anything that
// is neither Healthy nor Mild Disease is shown as critical.
func BadgeFor(status types.HealthStatus) Badge {
	switch status {
	case types.Healthy:
		return Badge{Label: "✓ Healthy Plant", Class: "status-healthy", Header: StyleSuccess}
	case types.MildDisease:
		return Badge{Label: "⚠ Mild Disease Detected", Class: "status-mild", Header: StyleWarning}
	}
	return Badge{Label: "⚠ Critical - Needs Attention", Class: "status-critical", Header: StyleDanger}
}
