package model

// CorrectionType describes how a user's confirmed completion compared to the
// engine's estimate.
type CorrectionType string

const (
	CorrectionUnderestimated CorrectionType = "underestimated"
	CorrectionOverestimated  CorrectionType = "overestimated"
	CorrectionAccurate       CorrectionType = "accurate"
)

// accurateBand is the +/- percentage-point band inside which an estimate
// counts as accurate.
const accurateBand = 10

// DeriveCorrection compares the user's value against the engine's original
// estimate. A difference within +/-10 points is accurate; otherwise the
// engine under- or overestimated.
func DeriveCorrection(original, corrected int) CorrectionType {
	delta := corrected - original
	switch {
	case delta > accurateBand:
		return CorrectionUnderestimated
	case delta < -accurateBand:
		return CorrectionOverestimated
	default:
		return CorrectionAccurate
	}
}
