package model

// AppCategory classifies a foreground process for activity statistics.
type AppCategory string

const (
	CategoryProductive AppCategory = "PRODUCTIVE"
	CategoryLeisure    AppCategory = "LEISURE"
	CategoryNeutral    AppCategory = "NEUTRAL"
	CategoryUnknown    AppCategory = "UNKNOWN"
)

func (c AppCategory) IsValid() bool {
	switch c {
	case CategoryProductive, CategoryLeisure, CategoryNeutral, CategoryUnknown:
		return true
	default:
		return false
	}
}
