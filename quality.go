package chatglot

// GradeForScore maps a numeric quality score to a letter grade. Both the
// adaptive and progressive result paths share this mapping; it is applied
// whenever the service supplies a score without an explicit grade.
func GradeForScore(score float64) string {
	switch {
	case score >= 0.9:
		return "A"
	case score >= 0.8:
		return "B"
	case score >= 0.7:
		return "C"
	case score >= 0.6:
		return "D"
	default:
		return "F"
	}
}
