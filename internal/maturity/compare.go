package maturity

// Comparison is the relation of a current band to the expected band.
type Comparison string

const (
	BelowExpected  Comparison = "below_expected"
	WithinExpected Comparison = "within_expected"
	AboveExpected  Comparison = "above_expected"
)

// DefaultTolerance is the band distance still treated as within expectation.
const DefaultTolerance = 1

// Compare places current relative to expected. A distance of at most
// tolerance steps is within expectation. Unclassified on either side, or an
// unknown band, is never judged.
func Compare(current, expected Band, tolerance int) Comparison {
	if current == Unclassified || expected == Unclassified {
		return WithinExpected
	}
	c, e := Order(current), Order(expected)
	if c < 0 || e < 0 {
		return WithinExpected
	}
	if tolerance < 0 {
		tolerance = 0
	}
	switch d := c - e; {
	case d > tolerance:
		return AboveExpected
	case d < -tolerance:
		return BelowExpected
	default:
		return WithinExpected
	}
}

// Label returns the guide-facing wording of a comparison.
func (c Comparison) Label() string {
	switch c {
	case BelowExpected:
		return "Below typical for grade"
	case AboveExpected:
		return "Ahead of typical for grade"
	default:
		return "Within typical range"
	}
}
