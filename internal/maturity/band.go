package maturity

import "fmt"

// Band describes how independently a skill is currently expressed. Bands are
// ordered; use Order for comparisons, never the string value.
type Band string

const (
	Unclassified Band = "UNCLASSIFIED"
	Discovering  Band = "DISCOVERING"
	Practicing   Band = "PRACTICING"
	Consistent   Band = "CONSISTENT"
	Independent  Band = "INDEPENDENT"
	Adaptive     Band = "ADAPTIVE"
)

// canonical is the single source of band order.
var canonical = [...]Band{
	Unclassified,
	Discovering,
	Practicing,
	Consistent,
	Independent,
	Adaptive,
}

// AllBands returns the bands from lowest to highest.
func AllBands() []Band {
	out := make([]Band, len(canonical))
	copy(out, canonical[:])
	return out
}

// Order returns the position of b in the canonical sequence, or -1 for an
// unknown band.
func Order(b Band) int {
	for i, c := range canonical {
		if c == b {
			return i
		}
	}
	return -1
}

// Valid reports whether b is a known band.
func (b Band) Valid() bool {
	return Order(b) >= 0
}

// ParseBand returns the band with the given name.
func ParseBand(s string) (Band, error) {
	b := Band(s)
	if !b.Valid() {
		return "", fmt.Errorf("unknown maturity band %q", s)
	}
	return b, nil
}

// DisplayName returns a human-readable label for guide-facing views.
func (b Band) DisplayName() string {
	switch b {
	case Unclassified:
		return "Not yet observed"
	case Discovering:
		return "Discovering"
	case Practicing:
		return "Practicing"
	case Consistent:
		return "Consistent"
	case Independent:
		return "Independent"
	case Adaptive:
		return "Adaptive"
	default:
		return string(b)
	}
}

// BandForScore derives the qualitative band for a numeric skill score.
// A skill with no observations stays Unclassified.
func BandForScore(score float64, observations int) Band {
	if observations <= 0 {
		return Unclassified
	}
	switch {
	case score >= 85:
		return Adaptive
	case score >= 70:
		return Independent
	case score >= 50:
		return Consistent
	case score >= 30:
		return Practicing
	default:
		return Discovering
	}
}
