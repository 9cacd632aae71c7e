package maturity

import "testing"

func TestOrderMonotonic(t *testing.T) {
	bands := AllBands()
	for i := 1; i < len(bands); i++ {
		if Order(bands[i-1]) >= Order(bands[i]) {
			t.Errorf("Order(%s) = %d >= Order(%s) = %d", bands[i-1], Order(bands[i-1]), bands[i], Order(bands[i]))
		}
	}
	if Order("BOGUS") != -1 {
		t.Errorf("Order(BOGUS) = %d, want -1", Order("BOGUS"))
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		current, expected Band
		want              Comparison
	}{
		{Practicing, Practicing, WithinExpected},
		{Consistent, Practicing, WithinExpected},
		{Discovering, Practicing, WithinExpected},
		{Independent, Practicing, AboveExpected},
		{Discovering, Consistent, BelowExpected},
		{Unclassified, Adaptive, WithinExpected},
		{Adaptive, Unclassified, WithinExpected},
	}
	for _, tt := range tests {
		got := Compare(tt.current, tt.expected, DefaultTolerance)
		if got != tt.want {
			t.Errorf("Compare(%s, %s) = %s, want %s", tt.current, tt.expected, got, tt.want)
		}
	}
}

func TestCompareSwapSymmetry(t *testing.T) {
	flip := map[Comparison]Comparison{
		BelowExpected:  AboveExpected,
		AboveExpected:  BelowExpected,
		WithinExpected: WithinExpected,
	}
	for _, a := range AllBands() {
		for _, b := range AllBands() {
			for tol := 0; tol <= 2; tol++ {
				ab := Compare(a, b, tol)
				ba := Compare(b, a, tol)
				if flip[ab] != ba {
					t.Errorf("Compare(%s,%s,%d)=%s but swapped=%s", a, b, tol, ab, ba)
				}
			}
		}
	}
}

func TestCompareZeroTolerance(t *testing.T) {
	if got := Compare(Consistent, Practicing, 0); got != AboveExpected {
		t.Errorf("Compare with tolerance 0 = %s, want %s", got, AboveExpected)
	}
}

func TestMapToLevel(t *testing.T) {
	tests := []struct {
		band  Band
		score float64
		want  int
	}{
		{Unclassified, 10, 1},
		{Unclassified, 90, 2},
		{Discovering, 10, 1},
		{Discovering, 60, 2},
		{Practicing, 49, 3},
		{Practicing, 50, 4},
		{Consistent, 0, 5},
		{Independent, 100, 8},
		{Adaptive, 100, 10},
		{Adaptive, 150, 10},
		{Adaptive, -20, 9},
	}
	for _, tt := range tests {
		if got := MapToLevel(tt.band, tt.score); got != tt.want {
			t.Errorf("MapToLevel(%s, %v) = %d, want %d", tt.band, tt.score, got, tt.want)
		}
	}
}

func TestMapToLevelWithinBounds(t *testing.T) {
	for _, b := range AllBands() {
		for score := -10.0; score <= 110; score += 5 {
			l := MapToLevel(b, score)
			if l < 1 || l > 10 {
				t.Errorf("MapToLevel(%s, %v) = %d out of 1..10", b, score, l)
			}
		}
	}
}

func TestMapToXP(t *testing.T) {
	tests := []struct {
		band  Band
		score float64
		want  int
	}{
		{Unclassified, 0, 0},
		{Unclassified, 80, 80},
		{Practicing, 0, 250},
		{Practicing, 50, 350},
		{Practicing, 100, 450},
		{Adaptive, 100, 1300},
	}
	for _, tt := range tests {
		if got := MapToXP(tt.band, tt.score); got != tt.want {
			t.Errorf("MapToXP(%s, %v) = %d, want %d", tt.band, tt.score, got, tt.want)
		}
	}

	prev := -1
	for _, b := range AllBands() {
		xp := MapToXP(b, 50)
		if xp <= prev {
			t.Errorf("MapToXP(%s, 50) = %d not above previous band %d", b, xp, prev)
		}
		prev = xp
	}
}

func TestBandForScore(t *testing.T) {
	tests := []struct {
		score float64
		obs   int
		want  Band
	}{
		{90, 0, Unclassified},
		{10, 1, Discovering},
		{30, 1, Practicing},
		{55, 3, Consistent},
		{70, 3, Independent},
		{85, 3, Adaptive},
	}
	for _, tt := range tests {
		if got := BandForScore(tt.score, tt.obs); got != tt.want {
			t.Errorf("BandForScore(%v, %d) = %s, want %s", tt.score, tt.obs, got, tt.want)
		}
	}
}

func TestForStudentHidesBand(t *testing.T) {
	v := ForStudent(Consistent, 60)
	if v.Level != 6 || v.Title != "Strategist" {
		t.Errorf("ForStudent = %+v, want level 6 Strategist", v)
	}
}

func TestForGuideWithoutExpectation(t *testing.T) {
	v := ForGuide(Discovering, "", false, DefaultTolerance)
	if v.Comparison != WithinExpected || v.Expected != "" {
		t.Errorf("ForGuide without expectation = %+v", v)
	}
}
