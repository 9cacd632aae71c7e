package skills

import (
	"fmt"
	"strconv"
	"strings"
)

// Grade is an academic level. Only the levels in AllGrades are supported.
type Grade int

const (
	Grade6 Grade = 6
	Grade7 Grade = 7
	Grade8 Grade = 8
)

// DefaultGrade is used wherever a grade-keyed lookup has no entry.
const DefaultGrade = Grade8

// AllGrades returns the supported grades in ascending order.
func AllGrades() []Grade {
	return []Grade{Grade6, Grade7, Grade8}
}

// Valid reports whether g is a supported grade.
func (g Grade) Valid() bool {
	switch g {
	case Grade6, Grade7, Grade8:
		return true
	default:
		return false
	}
}

func (g Grade) String() string {
	return strconv.Itoa(int(g))
}

// ParseGrade parses "8", "grade8" or "grade-8".
func ParseGrade(s string) (Grade, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "grade"), "-")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse grade %q: %w", s, err)
	}
	g := Grade(n)
	if !g.Valid() {
		return 0, fmt.Errorf("unsupported grade %d", n)
	}
	return g, nil
}

// GradeSet is the set of grades a piece of content applies to.
type GradeSet []Grade

// Universal returns a set containing every supported grade.
func Universal() GradeSet {
	return GradeSet(AllGrades())
}

// Contains reports whether g is in the set.
func (s GradeSet) Contains(g Grade) bool {
	for _, x := range s {
		if x == g {
			return true
		}
	}
	return false
}

// IsUniversal reports whether the set covers every supported grade.
func (s GradeSet) IsUniversal() bool {
	for _, g := range AllGrades() {
		if !s.Contains(g) {
			return false
		}
	}
	return true
}
