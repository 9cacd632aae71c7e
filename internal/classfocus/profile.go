package classfocus

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/skillquest/internal/skills"
)

// Profile is a teacher's set of skill boosts, optionally limited to one
// grade and a time window.
type Profile struct {
	ID      string `json:"id"`
	Tenant  string `json:"tenant"`
	Teacher string `json:"teacher"`

	// Grade limits the profile to one grade. Nil matches every grade.
	Grade *skills.Grade `json:"grade,omitempty"`

	Boosts Boosts `json:"boosts"`
	Active bool   `json:"active"`

	WindowStart *time.Time `json:"windowStart,omitempty"`
	WindowEnd   *time.Time `json:"windowEnd,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks a profile before it is stored.
func (p Profile) Validate() error {
	var errs []error
	if p.Tenant == "" {
		errs = append(errs, errors.New("tenant is required"))
	}
	if p.Teacher == "" {
		errs = append(errs, errors.New("teacher is required"))
	}
	if p.Grade != nil && !p.Grade.Valid() {
		errs = append(errs, fmt.Errorf("unsupported grade %d", *p.Grade))
	}
	for s, f := range p.Boosts {
		if !s.Valid() {
			errs = append(errs, fmt.Errorf("unknown skill %q", s))
			continue
		}
		if f < 0 || f > MaxBoost {
			errs = append(errs, fmt.Errorf("boost for %s is %.2f, must be within [0, %.2f]", s, f, MaxBoost))
		}
	}
	if p.WindowStart != nil && p.WindowEnd != nil && p.WindowEnd.Before(*p.WindowStart) {
		errs = append(errs, errors.New("window ends before it starts"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid focus profile: %w", errors.Join(errs...))
	}
	return nil
}

// Expired reports whether the profile's window has ended at now.
func (p Profile) Expired(now time.Time) bool {
	return p.WindowEnd != nil && now.After(*p.WindowEnd)
}

// InEffect reports whether the profile is active and inside its window at
// now.
func (p Profile) InEffect(now time.Time) bool {
	if !p.Active || p.Expired(now) {
		return false
	}
	return p.WindowStart == nil || !now.Before(*p.WindowStart)
}

func (p Profile) matches(tenant, teacher string, grade skills.Grade) bool {
	if p.Tenant != tenant || p.Teacher != teacher {
		return false
	}
	return p.Grade == nil || *p.Grade == grade
}

// ResolveActive returns the most recently updated profile of the teacher
// that applies to grade and is in effect at now. Inactive and expired
// profiles are ignored; when nothing qualifies the second result is false.
func ResolveActive(profiles []Profile, tenant, teacher string, grade skills.Grade, now time.Time) (Profile, bool) {
	var matching []Profile
	for _, p := range profiles {
		if p.matches(tenant, teacher, grade) && p.InEffect(now) {
			matching = append(matching, p)
		}
	}
	if len(matching) == 0 {
		return Profile{}, false
	}

	// Newest first; ids break ties for deterministic ordering.
	sort.SliceStable(matching, func(i, j int) bool {
		if !matching[i].UpdatedAt.Equal(matching[j].UpdatedAt) {
			return matching[i].UpdatedAt.After(matching[j].UpdatedAt)
		}
		return matching[i].ID < matching[j].ID
	})
	return matching[0], true
}
