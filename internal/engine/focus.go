package engine

import (
	"context"
	"fmt"

	"github.com/abhisek/skillquest/internal/classfocus"
	"github.com/abhisek/skillquest/internal/skills"
)

// SaveFocusProfile validates and stores a teacher's focus profile.
// Boosts outside the allowed range are rejected, not clamped.
func (e *Engine) SaveFocusProfile(ctx context.Context, p classfocus.Profile) (classfocus.Profile, error) {
	if e.deps.Focus == nil {
		return classfocus.Profile{}, errMissing("focus")
	}
	if err := p.Validate(); err != nil {
		return classfocus.Profile{}, &ValidationError{Err: err}
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = e.now()
	}
	saved, err := e.deps.Focus.SaveProfile(ctx, p)
	if err != nil {
		return classfocus.Profile{}, fmt.Errorf("save focus profile: %w", err)
	}
	e.log.Info("focus profile saved", "tenant", saved.Tenant, "teacher", saved.Teacher,
		"id", saved.ID, "active", saved.Active, "skills", len(saved.Boosts))
	return saved, nil
}

// ActiveFocus returns the teacher's profile in effect for grade now.
func (e *Engine) ActiveFocus(ctx context.Context, tenant, teacher string, grade skills.Grade) (classfocus.Profile, bool, error) {
	if e.deps.Focus == nil {
		return classfocus.Profile{}, false, errMissing("focus")
	}
	profiles, err := e.deps.Focus.ListProfiles(ctx, tenant, teacher)
	if err != nil {
		return classfocus.Profile{}, false, fmt.Errorf("list focus profiles: %w", err)
	}
	p, ok := classfocus.ResolveActive(profiles, tenant, teacher, grade, e.now())
	return p, ok, nil
}
