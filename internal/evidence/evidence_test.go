package evidence

import (
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

func met(id string) Signal {
	return Signal{
		ID:                 id,
		Name:               id,
		MinObservations:    5,
		MinContexts:        2,
		StabilityThreshold: 0.6,
		Observed:           8,
		Contexts:           3,
		Stability:          0.8,
	}
}

func TestGlobalGateBlocksEverything(t *testing.T) {
	huge := met("huge")
	huge.Observed = 100
	for total := 0; total < 10; total++ {
		r := Gate([]Signal{huge, met("b")}, total, DefaultConfig())
		if len(r.Unlocked) != 0 {
			t.Errorf("total %d unlocked %d signals, want 0", total, len(r.Unlocked))
		}
		if len(r.Locked) != 2 {
			t.Errorf("total %d locked %d signals, want 2", total, len(r.Locked))
		}
	}
	if r := Gate([]Signal{huge}, 9, DefaultConfig()); r.GlobalMet {
		t.Error("GlobalMet at 9 activities")
	}
}

func TestPerSignalThresholds(t *testing.T) {
	lowObs := met("obs")
	lowObs.Observed = 4
	lowCtx := met("ctx")
	lowCtx.Contexts = 1
	lowStab := met("stab")
	lowStab.Stability = 0.59

	r := Gate([]Signal{lowObs, met("ok"), lowCtx, lowStab}, 12, DefaultConfig())
	if len(r.Unlocked) != 1 || r.Unlocked[0].ID != "ok" {
		t.Errorf("unlocked = %v, want [ok]", r.Unlocked)
	}
	if len(r.Locked) != 3 {
		t.Errorf("locked = %d, want 3", len(r.Locked))
	}
}

func TestConfidenceStrongAtTwenty(t *testing.T) {
	cfg := DefaultConfig()
	s := met("s")
	if got := Rate(s, 19, cfg); got != Moderate {
		t.Errorf("Rate(19) = %s, want MODERATE", got)
	}
	if got := Rate(s, 20, cfg); got != Strong {
		t.Errorf("Rate(20) = %s, want STRONG", got)
	}

	prev := Emerging
	for total := 0; total <= 60; total++ {
		got := Rate(s, total, cfg)
		if got.rank() < prev.rank() {
			t.Fatalf("confidence regressed from %s to %s at %d", prev, got, total)
		}
		prev = got
	}

	weak := met("w")
	weak.Observed = 0
	if got := Rate(weak, 50, cfg); got != Emerging {
		t.Errorf("Rate(unmet) = %s, want EMERGING", got)
	}
}

func TestStrongThresholdIsTunable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrongAt = 30
	if got := Rate(met("s"), 25, cfg); got != Moderate {
		t.Errorf("Rate(25, StrongAt 30) = %s, want MODERATE", got)
	}
}

func TestGateCapsAndOrders(t *testing.T) {
	var signals []Signal
	for i := range 7 {
		signals = append(signals, met(fmt.Sprintf("s%d", i)))
	}
	r := Gate(signals, 25, DefaultConfig())
	if len(r.Unlocked) != 5 {
		t.Fatalf("unlocked = %d, want 5", len(r.Unlocked))
	}
	if len(r.Withheld) != 2 {
		t.Errorf("withheld = %d, want 2", len(r.Withheld))
	}
	for i, u := range r.Unlocked {
		if want := fmt.Sprintf("s%d", i); u.ID != want {
			t.Errorf("unlocked[%d] = %s, want %s", i, u.ID, want)
		}
		if u.Confidence != Strong {
			t.Errorf("unlocked[%d] confidence = %s, want STRONG", i, u.Confidence)
		}
	}
}

func TestGateHardLimitsHoldUnderMisconfiguration(t *testing.T) {
	var signals []Signal
	for i := range 8 {
		signals = append(signals, met(fmt.Sprintf("s%d", i)))
	}

	cfg := DefaultConfig()
	cfg.MaxSurfaced = -1
	if r := Gate(signals, 25, cfg); len(r.Unlocked) != 0 || len(r.Withheld) != 8 {
		t.Errorf("MaxSurfaced -1: unlocked %d withheld %d, want 0 and 8", len(r.Unlocked), len(r.Withheld))
	}

	cfg.MaxSurfaced = 50
	if r := Gate(signals, 25, cfg); len(r.Unlocked) != SurfaceLimit {
		t.Errorf("MaxSurfaced 50: unlocked %d, want %d", len(r.Unlocked), SurfaceLimit)
	}

	cfg = DefaultConfig()
	cfg.GlobalMinimum = 2
	if r := Gate(signals, 9, cfg); r.GlobalMet || len(r.Unlocked) != 0 {
		t.Errorf("GlobalMinimum 2 at 9 activities: GlobalMet %v, unlocked %d", r.GlobalMet, len(r.Unlocked))
	}
}

func TestDisclosures(t *testing.T) {
	cfg := DefaultConfig()
	one := Gate([]Signal{met("a")}, 12, cfg)
	three := Gate([]Signal{met("a"), met("b"), met("c")}, 12, cfg)
	early := Gate([]Signal{met("a"), met("b"), met("c")}, 5, cfg)

	tests := []struct {
		name              string
		r                 Result
		gentle, narrative bool
	}{
		{"one moderate", one, true, false},
		{"three moderate", three, true, true},
		{"below global gate", early, false, false},
	}
	for _, tt := range tests {
		d := Disclosures(tt.r, Coverage{}, cfg)
		if d.GentleObservations != tt.gentle || d.ProgressNarrative != tt.narrative {
			t.Errorf("%s: disclosures = %+v, want gentle=%v narrative=%v", tt.name, d, tt.gentle, tt.narrative)
		}
	}
}

func TestDiversityMet(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		types, branches int
		want            bool
	}{
		{3, 0, true},
		{2, 4, true},
		{2, 3, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := DiversityMet(tt.types, tt.branches, cfg); got != tt.want {
			t.Errorf("DiversityMet(%d, %d) = %v, want %v", tt.types, tt.branches, got, tt.want)
		}
	}
}

func outcome(typ quest.Type, score int, ss ...skills.Skill) quest.Outcome {
	return quest.Outcome{
		Type:            typ,
		Skills:          ss,
		Accuracy:        score,
		NormalizedScore: score,
		CompletedAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDerive(t *testing.T) {
	outcomes := []quest.Outcome{
		outcome(quest.TypeMiniGame, 80, skills.Reasoning),
		outcome(quest.TypeMiniGame, 80, skills.Reasoning),
		outcome(quest.TypeChoiceScenario, 80, skills.Reasoning, skills.Values),
		outcome(quest.TypeReflection, 40, skills.Reasoning),
		outcome(quest.TypeReflection, 90, skills.Language),
	}
	defs := []Definition{
		{ID: "reasoner", Skills: []skills.Skill{skills.Reasoning}, MinObservations: 3, MinContexts: 2, StabilityThreshold: 0.5},
		{ID: "writer", Skills: []skills.Skill{skills.Language}},
		{ID: "planner", Skills: []skills.Skill{skills.Planning}},
	}
	got := Derive(outcomes, defs)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	r := got[0]
	if r.Observed != 3 || r.Contexts != 2 {
		t.Errorf("reasoner observed=%d contexts=%d, want 3 and 2", r.Observed, r.Contexts)
	}
	// Scores 80,80,80,40: mean 70, sd sqrt(300) = 17.32, 1 - 17.32/50 = 0.65.
	if r.Stability != 0.65 {
		t.Errorf("reasoner stability = %v, want 0.65", r.Stability)
	}
	if !r.ThresholdsMet() {
		t.Error("reasoner thresholds not met")
	}

	if got[1].Observed != 1 || got[1].Stability != 0 {
		t.Errorf("writer = %+v, want 1 observation and zero stability", got[1])
	}
	if got[2].Observed != 0 {
		t.Errorf("planner observed = %d, want 0", got[2].Observed)
	}
}

func TestCover(t *testing.T) {
	cov := Cover([]quest.Outcome{
		outcome(quest.TypeMiniGame, 50, skills.Reasoning, skills.Memory),
		outcome(quest.TypeReflection, 50, skills.Language),
		outcome(quest.TypeReflection, 50, skills.Values),
	})
	want := Coverage{Total: 3, ActivityTypes: 2, SkillBranches: 3}
	if cov != want {
		t.Errorf("Cover = %+v, want %+v", cov, want)
	}
}

func TestCatalogIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Catalog() {
		if seen[d.ID] {
			t.Errorf("duplicate definition %s", d.ID)
		}
		seen[d.ID] = true
		if len(d.Skills) == 0 || len(d.SupportActions) == 0 {
			t.Errorf("definition %s is incomplete", d.ID)
		}
	}
}
