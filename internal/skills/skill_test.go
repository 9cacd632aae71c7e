package skills

import "testing"

func TestAllSkillsHaveDisplayNameAndBranch(t *testing.T) {
	seen := map[Skill]bool{}
	for _, s := range AllSkills() {
		if seen[s] {
			t.Errorf("duplicate skill %s", s)
		}
		seen[s] = true
		if s.DisplayName() == string(s) {
			t.Errorf("DisplayName(%s) falls through to the raw name", s)
		}
		if s.Branch() == "" {
			t.Errorf("Branch(%s) is empty", s)
		}
	}
	if len(seen) != 9 {
		t.Errorf("len(AllSkills) = %d, want 9", len(seen))
	}
}

func TestParseSkill(t *testing.T) {
	tests := []struct {
		in   string
		want Skill
	}{
		{"COGNITIVE_REASONING", Reasoning},
		{"cognitive-reasoning", Reasoning},
		{"reasoning", Reasoning},
		{" social_emotional ", SocialEmotional},
	}
	for _, tt := range tests {
		got, err := ParseSkill(tt.in)
		if err != nil {
			t.Errorf("ParseSkill(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSkill(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseSkill("juggling"); err == nil {
		t.Error("expected error for unknown skill")
	}
}

func TestSortCanonical(t *testing.T) {
	ss := []Skill{Values, Reasoning, Planning, Creativity}
	Sort(ss)
	want := []Skill{Reasoning, Creativity, Planning, Values}
	for i := range want {
		if ss[i] != want[i] {
			t.Fatalf("Sort = %v, want %v", ss, want)
		}
	}
}

func TestParseGrade(t *testing.T) {
	for in, want := range map[string]Grade{"6": Grade6, "grade7": Grade7, "Grade-8": Grade8} {
		got, err := ParseGrade(in)
		if err != nil || got != want {
			t.Errorf("ParseGrade(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"5", "nine", ""} {
		if _, err := ParseGrade(in); err == nil {
			t.Errorf("ParseGrade(%q) expected error", in)
		}
	}
}

func TestGradeSet(t *testing.T) {
	if !Universal().IsUniversal() {
		t.Error("Universal() is not universal")
	}
	s := GradeSet{Grade6, Grade7}
	if s.IsUniversal() {
		t.Error("partial set reported universal")
	}
	if !s.Contains(Grade7) || s.Contains(Grade8) {
		t.Errorf("Contains mismatch for %v", s)
	}
}
