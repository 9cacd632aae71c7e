package goals

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

func mustDefault(t *testing.T) *Table {
	t.Helper()
	tbl, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	return tbl
}

func TestDefaultTableValid(t *testing.T) {
	tbl := mustDefault(t)
	if tbl.Version() != "v1.0.0" {
		t.Errorf("Version() = %q, want v1.0.0", tbl.Version())
	}
	for _, m := range append(tbl.Goals(), tbl.Fallback()) {
		sum := 0
		for _, pct := range m.QuestTypeMix {
			sum += pct
		}
		if sum != 100 {
			t.Errorf("%s mix sums to %d", m.Title, sum)
		}
	}
	if got := len(tbl.Fallback().Skills()); got != len(skills.AllSkills()) {
		t.Errorf("default map weights %d skills, want all %d", got, len(skills.AllSkills()))
	}
}

func TestResolve(t *testing.T) {
	tbl := mustDefault(t)
	tests := []struct {
		title     string
		wantTitle string
		wantMatch Match
	}{
		{"Software Engineer", "Software Engineer", MatchExact},
		{"software engineer", "Software Engineer", MatchFold},
		{"  DOCTOR ", "Doctor", MatchFold},
		{"software developer", "Software Engineer", MatchKeyword},
		{"Game-Developer!", "Software Engineer", MatchKeyword},
		{"marine biologist", "Scientist", MatchKeyword},
		{"astronaut", "Scientist", MatchKeyword},
		{"game developers", "Software Engineer", MatchKeyword},
		{"engineering", "Software Engineer", MatchKeyword},
		{"doctors", "Doctor", MatchKeyword},
		{"art teachers", "Artist", MatchKeyword},
		{"lawn mowing", "Balanced Explorer", MatchDefault},
		{"professional juggler", "Balanced Explorer", MatchDefault},
		{"", "Balanced Explorer", MatchDefault},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			m, match := tbl.Resolve(tt.title)
			if m.Title != tt.wantTitle || match != tt.wantMatch {
				t.Errorf("Resolve(%q) = (%s, %s), want (%s, %s)",
					tt.title, m.Title, match, tt.wantTitle, tt.wantMatch)
			}
		})
	}
}

func TestResolveDeveloperIsNotDefault(t *testing.T) {
	tbl := mustDefault(t)
	m, match := tbl.Resolve("software developer")
	if match == MatchDefault {
		t.Fatal("software developer resolved to the default map")
	}
	if m.Weight(skills.Reasoning) != 0.30 {
		t.Errorf("reasoning weight = %v, want 0.30", m.Weight(skills.Reasoning))
	}
	if m.QuestTypeMix[quest.TypeMiniGame] != 50 {
		t.Errorf("mini-game share = %d, want 50", m.QuestTypeMix[quest.TypeMiniGame])
	}
}

func TestLoadReportsEveryProblem(t *testing.T) {
	raw := []byte(`version: v1.2.0
default:
  title: Balanced
  skills: {MEMORY: 0.5}
  mix: {mini_game: 100}
goals:
  - title: Pilot
    keywords: [pilot, flying]
    skills: {ATTENTION: 0.5, JUGGLING: 0.5}
    mix: {mini_game: 60, dance: 50}
  - title: pilot
    skills: {ATTENTION: 1.0}
    mix: {reflection: 100}
  - title: Aviator
    keywords: [Flying]
    skills: {PLANNING: 1.0}
    mix: {reflection: 100}
`)
	_, err := Load(raw)
	if err == nil {
		t.Fatal("Load() = nil error, want validation failure")
	}
	msg := err.Error()
	for _, want := range []string{
		"goal table validation failed",
		"default: skill weights sum to 0.500",
		"JUGGLING",
		`unknown quest type "dance"`,
		`goal "pilot" listed twice`,
		`keyword "flying" used by "Pilot" and "Aviator"`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%s", want, msg)
		}
	}
}

func TestLoadRejectsMajorVersion(t *testing.T) {
	raw := []byte(`version: v2.0.0
default:
  title: Balanced
  skills: {MEMORY: 1.0}
  mix: {mini_game: 100}
goals: []
`)
	if _, err := Load(raw); err == nil || !strings.Contains(err.Error(), "want major v1") {
		t.Errorf("Load(v2) error = %v, want major version error", err)
	}
}

func TestLoadDirFallsBack(t *testing.T) {
	tbl, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDir(empty) error: %v", err)
	}
	if len(tbl.Goals()) == 0 {
		t.Error("fallback table has no goals")
	}

	dir := t.TempDir()
	override := []byte(`version: v1.1.0
default:
  title: Everything
  skills: {MEMORY: 1.0}
  mix: {reflection: 100}
goals:
  - title: Chef
    keywords: [cook]
    skills: {CREATIVITY: 1.0}
    mix: {choice_scenario: 100}
`)
	if err := os.WriteFile(filepath.Join(dir, FileName), override, 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err = LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir(override) error: %v", err)
	}
	if m, match := tbl.Resolve("head cook"); m.Title != "Chef" || match != MatchKeyword {
		t.Errorf("Resolve(head cook) = (%s, %s), want (Chef, keyword)", m.Title, match)
	}
}
