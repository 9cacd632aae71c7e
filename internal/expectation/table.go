package expectation

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abhisek/skillquest/internal/maturity"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/tabledata"
)

// FileName is the table file looked up in an override directory.
const FileName = "expectations.yaml"

//go:embed tables/expectations.yaml
var defaultTable []byte

//go:embed tables/expectations.schema.json
var tableSchema []byte

var spec = tabledata.Spec{Name: "expectation", Schema: tableSchema, Major: "v1"}

// Audience selects which narrative voice to return.
type Audience string

const (
	AudienceStudent Audience = "student"
	AudienceGuide   Audience = "guide" // parents and teachers
)

// Entry is the expectation for one grade and skill.
type Entry struct {
	Band             maturity.Band
	Emphasis         float64
	StudentNarrative string
	GuideNarrative   string
}

// Table is an immutable grade x skill expectation table.
type Table struct {
	version string
	entries map[skills.Grade]map[skills.Skill]Entry
}

type rawTable struct {
	Version string     `yaml:"version"`
	Grades  []rawGrade `yaml:"grades"`
}

type rawGrade struct {
	Grade  int        `yaml:"grade"`
	Skills []rawEntry `yaml:"skills"`
}

type rawEntry struct {
	Skill    string  `yaml:"skill"`
	Band     string  `yaml:"band"`
	Emphasis float64 `yaml:"emphasis"`
	Student  string  `yaml:"student"`
	Guide    string  `yaml:"guide"`
}

// Default returns the embedded table.
func Default() (*Table, error) {
	return Load(defaultTable)
}

// LoadDir loads FileName from dir, falling back to the embedded table when
// dir is empty or holds no such file.
func LoadDir(dir string) (*Table, error) {
	if dir == "" {
		return Default()
	}
	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("read expectation table: %w", err)
	}
	return Load(raw)
}

// Load parses, validates and indexes a table.
func Load(raw []byte) (*Table, error) {
	var rt rawTable
	version, err := tabledata.Decode(spec, raw, &rt)
	if err != nil {
		return nil, err
	}

	t := &Table{
		version: version,
		entries: make(map[skills.Grade]map[skills.Skill]Entry),
	}
	var errs []string
	for _, g := range rt.Grades {
		grade := skills.Grade(g.Grade)
		if !grade.Valid() {
			errs = append(errs, fmt.Sprintf("unsupported grade %d", g.Grade))
			continue
		}
		if _, dup := t.entries[grade]; dup {
			errs = append(errs, fmt.Sprintf("grade %d listed twice", g.Grade))
			continue
		}
		row := make(map[skills.Skill]Entry, len(g.Skills))
		for _, e := range g.Skills {
			sk, err := skills.ParseSkill(e.Skill)
			if err != nil {
				errs = append(errs, fmt.Sprintf("grade %d: %v", g.Grade, err))
				continue
			}
			band, err := maturity.ParseBand(e.Band)
			if err != nil {
				errs = append(errs, fmt.Sprintf("grade %d skill %s: %v", g.Grade, sk, err))
				continue
			}
			if _, dup := row[sk]; dup {
				errs = append(errs, fmt.Sprintf("grade %d skill %s listed twice", g.Grade, sk))
				continue
			}
			row[sk] = Entry{
				Band:             band,
				Emphasis:         e.Emphasis,
				StudentNarrative: e.Student,
				GuideNarrative:   e.Guide,
			}
		}
		t.entries[grade] = row
	}
	errs = append(errs, t.coverageErrors()...)

	if len(errs) > 0 {
		return nil, fmt.Errorf("expectation table validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return t, nil
}

// coverageErrors reports every supported grade and skill pair with no entry.
func (t *Table) coverageErrors() []string {
	var errs []string
	for _, g := range skills.AllGrades() {
		row, ok := t.entries[g]
		if !ok {
			errs = append(errs, fmt.Sprintf("missing grade %d", g))
			continue
		}
		for _, sk := range skills.AllSkills() {
			if _, ok := row[sk]; !ok {
				errs = append(errs, fmt.Sprintf("grade %d missing skill %s", g, sk))
			}
		}
	}
	return errs
}

// Version returns the table's semantic version.
func (t *Table) Version() string {
	if t == nil {
		return ""
	}
	return t.version
}

// Lookup returns the entry for a grade and skill.
func (t *Table) Lookup(g skills.Grade, s skills.Skill) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[g][s]
	return e, ok
}

// ExpectedBand returns the expected band, if defined.
func (t *Table) ExpectedBand(g skills.Grade, s skills.Skill) (maturity.Band, bool) {
	e, ok := t.Lookup(g, s)
	if !ok {
		return "", false
	}
	return e.Band, true
}

// Emphasis returns the curricular emphasis weight, or 0 when undefined.
func (t *Table) Emphasis(g skills.Grade, s skills.Skill) float64 {
	e, _ := t.Lookup(g, s)
	return e.Emphasis
}

// Narrative returns the narrative for an audience, if defined.
func (t *Table) Narrative(g skills.Grade, s skills.Skill, a Audience) (string, bool) {
	e, ok := t.Lookup(g, s)
	if !ok {
		return "", false
	}
	switch a {
	case AudienceStudent:
		return e.StudentNarrative, e.StudentNarrative != ""
	case AudienceGuide:
		return e.GuideNarrative, e.GuideNarrative != ""
	default:
		return "", false
	}
}

// Row returns a grade's entries in canonical skill order.
func (t *Table) Row(g skills.Grade) []SkillEntry {
	if t == nil {
		return nil
	}
	row := t.entries[g]
	out := make([]SkillEntry, 0, len(row))
	for s, e := range row {
		out = append(out, SkillEntry{Skill: s, Entry: e})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Skill.Index() < out[j].Skill.Index()
	})
	return out
}

// SkillEntry pairs a skill with its entry.
type SkillEntry struct {
	Skill skills.Skill
	Entry
}
