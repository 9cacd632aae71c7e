// Package goals maps a student's aspirational goal to skill weights and a
// quest-type mix.
package goals

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/tabledata"
)

// FileName is the table file looked up in an override directory.
const FileName = "goals.yaml"

//go:embed tables/goals.yaml
var defaultTable []byte

//go:embed tables/goals.schema.json
var tableSchema []byte

var spec = tabledata.Spec{Name: "goal", Schema: tableSchema, Major: "v1"}

// weightTolerance is how far skill weights may sum from 1.0.
const weightTolerance = 0.01

// Match tells how a title was resolved.
type Match string

const (
	MatchExact   Match = "exact"
	MatchFold    Match = "case_insensitive"
	MatchKeyword Match = "keyword"
	MatchDefault Match = "default"
)

// Map is the skill weighting and quest mix of one goal.
type Map struct {
	Title        string                   `json:"title"`
	Keywords     []string                 `json:"keywords,omitempty"`
	SkillWeights map[skills.Skill]float64 `json:"skillWeights"`
	QuestTypeMix map[quest.Type]int       `json:"questTypeMix"`
}

// Weight returns the goal's weight for s, 0 when absent.
func (m Map) Weight(s skills.Skill) float64 {
	return m.SkillWeights[s]
}

// Skills returns the weighted skills in canonical order.
func (m Map) Skills() []skills.Skill {
	var out []skills.Skill
	for _, s := range skills.AllSkills() {
		if _, ok := m.SkillWeights[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Table is an immutable set of goal maps plus a balanced default.
type Table struct {
	version  string
	fallback Map
	goals    []Map
	folded   []string
}

type rawTable struct {
	Version string    `yaml:"version"`
	Default rawGoal   `yaml:"default"`
	Goals   []rawGoal `yaml:"goals"`
}

type rawGoal struct {
	Title    string             `yaml:"title"`
	Keywords []string           `yaml:"keywords"`
	Skills   map[string]float64 `yaml:"skills"`
	Mix      map[string]int     `yaml:"mix"`
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
		return nil, fmt.Errorf("read goal table: %w", err)
	}
	return Load(raw)
}

// Load parses and validates a goal table. Every problem found is reported
// in the returned error.
func Load(raw []byte) (*Table, error) {
	var rt rawTable
	version, err := tabledata.Decode(spec, raw, &rt)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	t := &Table{version: version}
	var errs []string

	fallback, problems := convert(rt.Default)
	for _, p := range problems {
		errs = append(errs, "default: "+p)
	}
	t.fallback = fallback

	titles := make(map[string]bool)
	keywords := make(map[string]string)
	for _, g := range rt.Goals {
		m, problems := convert(g)
		for _, p := range problems {
			errs = append(errs, fmt.Sprintf("goal %q: %s", g.Title, p))
		}
		key := fold.String(strings.TrimSpace(m.Title))
		if titles[key] {
			errs = append(errs, fmt.Sprintf("goal %q listed twice", g.Title))
			continue
		}
		titles[key] = true

		kws := make([]string, 0, len(m.Keywords))
		for _, kw := range m.Keywords {
			kw = fold.String(strings.TrimSpace(kw))
			if owner, dup := keywords[kw]; dup {
				errs = append(errs, fmt.Sprintf("keyword %q used by %q and %q", kw, owner, m.Title))
				continue
			}
			keywords[kw] = m.Title
			kws = append(kws, kw)
		}
		m.Keywords = kws

		t.goals = append(t.goals, m)
		t.folded = append(t.folded, key)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("goal table validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return t, nil
}

func convert(g rawGoal) (Map, []string) {
	var problems []string
	m := Map{
		Title:        strings.TrimSpace(g.Title),
		Keywords:     g.Keywords,
		SkillWeights: make(map[skills.Skill]float64, len(g.Skills)),
		QuestTypeMix: make(map[quest.Type]int, len(g.Mix)),
	}

	var sum float64
	for name, w := range g.Skills {
		s, err := skills.ParseSkill(name)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		m.SkillWeights[s] = w
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		problems = append(problems, fmt.Sprintf("skill weights sum to %.3f, want 1.0", sum))
	}

	total := 0
	for name, pct := range g.Mix {
		typ := quest.Type(name)
		if !typ.Valid() {
			problems = append(problems, fmt.Sprintf("unknown quest type %q", name))
			continue
		}
		m.QuestTypeMix[typ] = pct
		total += pct
	}
	if total != 100 {
		problems = append(problems, fmt.Sprintf("quest mix sums to %d, want 100", total))
	}
	return m, problems
}

// Version returns the table's semantic version.
func (t *Table) Version() string {
	return t.version
}

// Goals returns the listed goals in table order.
func (t *Table) Goals() []Map {
	return append([]Map(nil), t.goals...)
}

// Fallback returns the balanced default map.
func (t *Table) Fallback() Map {
	return t.fallback
}

// Resolve finds the map for a goal title. It tries an exact title match,
// then a case-insensitive one, then the keyword list of each goal in table
// order against the words of the title: whole words first, then words
// that are a keyword plus one of the inflections. Anything else gets the
// balanced default; Resolve never fails.
func (t *Table) Resolve(title string) (Map, Match) {
	title = strings.TrimSpace(title)
	if title == "" {
		return t.fallback, MatchDefault
	}
	for _, g := range t.goals {
		if g.Title == title {
			return g, MatchExact
		}
	}

	folded := cases.Fold().String(title)
	for i, key := range t.folded {
		if key == folded {
			return t.goals[i], MatchFold
		}
	}

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, match := range []func(word, kw string) bool{equalWord, inflectedWord} {
		for _, g := range t.goals {
			for _, kw := range g.Keywords {
				for _, w := range words {
					if match(w, kw) {
						return g, MatchKeyword
					}
				}
			}
		}
	}
	return t.fallback, MatchDefault
}

// inflections are the endings a title word may add to a keyword and still
// match it, as in "doctors" or "engineering".
var inflections = []string{"s", "es", "er", "ers", "ing"}

func equalWord(word, kw string) bool { return word == kw }

func inflectedWord(word, kw string) bool {
	rest, ok := strings.CutPrefix(word, kw)
	return ok && slices.Contains(inflections, rest)
}
