package contentgen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Kind selects the family of items a generator produces.
type Kind string

const (
	KindPattern    Kind = "pattern"
	KindMemory     Kind = "memory"
	KindLogic      Kind = "logic"
	KindVocabulary Kind = "vocabulary"
	KindEstimation Kind = "estimation"

	// KindGeneric is used for any kind without its own templates.
	KindGeneric Kind = "generic"
)

// Kinds returns the kinds that have dedicated templates.
func Kinds() []Kind {
	return []Kind{KindPattern, KindMemory, KindLogic, KindVocabulary, KindEstimation}
}

// Item is one generated question.
type Item struct {
	ID      string   `json:"id"`
	Kind    Kind     `json:"kind"`
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  string   `json:"answer"`
}

type itemFunc func(rng *rand.Rand) (prompt string, choices []string, answer string)

var generators = map[Kind]itemFunc{
	KindPattern:    patternItem,
	KindMemory:     memoryItem,
	KindLogic:      logicItem,
	KindVocabulary: vocabularyItem,
	KindEstimation: estimationItem,
}

// MaxItems is the largest item count one mini-game may hold.
const MaxItems = 50

// Generate returns count items for kind and seed.
//
// The result depends only on (kind, seed, count): item i is derived from
// the hash of kind and seed mixed with i, so regenerating with the same
// inputs at scoring time reproduces exactly what the student saw. No wall
// clock or global random source is consulted.
//
// An unknown kind produces generic items instead of failing. A count below
// one yields no items; a count above MaxItems is cut to MaxItems.
func Generate(kind Kind, seed string, count int) []Item {
	if count <= 0 {
		return nil
	}
	count = min(count, MaxItems)
	gen, ok := generators[kind]
	if !ok {
		gen = genericItem
	}

	base := baseSeed(kind, seed)
	items := make([]Item, count)
	for i := range count {
		prompt, choices, answer := gen(newRand(base, i))
		items[i] = Item{
			ID:      fmt.Sprintf("%s-%08x-%d", kind, base, i),
			Kind:    kind,
			Index:   i,
			Prompt:  prompt,
			Choices: choices,
			Answer:  answer,
		}
	}
	return items
}

// Matches reports whether answer is correct for item. Answers match
// case-insensitively after trimming; a 1-based choice number is accepted.
func (it Item) Matches(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(it.Choices) {
		if strings.EqualFold(strings.TrimSpace(it.Choices[idx-1]), it.Answer) {
			return true
		}
	}
	return strings.EqualFold(answer, strings.TrimSpace(it.Answer))
}

// shuffleChoices places answer among distractors in a seeded order.
func shuffleChoices(rng *rand.Rand, answer string, distractors ...string) []string {
	choices := append([]string{answer}, distractors...)
	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	return choices
}

func patternItem(rng *rand.Rand) (string, []string, string) {
	start := 1 + rng.Intn(9)
	step := 2 + rng.Intn(8)
	terms := make([]string, 4)
	for i := range terms {
		terms[i] = strconv.Itoa(start + i*step)
	}
	next := start + 4*step
	prompt := fmt.Sprintf("What comes next: %s, ...?", strings.Join(terms, ", "))
	return prompt, shuffleChoices(rng, strconv.Itoa(next),
		strconv.Itoa(next+step),
		strconv.Itoa(next-1),
		strconv.Itoa(next+1),
	), strconv.Itoa(next)
}

var memorySymbols = []string{"star", "moon", "leaf", "drum", "kite", "shell", "bell", "key"}

func memoryItem(rng *rand.Rand) (string, []string, string) {
	n := 4 + rng.Intn(3)
	perm := rng.Perm(len(memorySymbols))[:n]
	seq := make([]string, n)
	for i, p := range perm {
		seq[i] = memorySymbols[p]
	}
	pos := rng.Intn(n)
	answer := seq[pos]

	var distractors []string
	for _, s := range seq {
		if s != answer && len(distractors) < 3 {
			distractors = append(distractors, s)
		}
	}
	prompt := fmt.Sprintf("Remember this order: %s. Which one was in position %d?",
		strings.Join(seq, ", "), pos+1)
	return prompt, shuffleChoices(rng, answer, distractors...), answer
}

type logicTemplate struct {
	statement string
	answer    string
}

var logicTemplates = []logicTemplate{
	{"All robots in the lab are blue. Pip is a robot in the lab. Is Pip blue?", "yes"},
	{"No cats in the shelter are black. Luna is a black cat. Is Luna in the shelter?", "no"},
	{"Every member of the chess club plays on Fridays. Sam plays on Fridays. Must Sam be in the chess club?", "can't tell"},
	{"If it rains, the game moves indoors. The game did not move indoors. Did it rain?", "no"},
	{"Some birds cannot fly. A penguin is a bird. Can we be sure a penguin flies?", "no"},
	{"All squares are rectangles. Shape Q is a square. Is Q a rectangle?", "yes"},
	{"Mia is taller than Ken. Ken is taller than Ravi. Is Ravi taller than Mia?", "no"},
	{"If the light is green, cars may go. Cars are going. Must the light be green?", "can't tell"},
}

func logicItem(rng *rand.Rand) (string, []string, string) {
	t := logicTemplates[rng.Intn(len(logicTemplates))]
	choices := []string{"yes", "no", "can't tell"}
	return t.statement, choices, t.answer
}

type wordDefinition struct {
	word       string
	definition string
}

var vocabulary = []wordDefinition{
	{"resilient", "able to recover after a setback"},
	{"meticulous", "very careful about details"},
	{"collaborate", "work together toward a goal"},
	{"hypothesis", "an idea you can test"},
	{"empathy", "understanding how someone else feels"},
	{"persevere", "keep going despite difficulty"},
	{"innovate", "introduce something new"},
	{"evaluate", "judge the value or quality of something"},
	{"concise", "short and clear"},
	{"ambiguous", "open to more than one meaning"},
}

func vocabularyItem(rng *rand.Rand) (string, []string, string) {
	perm := rng.Perm(len(vocabulary))
	target := vocabulary[perm[0]]
	distractors := []string{
		vocabulary[perm[1]].definition,
		vocabulary[perm[2]].definition,
		vocabulary[perm[3]].definition,
	}
	prompt := fmt.Sprintf("What does %q mean?", target.word)
	return prompt, shuffleChoices(rng, target.definition, distractors...), target.definition
}

func estimationItem(rng *rand.Rand) (string, []string, string) {
	a := 11 + rng.Intn(89)
	b := 2 + rng.Intn(8)
	nearest := ((a*b + 5) / 10) * 10
	prompt := fmt.Sprintf("About how much is %d x %d? Pick the closest ten.", a, b)
	return prompt, shuffleChoices(rng, strconv.Itoa(nearest),
		strconv.Itoa(nearest-10),
		strconv.Itoa(nearest+20),
		strconv.Itoa(nearest+50),
	), strconv.Itoa(nearest)
}

type oddOneOut struct {
	group []string
	odd   string
}

var genericSets = []oddOneOut{
	{[]string{"apple", "pear", "plum"}, "carrot"},
	{[]string{"violin", "cello", "harp"}, "trumpet"},
	{[]string{"circle", "oval", "sphere"}, "cube"},
	{[]string{"river", "lake", "ocean"}, "desert"},
	{[]string{"hammer", "saw", "drill"}, "pillow"},
}

func genericItem(rng *rand.Rand) (string, []string, string) {
	set := genericSets[rng.Intn(len(genericSets))]
	choices := shuffleChoices(rng, set.odd, set.group...)
	return "Which one does not belong?", choices, set.odd
}
