package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillquest/internal/careers"
	"github.com/abhisek/skillquest/internal/classfocus"
	"github.com/abhisek/skillquest/internal/maturity"
	"github.com/abhisek/skillquest/internal/progress"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/weekly"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func sampleQuest(id string) quest.Quest {
	return quest.Quest{
		ID:               id,
		Title:            "Pattern Sprint",
		EstimatedMinutes: 5,
		Content:          quest.MiniGame{Game: "pattern", Seed: id, QuestionCount: 8},
		PrimarySkills:    []skills.Skill{skills.Reasoning},
		Grades:           skills.GradeSet{skills.Grade8},
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range Tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table.Name, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()
	key := PlanKey{Tenant: "t1", Student: "s1", Date: "2026-03-02", Mode: ModeDaily}

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.CreatePlan(ctx, PlanRecord{Key: key, Grade: skills.Grade8, Quests: []quest.Quest{sampleQuest("q1")}, CreatedAt: t0}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetPlan(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got.Quests, 1)
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx, s.DB())
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestPlanCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := PlanKey{Tenant: "t1", Student: "s1", Date: "2026-03-02", Mode: ModeDaily}

	_, err := s.GetPlan(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	rec := PlanRecord{
		Key:       key,
		Grade:     skills.Grade8,
		Quests:    []quest.Quest{sampleQuest("q1"), sampleQuest("q2")},
		CreatedAt: t0,
	}
	require.NoError(t, s.CreatePlan(ctx, rec))

	got, err := s.GetPlan(ctx, key)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, key, got.Key)
	assert.Equal(t, skills.Grade8, got.Grade)
	require.Len(t, got.Quests, 2)
	assert.Equal(t, "q1", got.Quests[0].ID)
	assert.Equal(t, quest.MiniGame{Game: "pattern", Seed: "q1", QuestionCount: 8}, got.Quests[0].Content)
	assert.True(t, got.CreatedAt.Equal(t0), "CreatedAt = %v", got.CreatedAt)
	assert.Nil(t, got.Weekly)
}

func TestPlanCreateConflictKeepsFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := PlanKey{Tenant: "t1", Student: "s1", Date: "2026-03-02", Mode: ModeDaily}

	require.NoError(t, s.CreatePlan(ctx, PlanRecord{ID: "first", Key: key, Quests: []quest.Quest{sampleQuest("a")}, CreatedAt: t0}))
	err := s.CreatePlan(ctx, PlanRecord{ID: "second", Key: key, Quests: []quest.Quest{sampleQuest("b")}, CreatedAt: t0})
	require.ErrorIs(t, err, ErrPlanExists)

	got, err := s.GetPlan(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "first", got.ID)
	assert.Equal(t, "a", got.Quests[0].ID)

	// Same student and date in the other mode is a different key.
	weeklyKey := key
	weeklyKey.Mode = ModeWeekly
	require.NoError(t, s.CreatePlan(ctx, PlanRecord{Key: weeklyKey, CreatedAt: t0}))
}

func TestPlanConcurrentCreateSingleWinner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := PlanKey{Tenant: "t1", Student: "race", Date: "2026-03-02", Mode: ModeDaily}

	const writers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		conflict int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreatePlan(ctx, PlanRecord{Key: key, Quests: []quest.Quest{sampleQuest("q")}, CreatedAt: t0})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrPlanExists):
				conflict++
			default:
				t.Errorf("CreatePlan: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, conflict)
}

func TestPlanWeeklyRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := PlanKey{Tenant: "t1", Student: "s1", Date: "2026-03-02", Mode: ModeWeekly}
	plan := &weekly.Plan{
		Goal:      "Software Engineer",
		Grade:     skills.Grade7,
		WeekStart: "2026-03-02",
		Focus:     []weekly.FocusSkill{{Skill: skills.Reasoning, Priority: 42.5}},
		PerDay:    1,
		Days:      []weekly.Day{{Date: "2026-03-02", Quests: []quest.Quest{sampleQuest("w1")}}},
	}
	require.NoError(t, s.CreatePlan(ctx, PlanRecord{Key: key, Grade: skills.Grade7, Weekly: plan, CreatedAt: t0}))

	got, err := s.GetPlan(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got.Weekly)
	assert.Equal(t, "Software Engineer", got.Weekly.Goal)
	assert.Equal(t, []skills.Skill{skills.Reasoning}, got.Weekly.FocusSkills())
	assert.Equal(t, 1, got.Weekly.TotalQuests())
}

func TestScoresUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.LoadScores(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := progress.Apply(nil, skills.Memory, quest.Outcome{QuestID: "q1", NormalizedScore: 80, Accuracy: 80}, t0)
	require.NoError(t, s.SaveScores(ctx, "t1", "s1", []progress.SkillScore{first}))

	second := progress.Apply(&first, skills.Memory, quest.Outcome{QuestID: "q2", NormalizedScore: 90, Accuracy: 90}, t0.Add(time.Hour))
	require.NoError(t, s.SaveScores(ctx, "t1", "s1", []progress.SkillScore{second}))

	got, err := s.LoadScores(ctx, "t1", "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	mem := got[skills.Memory]
	assert.Equal(t, 57.0, mem.Score)
	assert.Equal(t, 2, mem.Observations)
	assert.Len(t, mem.History, 2)
	assert.Len(t, mem.Evidence, 2)
	assert.Equal(t, maturity.BandForScore(57, 2), mem.Level)
	assert.True(t, mem.UpdatedAt.Equal(t0.Add(time.Hour)))

	other, err := s.LoadScores(ctx, "t1", "s2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func applyOutcome(o quest.Outcome, at time.Time) ApplyFunc {
	return func(current map[skills.Skill]progress.SkillScore) []progress.SkillScore {
		return progress.ApplyAll(current, o, at)
	}
}

func TestRecordOutcome(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	o := quest.Outcome{QuestID: "q1", Type: quest.TypeReflection, Skills: []skills.Skill{skills.Language, skills.Creativity}, Accuracy: 100, NormalizedScore: 90, CompletedAt: t0}

	changed, current, err := s.RecordOutcome(ctx, "t1", "s1", o, applyOutcome(o, t0))
	require.NoError(t, err)
	require.Len(t, changed, 2)
	require.Len(t, current, 2)
	assert.Equal(t, 1, current[skills.Creativity].Observations)

	changed, current, err = s.RecordOutcome(ctx, "t1", "s1", o, applyOutcome(o, t0.Add(time.Hour)))
	require.NoError(t, err)
	require.Len(t, changed, 2)
	assert.Equal(t, 2, current[skills.Language].Observations)

	stored, err := s.LoadScores(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, current, stored)

	all, err := s.ListOutcomes(ctx, "t1", "s1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecordOutcomeRollsBackOnFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	o := quest.Outcome{QuestID: "q1", Type: quest.TypeReflection, Skills: []skills.Skill{skills.Memory}, NormalizedScore: 70, CompletedAt: t0}

	bad := func(map[skills.Skill]progress.SkillScore) []progress.SkillScore {
		// NaN cannot be encoded, so the save fails after the outcome insert.
		return []progress.SkillScore{{Skill: skills.Memory, History: []progress.Point{{At: t0, Score: math.NaN()}}}}
	}
	_, _, err := s.RecordOutcome(ctx, "t1", "s1", o, bad)
	require.Error(t, err)

	all, err := s.ListOutcomes(ctx, "t1", "s1", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, all, "the outcome is rolled back with the scores")
	scores, err := s.LoadScores(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestRecordOutcomeConcurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	o := quest.Outcome{QuestID: "q1", Type: quest.TypeReflection, Skills: []skills.Skill{skills.Creativity}, Accuracy: 100, NormalizedScore: 80, CompletedAt: t0}

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.RecordOutcome(ctx, "t1", "s1", o, applyOutcome(o, t0))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	scores, err := s.LoadScores(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, n, scores[skills.Creativity].Observations)
	assert.Len(t, scores[skills.Creativity].History, n)

	all, err := s.ListOutcomes(ctx, "t1", "s1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func TestOutcomesAppendAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	outcomes := []quest.Outcome{
		{QuestID: "a", Type: quest.TypeMiniGame, Skills: []skills.Skill{skills.Memory}, Accuracy: 70, NormalizedScore: 65, CompletedAt: t0.Add(-10 * 24 * time.Hour)},
		{QuestID: "b", Type: quest.TypeReflection, Skills: []skills.Skill{skills.Language, skills.Values}, Accuracy: 100, NormalizedScore: 90, CompletedAt: t0.Add(-2 * 24 * time.Hour)},
		{QuestID: "c", Type: quest.TypeChoiceScenario, Skills: []skills.Skill{skills.Values}, Accuracy: 50, NormalizedScore: 55, CompletedAt: t0},
	}
	var last int64
	for _, o := range outcomes {
		seq, err := s.AppendOutcome(ctx, "t1", "s1", o)
		require.NoError(t, err)
		assert.Greater(t, seq, last)
		last = seq
	}

	all, err := s.ListOutcomes(ctx, "t1", "s1", time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].QuestID)
	assert.Equal(t, []skills.Skill{skills.Language, skills.Values}, all[1].Skills)
	assert.Equal(t, quest.TypeChoiceScenario, all[2].Type)

	recent, err := s.ListOutcomes(ctx, "t1", "s1", t0.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].QuestID)
}

func TestFocusProfiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g := skills.Grade8
	end := t0.Add(7 * 24 * time.Hour)
	p, err := s.SaveProfile(ctx, classfocus.Profile{
		Tenant:    "t1",
		Teacher:   "ms-rao",
		Grade:     &g,
		Boosts:    classfocus.Boosts{skills.Reasoning: 0.15},
		Active:    true,
		WindowEnd: &end,
		UpdatedAt: t0,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	_, err = s.SaveProfile(ctx, classfocus.Profile{
		Tenant:  "t1",
		Teacher: "ms-rao",
		Boosts:  classfocus.Boosts{skills.Reasoning: 0.5},
	})
	require.Error(t, err, "boost above the cap must be rejected")

	p.Boosts[skills.Memory] = 0.05
	_, err = s.SaveProfile(ctx, p)
	require.NoError(t, err)

	got, err := s.ListProfiles(ctx, "t1", "ms-rao")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
	require.NotNil(t, got[0].Grade)
	assert.Equal(t, skills.Grade8, *got[0].Grade)
	assert.Equal(t, 0.05, got[0].Boosts[skills.Memory])
	assert.Nil(t, got[0].WindowStart)
	require.NotNil(t, got[0].WindowEnd)
	assert.True(t, got[0].WindowEnd.Equal(end))

	active, ok := classfocus.ResolveActive(got, "t1", "ms-rao", skills.Grade8, t0)
	assert.True(t, ok)
	assert.Equal(t, p.ID, active.ID)
}

func TestCareerUnlocksDeduplicated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	unlocks := []careers.Unlock{
		{Career: "research-scientist", Title: "Research Scientist", Reason: "r", Evidence: []string{"e1"}, Confidence: careers.Moderate},
		{Career: "project-manager", Title: "Project Manager", Reason: "r", Evidence: []string{"e2"}, Confidence: careers.Strong},
	}
	added, err := s.RecordUnlocks(ctx, "t1", "s1", unlocks, t0)
	require.NoError(t, err)
	assert.Equal(t, unlocks, added)

	extra := careers.Unlock{Career: "lawyer", Title: "Lawyer", Reason: "r", Confidence: careers.Moderate}
	added, err = s.RecordUnlocks(ctx, "t1", "s1", []careers.Unlock{unlocks[0], extra}, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, added, 1, "only careers inserted by this call come back")
	assert.Equal(t, "lawyer", added[0].Career)
	unlocks = append(unlocks, extra)

	ids, err := s.UnlockedCareers(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"research-scientist", "project-manager", "lawyer"}, ids)

	recs, err := s.ListUnlocks(ctx, "t1", "s1")
	require.NoError(t, err)
	require.Len(t, recs, len(unlocks))
	for _, r := range recs {
		if r.Career == "project-manager" {
			assert.Equal(t, careers.Strong, r.Confidence)
			assert.Equal(t, []string{"e2"}, r.Evidence)
		}
	}
}

func TestReadiness(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LatestReadiness(ctx, "t1", "s1", "Writer")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveReadiness(ctx, "t1", "s1", progress.Readiness{Goal: "Writer", Value: 55, ComputedAt: t0}))
	require.NoError(t, s.SaveReadiness(ctx, "t1", "s1", progress.Readiness{Goal: "Writer", Value: 61.5, ComputedAt: t0.Add(time.Hour)}))
	require.NoError(t, s.SaveReadiness(ctx, "t1", "s1", progress.Readiness{Goal: "Doctor", Value: 40, ComputedAt: t0.Add(2 * time.Hour)}))

	got, err := s.LatestReadiness(ctx, "t1", "s1", "Writer")
	require.NoError(t, err)
	assert.Equal(t, 61.5, got.Value)
	assert.Equal(t, "Writer", got.Goal)
}
