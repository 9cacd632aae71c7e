package report

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/goals"
	"github.com/abhisek/skillquest/internal/maturity"
	"github.com/abhisek/skillquest/internal/progress"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/weekly"
)

func samplePlan(t *testing.T) weekly.Plan {
	t.Helper()
	gt, err := goals.Default()
	require.NoError(t, err)
	p := weekly.Planner{Goals: gt, Deterministic: true}
	return p.Plan(weekly.Request{
		Student:       "s-1",
		GoalTitle:     "Artist",
		WeeklyMinutes: 70,
		WeekStart:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Grade:         skills.Grade7,
	})
}

func sampleSkills() []engine.SkillView {
	return []engine.SkillView{{
		Skill:   skills.Creativity,
		Score:   62.5,
		Trend:   progress.Improving,
		Student: maturity.StudentView{Level: 3, Title: "Explorer", XP: 120},
		Guide:   maturity.GuideView{Band: maturity.Consistent, Expected: maturity.Practicing, Comparison: maturity.AboveExpected},
	}}
}

func open(t *testing.T, in Input) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteBothSheets(t *testing.T) {
	plan := samplePlan(t)
	f := open(t, Input{Student: "s-1", Plan: &plan, Skills: sampleSkills()})

	assert.Equal(t, []string{WeekSheet, SkillsSheet}, f.GetSheetList())

	rows, err := f.GetRows(WeekSheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Date", "Quest", "Type", "Title", "Skills", "Minutes"}, rows[0])
	// Header, one row per quest, a blank row and three summary rows.
	assert.Len(t, rows, 1+plan.TotalQuests()+1+3)
	assert.Equal(t, plan.Days[0].Date, rows[1][0])

	goal, err := f.GetCellValue(WeekSheet, "B"+strconv.Itoa(plan.TotalQuests()+3))
	require.NoError(t, err)
	assert.Equal(t, "Artist", goal)

	skillRows, err := f.GetRows(SkillsSheet)
	require.NoError(t, err)
	require.Len(t, skillRows, 2)
	assert.Equal(t, "Creativity", skillRows[1][0])
	assert.Equal(t, "Consistent", skillRows[1][2])
	assert.Equal(t, "Practicing", skillRows[1][3])
	assert.Equal(t, "Ahead of typical for grade", skillRows[1][4])
}

func TestWriteSkillsOnly(t *testing.T) {
	f := open(t, Input{Skills: sampleSkills()})
	assert.Equal(t, []string{SkillsSheet}, f.GetSheetList())
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	_, err := Build(Input{Student: "s-1"})
	assert.Error(t, err)
}
