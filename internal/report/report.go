// Package report exports weekly plans and skill summaries as XLSX
// workbooks for teachers.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/weekly"
)

// Sheet names.
const (
	WeekSheet   = "Week"
	SkillsSheet = "Skills"
)

var (
	weekHeader   = []any{"Date", "Quest", "Type", "Title", "Skills", "Minutes"}
	skillsHeader = []any{"Skill", "Score", "Band", "Expected", "Comparison", "Trend", "Level", "XP"}
)

// Input is what a workbook is built from. Either part may be empty, but
// not both.
type Input struct {
	Student string
	Plan    *weekly.Plan
	Skills  []engine.SkillView
}

// Build returns a workbook with a Week sheet when a plan is given and a
// Skills sheet when skill views are given. The caller closes the file.
func Build(in Input) (*excelize.File, error) {
	if in.Plan == nil && len(in.Skills) == 0 {
		return nil, errors.New("report has no plan and no skills")
	}

	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	var sheets []string
	if in.Plan != nil {
		if err := writeWeek(f, *in.Plan, header); err != nil {
			f.Close()
			return nil, err
		}
		sheets = append(sheets, WeekSheet)
	}
	if len(in.Skills) > 0 {
		if err := writeSkills(f, in.Skills, header); err != nil {
			f.Close()
			return nil, err
		}
		sheets = append(sheets, SkillsSheet)
	}

	// NewFile starts with a default sheet; replace it.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("find sheet %s: %w", sheets[0], err)
	}
	f.SetActiveSheet(idx)

	if in.Student != "" {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:   "Skill report for " + in.Student,
			Creator: "skillquest",
		}); err != nil {
			f.Close()
			return nil, fmt.Errorf("set properties: %w", err)
		}
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, in Input) error {
	f, err := Build(in)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeWeek(f *excelize.File, p weekly.Plan, header int) error {
	if _, err := f.NewSheet(WeekSheet); err != nil {
		return fmt.Errorf("create week sheet: %w", err)
	}
	rows := [][]any{weekHeader}
	for _, d := range p.Days {
		for _, q := range d.Quests {
			rows = append(rows, []any{
				d.Date, q.ID, q.Type().DisplayName(), q.Title, skillNames(q), q.EstimatedMinutes,
			})
		}
	}
	rows = append(rows,
		[]any{},
		[]any{"Goal", p.Goal},
		[]any{"Grade", int(p.Grade)},
		[]any{"Total minutes", p.TotalMinutes()},
	)
	if err := writeRows(f, WeekSheet, rows, header); err != nil {
		return err
	}
	return f.SetColWidth(WeekSheet, "D", "E", 40)
}

func writeSkills(f *excelize.File, views []engine.SkillView, header int) error {
	if _, err := f.NewSheet(SkillsSheet); err != nil {
		return fmt.Errorf("create skills sheet: %w", err)
	}
	rows := [][]any{skillsHeader}
	for _, v := range views {
		rows = append(rows, []any{
			v.Skill.DisplayName(),
			v.Score,
			v.Guide.Band.DisplayName(),
			v.Guide.Expected.DisplayName(),
			v.Guide.Comparison.Label(),
			string(v.Trend),
			v.Student.Level,
			v.Student.XP,
		})
	}
	if err := writeRows(f, SkillsSheet, rows, header); err != nil {
		return err
	}
	return f.SetColWidth(SkillsSheet, "A", "A", 24)
}

func writeRows(f *excelize.File, sheet string, rows [][]any, header int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, header)
}

func skillNames(q quest.Quest) string {
	ss := q.Skills()
	names := make([]string, len(ss))
	for i, s := range ss {
		names[i] = s.DisplayName()
	}
	return strings.Join(names, ", ")
}
