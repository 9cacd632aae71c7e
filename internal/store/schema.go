package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column definitions in the shape ent's migrator expects. They
// are applied with schema.NewMigrate, which only ever adds tables, columns
// and indexes.

const (
	planTable      = "plan_records"
	scoreTable     = "skill_scores"
	outcomeTable   = "outcomes"
	focusTable     = "focus_profiles"
	unlockTable    = "career_unlocks"
	readinessTable = "goal_readiness"
)

var (
	planColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "tenant", Type: field.TypeString},
		{Name: "student", Type: field.TypeString},
		{Name: "plan_date", Type: field.TypeString},
		{Name: "mode", Type: field.TypeString},
		{Name: "grade", Type: field.TypeInt},
		{Name: "payload", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
	}
	planRecordsTable = &schema.Table{
		Name:       planTable,
		Columns:    planColumns,
		PrimaryKey: []*schema.Column{planColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "planrecord_tenant_student_plan_date_mode",
				Unique:  true,
				Columns: []*schema.Column{planColumns[1], planColumns[2], planColumns[3], planColumns[4]},
			},
		},
	}

	scoreColumns = []*schema.Column{
		{Name: "tenant", Type: field.TypeString},
		{Name: "student", Type: field.TypeString},
		{Name: "skill", Type: field.TypeString},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "level", Type: field.TypeString},
		{Name: "trend", Type: field.TypeString},
		{Name: "observations", Type: field.TypeInt},
		{Name: "evidence", Type: field.TypeJSON},
		{Name: "history", Type: field.TypeJSON},
		{Name: "updated_at", Type: field.TypeTime},
	}
	skillScoresTable = &schema.Table{
		Name:       scoreTable,
		Columns:    scoreColumns,
		PrimaryKey: []*schema.Column{scoreColumns[0], scoreColumns[1], scoreColumns[2]},
	}

	outcomeColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "seq", Type: field.TypeInt64, Unique: true},
		{Name: "tenant", Type: field.TypeString},
		{Name: "student", Type: field.TypeString},
		{Name: "quest_id", Type: field.TypeString},
		{Name: "quest_type", Type: field.TypeString},
		{Name: "skills", Type: field.TypeJSON},
		{Name: "accuracy", Type: field.TypeInt},
		{Name: "normalized_score", Type: field.TypeInt},
		{Name: "completed_at", Type: field.TypeTime},
	}
	outcomesTable = &schema.Table{
		Name:       outcomeTable,
		Columns:    outcomeColumns,
		PrimaryKey: []*schema.Column{outcomeColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "outcome_tenant_student_completed_at",
				Columns: []*schema.Column{outcomeColumns[2], outcomeColumns[3], outcomeColumns[9]},
			},
		},
	}

	focusColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "tenant", Type: field.TypeString},
		{Name: "teacher", Type: field.TypeString},
		{Name: "grade", Type: field.TypeInt, Nullable: true},
		{Name: "boosts", Type: field.TypeJSON},
		{Name: "active", Type: field.TypeBool},
		{Name: "window_start", Type: field.TypeTime, Nullable: true},
		{Name: "window_end", Type: field.TypeTime, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	focusProfilesTable = &schema.Table{
		Name:       focusTable,
		Columns:    focusColumns,
		PrimaryKey: []*schema.Column{focusColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "focusprofile_tenant_teacher",
				Columns: []*schema.Column{focusColumns[1], focusColumns[2]},
			},
		},
	}

	unlockColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "tenant", Type: field.TypeString},
		{Name: "student", Type: field.TypeString},
		{Name: "career", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "reason", Type: field.TypeString},
		{Name: "evidence", Type: field.TypeJSON},
		{Name: "confidence", Type: field.TypeString},
		{Name: "unlocked_at", Type: field.TypeTime},
	}
	careerUnlocksTable = &schema.Table{
		Name:       unlockTable,
		Columns:    unlockColumns,
		PrimaryKey: []*schema.Column{unlockColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "careerunlock_tenant_student_career",
				Unique:  true,
				Columns: []*schema.Column{unlockColumns[1], unlockColumns[2], unlockColumns[3]},
			},
		},
	}

	readinessColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "tenant", Type: field.TypeString},
		{Name: "student", Type: field.TypeString},
		{Name: "goal", Type: field.TypeString},
		{Name: "value", Type: field.TypeFloat64},
		{Name: "computed_at", Type: field.TypeTime},
	}
	goalReadinessTable = &schema.Table{
		Name:       readinessTable,
		Columns:    readinessColumns,
		PrimaryKey: []*schema.Column{readinessColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "goalreadiness_tenant_student_goal",
				Columns: []*schema.Column{readinessColumns[1], readinessColumns[2], readinessColumns[3]},
			},
		},
	}

	// Tables holds every table the store owns.
	Tables = []*schema.Table{
		planRecordsTable,
		skillScoresTable,
		outcomesTable,
		focusProfilesTable,
		careerUnlocksTable,
		goalReadinessTable,
	}
)

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(false))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
