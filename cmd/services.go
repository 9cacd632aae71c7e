package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/skillquest/internal/cache"
	"github.com/abhisek/skillquest/internal/config"
	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/expectation"
	"github.com/abhisek/skillquest/internal/goals"
	"github.com/abhisek/skillquest/internal/logger"
	"github.com/abhisek/skillquest/internal/narrative"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/store/postgres"
	"github.com/spf13/cobra"
)

// services is everything a command needs, built from config and flags.
type services struct {
	cfg    config.Config
	log    *logger.Logger
	engine *engine.Engine
	tables tableSet

	closers []func()
}

type tableSet struct {
	expectations *expectation.Table
	goals        *goals.Table
}

func (svc *services) Close() {
	for i := len(svc.closers) - 1; i >= 0; i-- {
		svc.closers[i]()
	}
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("tables"); v != "" {
		cfg.TablesDir = v
	}
	if v, _ := cmd.Flags().GetString("log"); v != "" {
		cfg.LogMode = v
	}
	return cfg, cfg.Validate()
}

func loadTables(dir string) (tableSet, error) {
	exp, err := expectation.LoadDir(dir)
	if err != nil {
		return tableSet{}, fmt.Errorf("load expectations: %w", err)
	}
	gt, err := goals.LoadDir(dir)
	if err != nil {
		return tableSet{}, fmt.Errorf("load goals: %w", err)
	}
	return tableSet{expectations: exp, goals: gt}, nil
}

// openServices opens storage and builds the engine. Plans and career
// unlocks move to Postgres when SKILLQUEST_POSTGRES_URL is set, and plan
// reads go through Redis when SKILLQUEST_REDIS_URL is set.
func openServices(cmd *cobra.Command) (*services, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	svc := &services{cfg: cfg, log: log}
	svc.closers = append(svc.closers, log.Sync)

	fail := func(err error) (*services, error) {
		svc.Close()
		return nil, err
	}

	svc.tables, err = loadTables(cfg.TablesDir)
	if err != nil {
		return fail(err)
	}

	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return fail(fmt.Errorf("resolve DB path: %w", err))
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fail(fmt.Errorf("open store: %w", err))
	}
	svc.closers = append(svc.closers, func() { st.Close() })

	deps := engine.Deps{
		Plans:        st,
		Scores:       st,
		Outcomes:     st,
		Focus:        st,
		Careers:      st,
		Readiness:    st,
		Expectations: svc.tables.expectations,
		Goals:        svc.tables.goals,
		Log:          log,
	}

	if cfg.PostgresURL != "" {
		pg, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return fail(err)
		}
		svc.closers = append(svc.closers, pg.Close)
		deps.Plans = pg
		deps.Careers = pg
		log.Info("plans and careers stored in postgres")
	}

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			// Plans still work without the cache.
			log.Warn("plan cache unavailable", "error", err)
		} else {
			svc.closers = append(svc.closers, func() { client.Close() })
			deps.Plans = cache.NewPlanCache(deps.Plans, client, cfg.CacheTTL, log)
		}
	}

	backend, err := narrative.New(ctx, cfg.Narrative, log)
	if err != nil {
		return fail(err)
	}
	composer := narrative.NewComposer(backend, log)
	composer.Timeout = cfg.Narrative.Timeout
	deps.Narrator = composer

	svc.engine, err = engine.New(cfg.EngineConfig(), deps)
	if err != nil {
		return fail(err)
	}
	return svc, nil
}

// studentFlags registers the flags every per-student command takes.
func studentFlags(cmd *cobra.Command) {
	cmd.Flags().String("student", "", "Student id (required)")
	cmd.Flags().String("grade", "", "Grade (6, 7 or 8); defaults to 8")
	_ = cmd.MarkFlagRequired("student")
}

// identityFrom reads --tenant, --student and --grade.
func identityFrom(cmd *cobra.Command) (engine.Identity, error) {
	tenant, _ := cmd.Flags().GetString("tenant")
	student, _ := cmd.Flags().GetString("student")
	id := engine.Identity{Tenant: tenant, Student: student}
	if g, _ := cmd.Flags().GetString("grade"); g != "" {
		grade, err := skills.ParseGrade(g)
		if err != nil {
			return engine.Identity{}, err
		}
		id.Grade = grade
	}
	return id, id.Validate()
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func skillList(ss []skills.Skill) string {
	names := make([]string, len(ss))
	for i, s := range ss {
		names[i] = s.DisplayName()
	}
	return strings.Join(names, ", ")
}
