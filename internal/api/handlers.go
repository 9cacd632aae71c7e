package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillquest/internal/careers"
	"github.com/abhisek/skillquest/internal/classfocus"
	"github.com/abhisek/skillquest/internal/contentgen"
	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/report"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/weekly"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WeekRequest is the body of POST .../week.
type WeekRequest struct {
	Grade         skills.Grade `json:"grade"`
	WeekStart     string       `json:"weekStart"`
	Goal          string       `json:"goal"`
	WeeklyMinutes int          `json:"weeklyMinutes" binding:"min=0"`
}

// RecordRequest is the body of POST .../attempts.
type RecordRequest struct {
	Grade skills.Grade `json:"grade"`
	engine.Attempt
}

// ScoreResponse is the body returned by POST /v1/score.
type ScoreResponse struct {
	Result  contentgen.Result `json:"result"`
	Unlocks []careers.Unlock  `json:"unlocks,omitempty"`
}

// identity reads tenant and student from the path and an optional grade
// from the query.
func identity(c *gin.Context) (engine.Identity, error) {
	id := engine.Identity{Tenant: c.Param("tenant"), Student: c.Param("student")}
	if g := c.Query("grade"); g != "" {
		grade, err := skills.ParseGrade(g)
		if err != nil {
			return engine.Identity{}, err
		}
		id.Grade = grade
	}
	return id, nil
}

// parseDate parses an optional YYYY-MM-DD value. Empty yields the zero
// time, which the engine reads as today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(weekly.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", s)
	}
	return t, nil
}

// GET /v1/tenants/:tenant/students/:student/quests?grade=&date=&teacher=&count=
func (h *Handler) DailyQuests(c *gin.Context) {
	id, err := identity(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_grade", err)
		return
	}
	date, err := parseDate(c.Query("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	in := engine.DailyInput{Date: date, Teacher: c.Query("teacher")}
	if n := c.Query("count"); n != "" {
		count, err := strconv.Atoi(n)
		if err != nil || count < 1 {
			respondError(c, http.StatusBadRequest, "invalid_count", fmt.Errorf("count %q must be a positive integer", n))
			return
		}
		in.Count = count
	}

	rec, err := h.eng.DailyQuests(c.Request.Context(), id, in)
	if err != nil {
		h.respondEngineError(c, "daily quests", err)
		return
	}
	respondOK(c, rec)
}

// POST /v1/tenants/:tenant/students/:student/week
func (h *Handler) WeeklyPlan(c *gin.Context) {
	var req WeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	start, err := parseDate(req.WeekStart)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	id := engine.Identity{Tenant: c.Param("tenant"), Student: c.Param("student"), Grade: req.Grade}

	rec, err := h.eng.WeeklyPlan(c.Request.Context(), id, engine.WeeklyInput{
		WeekStart:     start,
		Goal:          req.Goal,
		WeeklyMinutes: req.WeeklyMinutes,
	})
	if err != nil {
		h.respondEngineError(c, "weekly plan", err)
		return
	}
	respondOK(c, rec)
}

// POST /v1/score grades an attempt without storing anything and lists the
// careers it would unlock for a student with none unlocked yet.
func (h *Handler) Score(c *gin.Context) {
	var a engine.Attempt
	if err := c.ShouldBindJSON(&a); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	r, err := h.eng.ScoreActivity(a)
	if err != nil {
		h.respondEngineError(c, "score", err)
		return
	}
	respondOK(c, ScoreResponse{Result: r, Unlocks: h.eng.Careers(a.Quest, r, nil)})
}

// POST /v1/tenants/:tenant/students/:student/attempts
func (h *Handler) Record(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	id := engine.Identity{Tenant: c.Param("tenant"), Student: c.Param("student"), Grade: req.Grade}

	rec, err := h.eng.Record(c.Request.Context(), id, req.Attempt)
	if err != nil {
		h.respondEngineError(c, "record", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GET /v1/tenants/:tenant/students/:student/insights?grade=&goal=
func (h *Handler) Insights(c *gin.Context) {
	id, err := identity(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_grade", err)
		return
	}
	in, err := h.eng.Insights(c.Request.Context(), id, c.Query("goal"))
	if err != nil {
		h.respondEngineError(c, "insights", err)
		return
	}
	respondOK(c, in)
}

// GET /v1/tenants/:tenant/students/:student/careers
func (h *Handler) Careers(c *gin.Context) {
	id := engine.Identity{Tenant: c.Param("tenant"), Student: c.Param("student")}
	unlocks, err := h.eng.UnlockedCareers(c.Request.Context(), id)
	if err != nil {
		h.respondEngineError(c, "careers", err)
		return
	}
	if unlocks == nil {
		unlocks = []store.UnlockRecord{}
	}
	respondOK(c, gin.H{"unlocks": unlocks})
}

// GET /v1/tenants/:tenant/students/:student/report.xlsx?grade=&week=
//
// The Skills sheet is always present; the Week sheet is added when week
// names a stored weekly plan.
func (h *Handler) Report(c *gin.Context) {
	id, err := identity(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_grade", err)
		return
	}
	ctx := c.Request.Context()

	in, err := h.eng.Insights(ctx, id, "")
	if err != nil {
		h.respondEngineError(c, "report", err)
		return
	}
	rin := report.Input{Student: id.Student, Skills: in.Skills}

	if w := c.Query("week"); w != "" {
		start, err := parseDate(w)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		rec, err := h.eng.StoredPlan(ctx, id, store.ModeWeekly, start)
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(c, http.StatusNotFound, "plan_not_found", fmt.Errorf("no weekly plan starts on %s", w))
			return
		case err != nil:
			h.respondEngineError(c, "report", err)
			return
		}
		rin.Plan = rec.Weekly
	}

	if rin.Plan == nil && len(rin.Skills) == 0 {
		respondError(c, http.StatusNotFound, "no_data", errors.New("student has no scores and no plan was requested"))
		return
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, rin); err != nil {
		h.respondEngineError(c, "report", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, id.Student))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// PUT /v1/tenants/:tenant/teachers/:teacher/focus
func (h *Handler) SaveFocus(c *gin.Context) {
	var p classfocus.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	p.Tenant = c.Param("tenant")
	p.Teacher = c.Param("teacher")

	saved, err := h.eng.SaveFocusProfile(c.Request.Context(), p)
	if err != nil {
		h.respondEngineError(c, "save focus", err)
		return
	}
	respondOK(c, saved)
}

// GET /v1/tenants/:tenant/teachers/:teacher/focus?grade=
func (h *Handler) ActiveFocus(c *gin.Context) {
	grade := skills.DefaultGrade
	if g := c.Query("grade"); g != "" {
		parsed, err := skills.ParseGrade(g)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_grade", err)
			return
		}
		grade = parsed
	}
	p, ok, err := h.eng.ActiveFocus(c.Request.Context(), c.Param("tenant"), c.Param("teacher"), grade)
	if err != nil {
		h.respondEngineError(c, "active focus", err)
		return
	}
	if !ok {
		respondError(c, http.StatusNotFound, "no_active_profile", errors.New("no focus profile is in effect"))
		return
	}
	respondOK(c, p)
}
