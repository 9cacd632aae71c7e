package cmd

import (
	"strings"
	"testing"

	"github.com/abhisek/skillquest/internal/skills"
	"github.com/spf13/cobra"
)

func TestParseBoosts(t *testing.T) {
	b, err := parseBoosts([]string{"CREATIVITY=0.2", "language=0.1"})
	if err != nil {
		t.Fatal(err)
	}
	if b[skills.Creativity] != 0.2 || b[skills.Language] != 0.1 {
		t.Errorf("parseBoosts = %v", b)
	}

	for _, raw := range []string{"CREATIVITY", "NOPE=0.1", "CREATIVITY=lots"} {
		if _, err := parseBoosts([]string{raw}); err == nil {
			t.Errorf("parseBoosts(%q) succeeded, want error", raw)
		}
	}
}

func TestIdentityFrom(t *testing.T) {
	c := &cobra.Command{}
	c.Flags().String("tenant", "school-1", "")
	studentFlags(c)

	if _, err := identityFrom(c); err == nil {
		t.Error("identityFrom without a student succeeded")
	}

	_ = c.Flags().Set("student", "s-1")
	_ = c.Flags().Set("grade", "grade-7")
	id, err := identityFrom(c)
	if err != nil {
		t.Fatal(err)
	}
	if id.Tenant != "school-1" || id.Student != "s-1" || id.Grade != skills.Grade7 {
		t.Errorf("identityFrom = %+v", id)
	}

	_ = c.Flags().Set("grade", "3")
	if _, err := identityFrom(c); err == nil {
		t.Error("identityFrom accepted grade 3")
	}
}

func TestDateFlag(t *testing.T) {
	c := &cobra.Command{}
	c.Flags().String("date", "", "")

	d, err := dateFlag(c, "date")
	if err != nil || !d.IsZero() {
		t.Errorf("empty date = %v, %v; want zero, nil", d, err)
	}

	_ = c.Flags().Set("date", "2026-03-02")
	d, err = dateFlag(c, "date")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Format("2006-01-02"); got != "2026-03-02" {
		t.Errorf("dateFlag = %s, want 2026-03-02", got)
	}

	_ = c.Flags().Set("date", "03/02/2026")
	if _, err := dateFlag(c, "date"); err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Errorf("bad date error = %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a much longer title", 10); got != "a much ..." {
		t.Errorf("truncate = %q, want %q", got, "a much ...")
	}
}
