// Package careers decides when an activity's result unlocks a career
// profile for a student.
package careers

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillquest/internal/skills"
)

// Career is a career profile and the evidence needed to unlock it.
type Career struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Required lists the skills an activity must exercise, each with at
	// least MinStrength.
	Required    []skills.Skill `json:"required"`
	MinStrength float64        `json:"minStrength"`

	// MinAccuracy and MinScore are the performance thresholds.
	MinAccuracy int `json:"minAccuracy"`
	MinScore    int `json:"minScore"`
}

// catalog is the built-in career list, validated at init.
var catalog []Career

func init() {
	catalog = seedCareers()
	if err := validateCatalog(catalog); err != nil {
		panic(fmt.Sprintf("careers: invalid built-in catalog: %v", err))
	}
}

// Catalog returns a copy of the built-in careers in display order.
func Catalog() []Career {
	return append([]Career(nil), catalog...)
}

// ByID returns the built-in career with id.
func ByID(id string) (Career, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Career{}, false
}

// validateCatalog reports every structural problem in one error.
func validateCatalog(cs []Career) error {
	var errs []string
	seen := make(map[string]bool, len(cs))
	for _, c := range cs {
		if c.ID == "" {
			errs = append(errs, fmt.Sprintf("career %q has no id", c.Title))
			continue
		}
		if seen[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate career id %q", c.ID))
		}
		seen[c.ID] = true
		if len(c.Required) == 0 {
			errs = append(errs, fmt.Sprintf("career %q requires no skills", c.ID))
		}
		for _, s := range c.Required {
			if !s.Valid() {
				errs = append(errs, fmt.Sprintf("career %q requires unknown skill %q", c.ID, s))
			}
		}
		if c.MinStrength <= 0 || c.MinStrength > 1 {
			errs = append(errs, fmt.Sprintf("career %q min strength %.2f outside (0,1]", c.ID, c.MinStrength))
		}
		if c.MinAccuracy < 0 || c.MinAccuracy > 100 || c.MinScore < 0 || c.MinScore > 100 {
			errs = append(errs, fmt.Sprintf("career %q thresholds outside [0,100]", c.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func seedCareers() []Career {
	return []Career{
		{
			ID:          "software-engineer",
			Title:       "Software Engineer",
			Description: "Designs and builds the programs people use every day.",
			Required:    []skills.Skill{skills.Reasoning, skills.Planning},
			MinStrength: 1, MinAccuracy: 80, MinScore: 70,
		},
		{
			ID:          "research-scientist",
			Title:       "Research Scientist",
			Description: "Asks careful questions and tests ideas with experiments.",
			Required:    []skills.Skill{skills.Reasoning, skills.Metacognition},
			MinStrength: 1, MinAccuracy: 80, MinScore: 70,
		},
		{
			ID:          "lawyer",
			Title:       "Lawyer",
			Description: "Builds arguments and stands up for fair outcomes.",
			Required:    []skills.Skill{skills.Language, skills.Values},
			MinStrength: 0.5, MinAccuracy: 75, MinScore: 70,
		},
		{
			ID:          "journalist",
			Title:       "Journalist",
			Description: "Finds stories and tells them clearly.",
			Required:    []skills.Skill{skills.Language, skills.Creativity},
			MinStrength: 1, MinAccuracy: 70, MinScore: 65,
		},
		{
			ID:          "product-designer",
			Title:       "Product Designer",
			Description: "Imagines better tools and shapes how they work.",
			Required:    []skills.Skill{skills.Creativity, skills.Reasoning},
			MinStrength: 0.5, MinAccuracy: 70, MinScore: 65,
		},
		{
			ID:          "social-worker",
			Title:       "Social Worker",
			Description: "Helps people and communities through hard times.",
			Required:    []skills.Skill{skills.Values, skills.SocialEmotional},
			MinStrength: 1, MinAccuracy: 70, MinScore: 65,
		},
		{
			ID:          "air-traffic-controller",
			Title:       "Air Traffic Controller",
			Description: "Keeps many moving parts safe at once.",
			Required:    []skills.Skill{skills.Attention},
			MinStrength: 1, MinAccuracy: 90, MinScore: 80,
		},
		{
			ID:          "project-manager",
			Title:       "Project Manager",
			Description: "Turns big goals into plans a team can follow.",
			Required:    []skills.Skill{skills.Planning, skills.Metacognition},
			MinStrength: 0.5, MinAccuracy: 75, MinScore: 70,
		},
		{
			ID:          "archivist",
			Title:       "Archivist",
			Description: "Keeps knowledge organised and easy to find.",
			Required:    []skills.Skill{skills.Memory, skills.Attention},
			MinStrength: 0.5, MinAccuracy: 80, MinScore: 70,
		},
	}
}
