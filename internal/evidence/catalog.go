package evidence

import "github.com/abhisek/skillquest/internal/skills"

// Catalog returns the built-in talent signal definitions.
func Catalog() []Definition {
	return []Definition{
		{
			ID:                 "pattern-thinker",
			Name:               "Pattern thinker",
			Skills:             []skills.Skill{skills.Reasoning},
			MinObservations:    5,
			MinContexts:        2,
			StabilityThreshold: 0.6,
			SupportActions:     []string{
				"Try logic puzzles or strategy board games together.",
				"Ask them to explain how they found an answer.",
			},
		},
		{
			ID:                 "inventive-mind",
			Name:               "Inventive mind",
			Skills:             []skills.Skill{skills.Creativity},
			MinObservations:    4,
			MinContexts:        2,
			StabilityThreshold: 0.5,
			SupportActions:     []string{
				"Leave open-ended building or drawing materials within reach.",
			},
		},
		{
			ID:                 "storyteller",
			Name:               "Storyteller",
			Skills:             []skills.Skill{skills.Language},
			MinObservations:    5,
			MinContexts:        2,
			StabilityThreshold: 0.6,
			SupportActions:     []string{
				"Read together and take turns retelling the story.",
			},
		},
		{
			ID:                 "sharp-recall",
			Name:               "Sharp recall",
			Skills:             []skills.Skill{skills.Memory},
			MinObservations:    5,
			MinContexts:        1,
			StabilityThreshold: 0.7,
			SupportActions:     []string{
				"Play memory card games or recall the day's events at dinner.",
			},
		},
		{
			ID:                 "steady-focus",
			Name:               "Steady focus",
			Skills:             []skills.Skill{skills.Attention},
			MinObservations:    6,
			MinContexts:        2,
			StabilityThreshold: 0.7,
			SupportActions:     []string{
				"Protect a short, distraction-free work time each day.",
			},
		},
		{
			ID:                 "natural-planner",
			Name:               "Natural planner",
			Skills:             []skills.Skill{skills.Planning, skills.Metacognition},
			MinObservations:    5,
			MinContexts:        2,
			StabilityThreshold: 0.6,
			SupportActions:     []string{
				"Let them plan a family outing or a weekend schedule.",
			},
		},
		{
			ID:                 "caring-teammate",
			Name:               "Caring teammate",
			Skills:             []skills.Skill{skills.SocialEmotional},
			MinObservations:    4,
			MinContexts:        2,
			StabilityThreshold: 0.5,
			SupportActions:     []string{
				"Talk about feelings in stories and films you watch together.",
			},
		},
		{
			ID:                 "fair-minded",
			Name:               "Fair-minded",
			Skills:             []skills.Skill{skills.Values},
			MinObservations:    4,
			MinContexts:        2,
			StabilityThreshold: 0.5,
			SupportActions:     []string{
				"Discuss everyday dilemmas and ask what would be fair.",
			},
		},
	}
}
