package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func rule(n int) {
	fmt.Println(strings.Repeat("─", n))
}

func heading(s string) {
	fmt.Println(theme.Title.Render(s))
}

const questRowFormat = "%-3s  %-16s  %-34s  %-36s  %4s\n"

func printQuestHeader() {
	fmt.Printf(questRowFormat, "#", "Type", "Title", "Skills", "Min")
	rule(101)
}

func printQuestRow(n int, q quest.Quest) {
	fmt.Printf(questRowFormat,
		fmt.Sprint(n), q.Type().DisplayName(), truncate(q.Title, 34),
		truncate(skillList(q.Skills()), 36), fmt.Sprint(q.EstimatedMinutes))
}
