package pipeline

import (
	"fmt"
	"strings"
	"time"

	"dmworker/internal/formatter"
)

// Summary renders the per-file results followed by the run counters.
func Summary(stats RunStats) string {
	rows := make([][]string, 0, len(stats.Results))

	for _, r := range stats.Results {
		detail := ""

		switch {
		case r.Step != "":
			detail = "step " + r.Step
		case r.Kind != "":
			detail = r.Kind
		}

		rows = append(rows, []string{r.Name, string(r.Status), detail})
	}

	var sb strings.Builder

	if len(rows) > 0 {
		sb.WriteString(formatter.Table([]string{"File", "Status", "Detail"}, rows))
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "Total: %d, processed: %d, failed: %d (step failures: %d) in %v",
		stats.Total, stats.Processed, stats.Failed, stats.StepFailures, stats.Duration.Round(time.Millisecond))

	return sb.String()
}
