package tournament

import (
	"fmt"
	"strings"

	"gomori.dev/x/judge/pkg/eve/match"
	"gomori.dev/x/judge/pkg/eve/stats"
)

const reportWidth = 74

// Report prints the summary as a table of players.
func (tour *Tournament) Report(summary Summary) {
	out := tour.Output
	bar := strings.Repeat("═", reportWidth)

	fmt.Fprintf(out, "╔%s╗\n", bar)
	fmt.Fprintf(out, "║ %3s %-15s   %4s %4s %5s   %4s %4s %4s   %4s %4s   %5s ║\n",
		"", "Name", "Elo", "Err", "LOS", "Wins", "Loss", "Draw", "Forf", "Abrt", "Total")
	fmt.Fprintf(out, "╠%s╣\n", bar)

	for i, record := range summary.Players {
		wins, draws, losses := record.Scored()
		elo, margin := record.Elo()
		los := stats.LOS(wins, losses) * 100

		format := "║ %2d. %-15s   %+4.0f %4.0f %4.0f%%   %4d %4d %4d   %4d %4d   %5d ║\n"
		if tour.Config.Scheduler == "gauntlet" && i == 0 {
			if elo >= 0 {
				format = "║ \x1b[32m%2d. %-15s   %+4.0f %4.0f %4.0f%%   %4d %4d %4d   %4d %4d   %5d\x1b[0m ║\n"
			} else {
				format = "║ \x1b[31m%2d. %-15s   %+4.0f %4.0f %4.0f%%   %4d %4d %4d   %4d %4d   %5d\x1b[0m ║\n"
			}
		}

		fmt.Fprintf(out,
			format,
			i+1, truncate(record.Name, 15),
			elo, margin, los,
			wins, losses, draws,
			record.ForfeitLosses, record.Aborts,
			wins+draws+losses+record.Aborts)
	}

	fmt.Fprintf(out, "╠%s╣\n", bar)

	status := fmt.Sprintf("%d/%d matches", summary.Matches, summary.Total)
	if summary.Halted {
		status += ", halted"
	}

	var terminations []string
	for termination := match.Termination(0); termination < match.TerminationN; termination++ {
		if n := summary.Terminations[termination]; n > 0 {
			terminations = append(terminations, fmt.Sprintf("%s %d", termination, n))
		}
	}

	fmt.Fprintf(out, "║ %-*s ║\n", reportWidth-2, status)
	fmt.Fprintf(out, "║ %-*s ║\n", reportWidth-2, fmt.Sprintf(
		"W %d  D %d  forfeits %d  aborts %d", summary.Wins, summary.Draws, summary.Forfeits, summary.Aborts))
	if len(terminations) > 0 {
		fmt.Fprintf(out, "║ %-*s ║\n", reportWidth-2, strings.Join(terminations, ", "))
	}
	fmt.Fprintf(out, "╚%s╝\n", bar)
}

func truncate(name string, n int) string {
	runes := []rune(name)
	if len(runes) <= n {
		return name
	}

	return string(runes[:n])
}
