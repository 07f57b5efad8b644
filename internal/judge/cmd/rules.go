package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gomori.dev/x/judge/pkg/eve/match/games"
	"gomori.dev/x/judge/pkg/eve/tournament/schedule"
)

func Rules() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Lists the available rules and schedulers",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "\x1b[32mRules\x1b[0m:")
			for _, name := range games.Names() {
				fmt.Fprintf(out, "- %s\n", name)
			}

			fmt.Fprintln(out, "\x1b[32mSchedulers\x1b[0m:")
			for _, name := range schedule.Names() {
				fmt.Fprintf(out, "- %s\n", name)
			}

			return nil
		},
	}
}
