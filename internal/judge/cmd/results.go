package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"gomori.dev/x/judge/pkg/common"
	"gomori.dev/x/judge/pkg/eve/diagnostics"
	"gomori.dev/x/judge/pkg/eve/tournament"
)

func Results() *cobra.Command {
	return &cobra.Command{
		Use:   "results tournament-name",
		Short: "Show the results of a past tournament",
		Args:  cobra.ExactArgs(1),
		Long: heredoc.Doc(`results prints the table of a tournament from its snapshot
			in ~/gomori-judge/results. Snapshots are updated while a
			tournament runs, so this also shows the progress of a
			tournament which is still running or was interrupted.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := diagnostics.ReadSnapshot(common.ResultFile(args[0]))
			if err != nil {
				return err
			}

			tour := tournament.Tournament{Output: cmd.OutOrStdout()}
			tour.Report(summary)
			return nil
		},
	}
}
