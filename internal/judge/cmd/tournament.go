// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gomori.dev/x/judge/internal/util"
	"gomori.dev/x/judge/pkg/common"
	"gomori.dev/x/judge/pkg/eve/diagnostics"
	"gomori.dev/x/judge/pkg/eve/tournament"
)

func Tournament() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament [flags] player-file...",
		Short: "Run a tournament between gomori bots",
		Args:  cobra.ArbitraryArgs,
		Long: heredoc.Doc(`tournament plays matches between the given bots and prints
			their results. Each argument is a JSON or YAML player file
			with a name, a cmd, and optionally arg, dir, and stderr, or a
			directory of such files. Players may also be listed in the
			config file.

			Every flag can also be set in the config file or through a
			JUDGE_ environment variable, like JUDGE_GAMES=10.

			The tournament stops early when interrupted, or with
			--stop-on-illegal-move after the first forfeit. Matches which
			are already running are always played to the end.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = runTournament(ctx, opts)
			return err
		},
	}

	flags := cmd.Flags()

	flags.String("config", "", "Read the configuration from this YAML or JSON file")

	flags.String("name", "", "Name of the tournament, used for its snapshot (default: its id)")
	flags.String("rules", "gomori", "Rules which will be played")
	flags.String("scheduler", "round-robin", "Scheduler which pairs the players: round-robin or gauntlet")
	flags.IntP("concurrency", "c", 1, "Number of matches played at the same time")
	flags.Int("rounds", 1, "Number of times the whole schedule is played")
	flags.IntP("games", "n", 100, "Number of matches per pair of players")
	flags.Bool("alternate", true, "Replay every deal with swapped seats")
	flags.Int64("seed", 0, "Seed of the deals (default: random)")
	flags.String("deals", "", "Play the deals listed in this file, one seed per line")
	flags.String("deal-order", "sequential", "Order of the deals from --deals: sequential or random")
	flags.Duration("timeout", 10*time.Second, "Time a bot has to answer a request, 0 for no limit")
	flags.BoolP("stop-on-illegal-move", "s", false, "Stop the tournament after the first forfeit")
	flags.Bool("notify-game-over", false, "Tell the bots the result of each match")
	flags.Int("report-interval", 0, "Print the results every this many matches")

	flags.StringP("record-games-to", "r", "", "Record every match as a JSON file in this directory")
	flags.Bool("record", false, "Record every match in ~/gomori-judge/recordings/<id>")
	flags.Bool("snapshot", true, "Keep a snapshot of the results in ~/gomori-judge/results")
	flags.Bool("progress", false, "Show a spinner with the number of finished matches")

	flags.StringSlice("kafka-brokers", nil, "Publish events and results to these kafka brokers")
	flags.String("kafka-topic", "gomori-judge", "Kafka topic to publish to")

	return cmd
}

func runTournament(ctx context.Context, opts options) (tournament.Summary, error) {
	tour, err := tournament.NewTournament(opts.Config, nil)
	if err != nil {
		return tournament.Summary{}, err
	}

	id := tour.ID.String()
	if tour.Config.Name == "" {
		tour.Config.Name = id
	}

	sinks := diagnostics.Multi{diagnostics.LogSink{}}

	if opts.Snapshot {
		common.Setup()
		sinks = append(sinks, diagnostics.Snapshotter{Path: common.ResultFile(tour.Config.Name)})
	}

	directory := opts.RecordGamesTo
	if directory == "" && opts.Record {
		common.Setup()
		directory = common.RecordingDirectory(id)
	}

	if directory != "" {
		recorder, err := diagnostics.NewRecorder(directory)
		if err != nil {
			return tournament.Summary{}, err
		}

		logrus.Infof("Recording games to %s", directory)
		sinks = append(sinks, recorder)
	}

	if len(opts.Kafka.Brokers) > 0 {
		logrus.Infof("Publishing to kafka topic %s", opts.Kafka.Topic)
		sinks = append(sinks, diagnostics.NewKafkaSink(opts.Kafka.Brokers, opts.Kafka.Topic, id))
	}

	if opts.Progress {
		progress := util.NewProgress(len(tour.Schedule()))
		progress.Start()
		sinks = append(sinks, progress)
	}

	defer func() {
		if err := sinks.Close(); err != nil {
			logrus.Errorf("Closing sinks: %v", err)
		}
	}()

	tour.Sink = sinks

	summary, err := tour.Start(ctx)
	switch {
	case errors.Is(err, tournament.ErrHalted):
		logrus.Warnf("Tournament halted after %d of %d matches", summary.Matches, summary.Total)
	case errors.Is(err, context.Canceled):
		logrus.Warnf("Tournament interrupted after %d of %d matches", summary.Matches, summary.Total)
	}

	return summary, err
}
