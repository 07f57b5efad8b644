// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
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

// Package diagnostics implements the sinks which receive a tournament's
// wire traffic, results, and statistics.
package diagnostics

import (
	"io"

	"go.uber.org/multierr"

	"gomori.dev/x/judge/pkg/eve/match"
	"gomori.dev/x/judge/pkg/eve/tournament"
)

// Sink is a match.Sink which may also want a tournament's results and
// statistics, and may hold resources which need to be released.
type Sink interface {
	match.Sink
	tournament.Reporter
	tournament.ResultSink
	io.Closer
}

// Multi fans every call out to all of its sinks. Results and summaries
// only go to the sinks which implement the respective interfaces.
type Multi []match.Sink

var _ Sink = Multi(nil)

func (multi Multi) Trace(event match.Event) {
	for _, sink := range multi {
		sink.Trace(event)
	}
}

func (multi Multi) Report(summary tournament.Summary) {
	for _, sink := range multi {
		if reporter, ok := sink.(tournament.Reporter); ok {
			reporter.Report(summary)
		}
	}
}

func (multi Multi) Finished(result match.Result) {
	for _, sink := range multi {
		if results, ok := sink.(tournament.ResultSink); ok {
			results.Finished(result)
		}
	}
}

// Close closes every sink which is an io.Closer, and returns all of their
// errors combined.
func (multi Multi) Close() error {
	var err error
	for _, sink := range multi {
		if closer, ok := sink.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}

	return err
}
