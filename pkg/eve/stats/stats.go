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

// Package stats estimates elo differences from match results. Results are
// always counted from the point of view of the player being rated.
package stats

import "math"

// scoreEpsilon keeps expected scores away from zero and one, which have no
// finite elo. 1-scoreEpsilon is exact.
const scoreEpsilon = 1.0 / (1 << 20)

// clampElo converts an expected score into an elo difference. Scores are
// clamped into [scoreEpsilon, 1-scoreEpsilon] first, so the conversion is
// monotonic and a bound never crosses its estimate.
func clampElo(x float64) float64 {
	x = math.Min(math.Max(x, scoreEpsilon), 1-scoreEpsilon)
	return 400 * (math.Log10(x) - math.Log10(1-x))
}

// phiInv is the quantile function of the standard normal distribution.
func phiInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// LOS returns the likelihood of superiority of a player with the given
// number of wins and losses. Draws carry no information about it.
func LOS(ws, ls int) float64 {
	if ws+ls == 0 {
		return 0.5
	}

	return 0.5 * (1 + math.Erf(float64(ws-ls)/math.Sqrt(2*float64(ws+ls))))
}
