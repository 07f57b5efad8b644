package stats

import "math"

// PentaElo calculates the best fit elo for the given game pair results using a
// pentanomial model. A pair is two matches with the same deal and swapped
// seats, and is classified by the points the player scored in it: ll (0),
// ld (1), dd (2, a draw pair or a win and a loss), wd (3), and ww (4). It
// also calculates the maximum and minimum values of that elo estimate (the
// error bounds) with p < 0.05.
func PentaElo(lls, lds, dds, wds, wws int) (muMin float64, mu float64, muMax float64) {
	N := float64(lls+lds+dds+wds+wws) + 2.5 // total number of pairs

	ll := (float64(lls) + 0.5) / N // measured loss-loss probability
	ld := (float64(lds) + 0.5) / N // measured loss-draw probability
	dd := (float64(dds) + 0.5) / N // measured win-loss/draw-draw probability
	wd := (float64(wds) + 0.5) / N // measured win-draw probability
	ww := (float64(wws) + 0.5) / N // measured win-win probability

	// empirical mean of random variable
	mu = ww + 0.75*wd + 0.5*dd + 0.25*ld

	// standard deviation of the random variable
	sigma := math.Sqrt(
		ww*math.Pow(1-mu, 2)+
			wd*math.Pow(0.75-mu, 2)+
			dd*math.Pow(0.50-mu, 2)+
			ld*math.Pow(0.25-mu, 2)+
			ll*math.Pow(0.00-mu, 2),
	) / math.Sqrt(N)

	muMax = mu + phiInv(0.975)*sigma // upper bound
	muMin = mu + phiInv(0.025)*sigma // lower bound

	return clampElo(muMin), clampElo(mu), clampElo(muMax)
}
