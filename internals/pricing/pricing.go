// Package pricing turns reported matchweek performance into a per-week
// return and a new quoted price. Everything here is pure math on the
// inputs; persistence and broadcasting live elsewhere.
package pricing

import (
	"math"

	"github.com/footstock/api-server/internals/models"
)

// FloorPrice is the minimum quote a player can ever reach.
const FloorPrice = 50.0

// Goals are weighted by rarity for the position: a goalkeeper scoring is
// worth far more than a forward scoring.
var goalWeight = map[string]float64{
	models.PositionGK:  15,
	models.PositionDEF: 10,
	models.PositionMID: 7,
	models.PositionFWD: 5,
}

const (
	assistWeight      = 5.0
	yellowCardPenalty = 2.0
	redCardPenalty    = 10.0
	didNotPlayReturn  = -5.0
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MatchweekReturn computes the derived return for one matchweek's stats.
// A player with zero minutes gets the fixed negative sentinel regardless
// of every other counter.
func MatchweekReturn(stat models.PlayerStat, position string) float64 {
	if stat.MinutesPlayed == 0 {
		return didNotPlayReturn
	}

	gw, ok := goalWeight[position]
	if !ok {
		gw = goalWeight[models.PositionFWD]
	}
	ret := float64(stat.Goals) * gw
	ret += float64(stat.Assists) * assistWeight

	if stat.CleanSheet {
		switch position {
		case models.PositionGK, models.PositionDEF:
			ret += 8
		case models.PositionMID:
			ret += 3
		}
	}

	switch {
	case stat.MinutesPlayed >= 90:
		ret += 3
	case stat.MinutesPlayed >= 60:
		ret += 2
	case stat.MinutesPlayed >= 30:
		ret += 1
	}

	switch {
	case stat.Rating >= 9:
		ret += 10
	case stat.Rating >= 8:
		ret += 7
	case stat.Rating >= 7:
		ret += 4
	case stat.Rating >= 6:
		ret += 2
	}

	ret -= float64(stat.YellowCards) * yellowCardPenalty
	ret -= float64(stat.RedCards) * redCardPenalty

	return round2(ret)
}

// priceDelta converts a matchweek return into a raw price move, capped at
// 25% of the current price in either direction.
func priceDelta(currentPrice, matchweekReturn float64) float64 {
	changePercent := matchweekReturn * 0.5
	delta := currentPrice * changePercent / 100

	maxDelta := currentPrice * 0.25
	capped := math.Max(-maxDelta, math.Min(maxDelta, delta))

	return round2(capped)
}

// NextPrice applies a matchweek return to the current quote. Popularity
// amplifies the capped move by up to 50%, so a heavily-held player can
// swing past the 25% base cap. The result never goes below FloorPrice.
func NextPrice(currentPrice, matchweekReturn float64, popularity int) (newPrice, changePercent float64) {
	delta := priceDelta(currentPrice, matchweekReturn)

	popularityFactor := math.Min(float64(popularity)/100, 0.5)
	delta *= 1 + popularityFactor

	newPrice = math.Max(FloorPrice, currentPrice+delta)
	changePercent = (newPrice - currentPrice) / currentPrice * 100

	return round2(newPrice), round2(changePercent)
}

// CumulativeReturn recomputes the running total from the full stat history,
// so a resubmitted matchweek replaces rather than double-counts.
func CumulativeReturn(stats []models.PlayerStat) float64 {
	var sum float64
	for _, s := range stats {
		sum += s.ROI
	}
	return round2(sum)
}
