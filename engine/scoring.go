package engine

import "math"

// GinBonus is awarded for going out with zero deadwood, and to the opponent
// on an undercut.
const GinBonus = 25

// ScoreResult is the outcome of a two-party knock or gin.
type ScoreResult struct {
	KnockerScore  int  `json:"knockerScore"`
	OpponentScore int  `json:"opponentScore"`
	Undercut      bool `json:"undercut"`
}

// ScoreKnock computes the point award for a knock from the two deadwood
// totals. A knocker with zero deadwood scores gin: opponent deadwood plus the
// bonus. If the opponent's deadwood is less than or equal to the knocker's,
// the opponent undercuts and takes the difference plus the bonus. Otherwise
// the knocker takes the difference.
func ScoreKnock(knockerDeadwood, opponentDeadwood int) ScoreResult {
	if knockerDeadwood == 0 {
		return ScoreResult{
			KnockerScore: opponentDeadwood + GinBonus,
		}
	}
	if opponentDeadwood <= knockerDeadwood {
		return ScoreResult{
			OpponentScore: (knockerDeadwood - opponentDeadwood) + GinBonus,
			Undercut:      true,
		}
	}
	return ScoreResult{
		KnockerScore: opponentDeadwood - knockerDeadwood,
	}
}

// ScoreDeckExhaustion scores a round that ended with the draw pile empty.
// Every player's hand is analyzed; the minimum deadwood value wins, ties
// allowed. Each winner is awarded round(avg(other players' deadwood) - own
// deadwood), floored at zero; non-winners score nothing. This is the
// N-player generalization of the two-player knock comparison.
func ScoreDeckExhaustion(players []PlayerState) []FinalScore {
	if len(players) == 0 {
		return nil
	}

	deadwood := make([]int, len(players))
	minValue := math.MaxInt
	for i := range players {
		deadwood[i] = Analyze(players[i].Hand).DeadwoodValue
		if deadwood[i] < minValue {
			minValue = deadwood[i]
		}
	}

	scores := make([]FinalScore, len(players))
	for i := range players {
		scores[i] = FinalScore{
			PlayerID:      players[i].ID,
			DeadwoodValue: deadwood[i],
			IsWinner:      deadwood[i] == minValue,
		}
		if !scores[i].IsWinner {
			continue
		}

		othersTotal := 0
		for j := range players {
			if j != i {
				othersTotal += deadwood[j]
			}
		}
		if len(players) > 1 {
			avg := float64(othersTotal) / float64(len(players)-1)
			award := int(math.Round(avg - float64(deadwood[i])))
			if award < 0 {
				award = 0
			}
			scores[i].TotalScore = award
		}
	}
	return scores
}
