package engine

import (
	"testing"

	"github.com/google/uuid"
)

func TestScoreKnock(t *testing.T) {
	cases := []struct {
		name             string
		knockerDeadwood  int
		opponentDeadwood int
		want             ScoreResult
	}{
		{"gin", 0, 14, ScoreResult{KnockerScore: 39, OpponentScore: 0, Undercut: false}},
		{"undercut", 8, 5, ScoreResult{KnockerScore: 0, OpponentScore: 28, Undercut: true}},
		{"undercut on equal deadwood", 7, 7, ScoreResult{KnockerScore: 0, OpponentScore: 25, Undercut: true}},
		{"plain knock", 6, 14, ScoreResult{KnockerScore: 8, OpponentScore: 0, Undercut: false}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreKnock(tc.knockerDeadwood, tc.opponentDeadwood)
			if got != tc.want {
				t.Errorf("ScoreKnock(%d, %d) = %+v, want %+v", tc.knockerDeadwood, tc.opponentDeadwood, got, tc.want)
			}
		})
	}
}

// deadwoodPlayer builds a player whose hand analyzes to the given deadwood
// cards, with no melds possible.
func deadwoodPlayer(ranks ...Rank) PlayerState {
	suits := []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}
	p := PlayerState{ID: uuid.New()}
	for i, r := range ranks {
		p.Hand = append(p.Hand, mkcard(r, suits[i%len(suits)]))
	}
	return p
}

func TestScoreDeckExhaustion(t *testing.T) {
	players := []PlayerState{
		deadwoodPlayer(RankTwo),            // deadwood 2
		deadwoodPlayer(RankKing),           // deadwood 10
		deadwoodPlayer(RankThree, RankTwo), // deadwood 5
	}
	scores := ScoreDeckExhaustion(players)
	if len(scores) != 3 {
		t.Fatalf("scores = %d, want 3", len(scores))
	}

	// Lowest deadwood wins, award = round(avg(others) - own).
	if !scores[0].IsWinner {
		t.Error("player 0 should win with lowest deadwood")
	}
	if scores[0].TotalScore != 6 { // round((10+5)/2 - 2) = round(5.5)
		t.Errorf("winner score = %d, want 6", scores[0].TotalScore)
	}
	for i := 1; i < 3; i++ {
		if scores[i].IsWinner {
			t.Errorf("player %d marked winner", i)
		}
		if scores[i].TotalScore != 0 {
			t.Errorf("player %d score = %d, want 0", i, scores[i].TotalScore)
		}
	}
	if scores[1].DeadwoodValue != 10 || scores[2].DeadwoodValue != 5 {
		t.Errorf("deadwood values = %d/%d, want 10/5", scores[1].DeadwoodValue, scores[2].DeadwoodValue)
	}
}

func TestScoreDeckExhaustionTie(t *testing.T) {
	players := []PlayerState{
		deadwoodPlayer(RankFour), // deadwood 4
		deadwoodPlayer(RankFour), // deadwood 4
		deadwoodPlayer(RankNine), // deadwood 9
	}
	scores := ScoreDeckExhaustion(players)
	if !scores[0].IsWinner || !scores[1].IsWinner {
		t.Error("both lowest-deadwood players should win")
	}
	if scores[2].IsWinner {
		t.Error("player 2 marked winner")
	}
	// Each winner: round((4+9)/2 - 4) = round(2.5) = 3.
	if scores[0].TotalScore != 3 || scores[1].TotalScore != 3 {
		t.Errorf("winner scores = %d/%d, want 3/3", scores[0].TotalScore, scores[1].TotalScore)
	}
}

// TestScoreDeckExhaustionFloor verifies the award never goes negative even
// when opponents average below the winner.
func TestScoreDeckExhaustionFloor(t *testing.T) {
	players := []PlayerState{
		deadwoodPlayer(RankFive),
		deadwoodPlayer(RankFive),
	}
	scores := ScoreDeckExhaustion(players)
	for i, s := range scores {
		if !s.IsWinner {
			t.Errorf("player %d should tie for the win", i)
		}
		if s.TotalScore != 0 {
			t.Errorf("player %d score = %d, want 0", i, s.TotalScore)
		}
	}
}
