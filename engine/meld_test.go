package engine

import (
	"testing"

	"github.com/google/uuid"
)

// ginHand is fully covered by two sets and a four-card run.
func ginHand() []Card {
	return []Card{
		mkcard(RankThree, SuitClubs),
		mkcard(RankThree, SuitDiamonds),
		mkcard(RankThree, SuitHearts),
		mkcard(RankSeven, SuitSpades),
		mkcard(RankSeven, SuitDiamonds),
		mkcard(RankSeven, SuitClubs),
		mkcard(RankTen, SuitSpades),
		mkcard(RankJack, SuitSpades),
		mkcard(RankQueen, SuitSpades),
		mkcard(RankKing, SuitSpades),
	}
}

func TestAnalyzeGinHand(t *testing.T) {
	a := Analyze(ginHand())
	if a.DeadwoodValue != 0 {
		t.Errorf("deadwoodValue = %d, want 0", a.DeadwoodValue)
	}
	if len(a.Deadwood) != 0 {
		t.Errorf("deadwood cards = %d, want 0", len(a.Deadwood))
	}
	if !a.CanGin {
		t.Error("canGin = false, want true")
	}
	if !a.CanKnock {
		t.Error("canKnock = false, want true")
	}
	melded := 0
	for _, m := range a.Melds {
		melded += len(m)
	}
	if melded != 10 {
		t.Errorf("melded cards = %d, want 10", melded)
	}
}

// TestAnalyzeElevenCardGin covers the post-draw case: eleven cards where the
// best arrangement leaves a single low card.
func TestAnalyzeElevenCardGin(t *testing.T) {
	hand := append(ginHand(), mkcard(RankTwo, SuitClubs))
	a := Analyze(hand)
	if a.DeadwoodValue != 2 {
		t.Errorf("deadwoodValue = %d, want 2", a.DeadwoodValue)
	}
	if a.CanGin {
		t.Error("canGin = true with deadwood remaining")
	}
	if !a.CanKnock {
		t.Error("canKnock = false with deadwood 2")
	}
}

func TestAnalyzeNoMelds(t *testing.T) {
	hand := []Card{
		mkcard(RankAce, SuitClubs),
		mkcard(RankThree, SuitDiamonds),
		mkcard(RankFive, SuitHearts),
		mkcard(RankSeven, SuitSpades),
		mkcard(RankNine, SuitClubs),
		mkcard(RankJack, SuitDiamonds),
		mkcard(RankKing, SuitHearts),
	}
	a := Analyze(hand)
	if len(a.Melds) != 0 {
		t.Errorf("melds = %d, want 0", len(a.Melds))
	}
	if len(a.Deadwood) != len(hand) {
		t.Errorf("deadwood cards = %d, want %d", len(a.Deadwood), len(hand))
	}
	want := 1 + 3 + 5 + 7 + 9 + 10 + 10
	if a.DeadwoodValue != want {
		t.Errorf("deadwoodValue = %d, want %d", a.DeadwoodValue, want)
	}
	if a.CanKnock {
		t.Error("canKnock = true with deadwood 45")
	}
}

// TestAnalyzeOverlapChoice forces a choice between a set and a run sharing a
// card; the analyzer must pick the split that melds everything.
func TestAnalyzeOverlapChoice(t *testing.T) {
	hand := []Card{
		mkcard(RankFive, SuitHearts),
		mkcard(RankFive, SuitDiamonds),
		mkcard(RankFive, SuitSpades),
		mkcard(RankFive, SuitClubs),
		mkcard(RankSix, SuitClubs),
		mkcard(RankSeven, SuitClubs),
	}
	a := Analyze(hand)
	if a.DeadwoodValue != 0 {
		t.Errorf("deadwoodValue = %d, want 0", a.DeadwoodValue)
	}
	if len(a.Melds) != 2 {
		t.Errorf("melds = %d, want 2", len(a.Melds))
	}
}

// TestAnalyzePartition verifies every card lands in exactly one of melds or
// deadwood.
func TestAnalyzePartition(t *testing.T) {
	hand := append(ginHand(), mkcard(RankFour, SuitHearts))
	a := Analyze(hand)

	seen := make(map[uuid.UUID]int)
	for _, m := range a.Melds {
		for _, c := range m {
			seen[c.ID]++
		}
	}
	for _, c := range a.Deadwood {
		seen[c.ID]++
	}
	if len(seen) != len(hand) {
		t.Fatalf("partitioned cards = %d, want %d", len(seen), len(hand))
	}
	for _, c := range hand {
		if seen[c.ID] != 1 {
			t.Errorf("card %s appears %d times, want 1", c, seen[c.ID])
		}
	}
}

// TestAnalyzeOrderIndependence verifies analysis does not depend on hand
// ordering.
func TestAnalyzeOrderIndependence(t *testing.T) {
	hand := append(ginHand(), mkcard(RankNine, SuitHearts))
	want := Analyze(hand).DeadwoodValue

	// Rotate through several orderings.
	for i := 0; i < len(hand); i++ {
		rotated := append(append([]Card{}, hand[i:]...), hand[:i]...)
		if got := Analyze(rotated).DeadwoodValue; got != want {
			t.Errorf("rotation %d deadwoodValue = %d, want %d", i, got, want)
		}
	}
}

// TestAnalyzeAceLowRuns verifies A-2-3 melds and Q-K-A does not wrap.
func TestAnalyzeAceLowRuns(t *testing.T) {
	low := []Card{
		mkcard(RankAce, SuitHearts),
		mkcard(RankTwo, SuitHearts),
		mkcard(RankThree, SuitHearts),
	}
	if a := Analyze(low); a.DeadwoodValue != 0 {
		t.Errorf("A-2-3 deadwoodValue = %d, want 0", a.DeadwoodValue)
	}

	wrap := []Card{
		mkcard(RankQueen, SuitHearts),
		mkcard(RankKing, SuitHearts),
		mkcard(RankAce, SuitHearts),
	}
	if a := Analyze(wrap); len(a.Melds) != 0 {
		t.Error("Q-K-A formed a run, want none")
	}
}

func TestAnalyzeEmptyHand(t *testing.T) {
	a := Analyze(nil)
	if a.DeadwoodValue != 0 || len(a.Melds) != 0 || len(a.Deadwood) != 0 {
		t.Errorf("empty hand analysis = %+v, want zeroes", a)
	}
	if !a.CanKnock {
		t.Error("canKnock = false at deadwood 0")
	}
}
