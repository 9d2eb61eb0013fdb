package engine

import "github.com/google/uuid"

// Meld is a group of 3+ cards forming either a set (same rank, distinct
// suits) or a run (same suit, consecutive sort values). Melds are derived
// from a hand on demand, never persisted.
type Meld []Card

// HandAnalysis is the result of decomposing a hand into melds and deadwood.
// Every card of the analyzed hand appears in exactly one of Melds/Deadwood.
type HandAnalysis struct {
	Melds         []Meld `json:"melds"`
	Deadwood      []Card `json:"deadwood"`
	DeadwoodValue int    `json:"deadwoodValue"`
	CanKnock      bool   `json:"canKnock"`
	CanGin        bool   `json:"canGin"`
}

// KnockThreshold is the maximum deadwood value that still permits a knock.
const KnockThreshold = 10

// Analyze decomposes a hand into the non-overlapping meld combination that
// minimizes leftover deadwood value. A hand with no valid meld returns
// melds=nil and deadwood equal to the full hand. The resulting DeadwoodValue
// is deterministic for a given hand regardless of card order; when several
// combinations tie, which melds are reported is unspecified.
//
// The search enumerates every candidate set and run, then walks the power
// set of non-overlapping candidate combinations. That walk is exponential in
// the number of candidates, which stays tractable for the 10-11 card hands
// this game deals; the blow-up is contained behind this function so a DP
// formulation could replace it without changing the contract.
func Analyze(hand []Card) HandAnalysis {
	candidates := append(findAllSets(hand), findAllRuns(hand)...)

	bestMelds, bestDeadwood := searchMeldCombinations(hand, candidates)
	value := cardValueSum(bestDeadwood)

	return HandAnalysis{
		Melds:         bestMelds,
		Deadwood:      bestDeadwood,
		DeadwoodValue: value,
		CanKnock:      value <= KnockThreshold,
		CanGin:        value == 0,
	}
}

// findAllSets returns every same-rank combination of size 3 and up.
func findAllSets(cards []Card) []Meld {
	byRank := make(map[Rank][]Card)
	for _, c := range cards {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}

	var sets []Meld
	// Iterate ranks in fixed order so enumeration is order-independent.
	for _, rank := range Ranks {
		group := byRank[rank]
		if len(group) < 3 {
			continue
		}
		group = sortBySuit(group)
		for size := 3; size <= len(group); size++ {
			for _, combo := range combinations(group, size) {
				sets = append(sets, Meld(combo))
			}
		}
	}
	return sets
}

// findAllRuns returns every same-suit run of length 3 and up.
func findAllRuns(cards []Card) []Meld {
	bySuit := make(map[Suit][]Card)
	for _, c := range cards {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}

	var runs []Meld
	for _, suit := range Suits {
		group := bySuit[suit]
		if len(group) < 3 {
			continue
		}
		sorted := sortBySortValue(group)
		for start := 0; start < len(sorted)-2; start++ {
			for end := start + 2; end < len(sorted); end++ {
				window := sorted[start : end+1]
				if isConsecutive(window) {
					run := make(Meld, len(window))
					copy(run, window)
					runs = append(runs, run)
				}
			}
		}
	}
	return runs
}

// isConsecutive reports whether sorted same-suit cards step by exactly one.
func isConsecutive(cards []Card) bool {
	for i := 1; i < len(cards); i++ {
		if cards[i].SortValue() != cards[i-1].SortValue()+1 {
			return false
		}
	}
	return true
}

// searchMeldCombinations walks every non-overlapping subset of the candidate
// melds and keeps the one leaving the cheapest deadwood. The baseline is "no
// melds" so a meldless hand still yields sensible output.
func searchMeldCombinations(hand []Card, candidates []Meld) ([]Meld, []Card) {
	bestValue := cardValueSum(hand)
	var bestMelds []Meld
	bestDeadwood := hand

	used := make(map[uuid.UUID]bool, len(hand))
	chosen := make([]Meld, 0, len(candidates))

	var walk func(idx int)
	walk = func(idx int) {
		if idx == len(candidates) {
			deadwood := remainingCards(hand, used)
			if v := cardValueSum(deadwood); v < bestValue {
				bestValue = v
				bestMelds = append([]Meld(nil), chosen...)
				bestDeadwood = deadwood
			}
			return
		}

		// Branch 1: skip candidate idx.
		walk(idx + 1)

		// Branch 2: take candidate idx, unless it overlaps a chosen meld.
		meld := candidates[idx]
		for _, c := range meld {
			if used[c.ID] {
				return
			}
		}
		for _, c := range meld {
			used[c.ID] = true
		}
		chosen = append(chosen, meld)
		walk(idx + 1)
		chosen = chosen[:len(chosen)-1]
		for _, c := range meld {
			delete(used, c.ID)
		}
	}
	walk(0)

	return bestMelds, bestDeadwood
}

// remainingCards returns the hand cards whose ids are not marked used,
// preserving hand order.
func remainingCards(hand []Card, used map[uuid.UUID]bool) []Card {
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if !used[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// combinations returns every size-n subset of cards, preserving order.
func combinations(cards []Card, n int) [][]Card {
	if n == 0 {
		return [][]Card{{}}
	}
	if n > len(cards) {
		return nil
	}

	var out [][]Card
	rest := cards[1:]
	for _, combo := range combinations(rest, n-1) {
		withFirst := make([]Card, 0, n)
		withFirst = append(withFirst, cards[0])
		withFirst = append(withFirst, combo...)
		out = append(out, withFirst)
	}
	out = append(out, combinations(rest, n)...)
	return out
}

// sortBySuit orders cards by fixed suit order so set enumeration is
// deterministic. Returns a copy.
func sortBySuit(cards []Card) []Card {
	order := map[Suit]int{SuitClubs: 0, SuitDiamonds: 1, SuitHearts: 2, SuitSpades: 3}
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && order[out[j].Suit] < order[out[j-1].Suit]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
