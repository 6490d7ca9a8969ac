package similarity

import "sort"

const (
	// StrictThreshold is the default similarity cutoff for search results.
	StrictThreshold float32 = 0.35

	// RelaxedThreshold is the cutoff after the user asks for less similar
	// matches ("show more").
	RelaxedThreshold float32 = 0.10

	// DefaultPageSize is the number of results shown per query.
	DefaultPageSize = 5
)

// Tier selects which similarity cutoff applies to a ranked result page.
type Tier int

const (
	// Strict is the default view.
	Strict Tier = iota
	// Relaxed is the user-triggered "show more" view.
	Relaxed
)

// Threshold returns the cutoff for the tier. Scores must exceed it
// strictly to qualify.
func (t Tier) Threshold() float32 {
	if t == Relaxed {
		return RelaxedThreshold
	}
	return StrictThreshold
}

func (t Tier) String() string {
	if t == Relaxed {
		return "relaxed"
	}
	return "strict"
}

// Rank orders scores by overall similarity descending, takes the top k,
// then drops entries at or below the tier's cutoff. Ties break on paper
// identifier so paging stays stable under equal scores.
func Rank(scores []PaperScore, k int, tier Tier) []PaperScore {
	ranked := make([]PaperScore, len(scores))
	copy(ranked, scores)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Overall != ranked[j].Overall {
			return ranked[i].Overall > ranked[j].Overall
		}
		return ranked[i].PaperID < ranked[j].PaperID
	})

	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}

	cutoff := tier.Threshold()
	qualified := ranked[:0:len(ranked)]
	for _, s := range ranked {
		if s.Overall > cutoff {
			qualified = append(qualified, s)
		}
	}

	return qualified
}
