package recommender

import (
	"sort"

	"recommender/config"
	"recommender/eclat"
	"recommender/rules"

	"github.com/shopspring/decimal"
)

type scoredItem struct {
	item  int
	score float64
	price decimal.Decimal
}

// CompositeScore is the weighted sum of the rule metrics.
func CompositeScore(r rules.Rule, sc config.ScoringConfig) float64 {
	return sc.ConfidenceWeight*r.Confidence +
		sc.LiftWeight*r.Lift +
		sc.LeverageWeight*r.Leverage +
		sc.JaccardWeight*r.Jaccard
}

// ScoreCandidates returns, for every item nominated by a rule firing on cart,
// the best composite score among those rules. Items of the cart are never nominated.
func ScoreCandidates(m *Model, cart eclat.Itemset, sc config.ScoringConfig) map[int]float64 {
	scores := make(map[int]float64)
	if m == nil {
		return scores
	}
	for _, r := range m.Rules {
		if !r.Matches(cart) {
			continue
		}
		s := CompositeScore(r, sc)
		for _, itm := range r.Consequent {
			if cart.Contains(itm) {
				continue
			}
			if cur, ok := scores[itm]; !ok || s > cur {
				scores[itm] = s
			}
		}
	}
	return scores
}

// Recommend ranks the items the model associates with cart and returns at most
// maxCount of them, best first. Ties on score go to price (sc.PriceTieBreak),
// then to the lower item id. A candidate with no price is an *OutOfRangeError.
func Recommend(m *Model, cart []int, maxCount int, sc config.ScoringConfig) ([]int, error) {
	res := make([]int, 0)
	if m == nil || maxCount <= 0 || len(cart) == 0 {
		return res, nil
	}

	scores := ScoreCandidates(m, eclat.NewItemset(cart), sc)
	if len(scores) == 0 {
		return res, nil
	}

	// priced in ascending id order so an unpriced candidate is always reported as the lowest one
	ids := make([]int, 0, len(scores))
	for itm := range scores {
		ids = append(ids, itm)
	}
	sort.Ints(ids)

	candidates := make([]scoredItem, 0, len(ids))
	for _, itm := range ids {
		price, err := m.Price(itm)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, scoredItem{item: itm, score: scores[itm], price: price})
	}

	ascending := sc.PriceTieBreak == config.PriceTieBreakAsc
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if cmp := a.price.Cmp(b.price); cmp != 0 {
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return a.item < b.item
	})

	if len(candidates) > maxCount {
		candidates = candidates[:maxCount]
	}
	for _, c := range candidates {
		res = append(res, c.item)
	}
	return res, nil
}
