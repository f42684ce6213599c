package rules

import (
	"sort"
	"time"

	"recommender/eclat"

	log "github.com/sirupsen/logrus"
)

/*	for every frequent itemset Z with |Z| >= 2
		antecedents A are the non-empty proper subsets of Z, visited from the largest
		size to the smallest and lexicographically within a size. C = Z \ A.
		confidence(A -> C) = s(Z) / s(A)
	pruning: when A fails minconf, any A' subset of A fails too, because s(A') >= s(A).
	so once A fails, every subset of A is skipped for the same Z.
*/

// Generate derives every rule of confidence >= minConfidence from the table.
// prune skips antecedents that provably fail; the result is the same either way.
func Generate(fi *eclat.FrequentItemsets, minConfidence float64, prune bool) []Rule {
	startTime := time.Now()
	rules := make([]Rule, 0)
	if fi == nil || fi.NumTransactions == 0 {
		return rules
	}

	skipped := 0
	for _, z := range fi.Itemsets {
		if len(z.Items) < 2 {
			continue
		}
		if len(z.Items) > MaxItemsetLength {
			log.WithField("itemset", z.Items).Warn("itemset too long to split into rules")
			continue
		}
		rs, s := rulesFromItemset(fi, z, minConfidence, prune)
		rules = append(rules, rs...)
		skipped += s
	}

	log.WithFields(log.Fields{
		"itemsets":       fi.Len(),
		"rules":          len(rules),
		"min_confidence": minConfidence,
		"prune":          prune,
		"pruned":         skipped,
		"time_taken":     time.Since(startTime).Milliseconds(),
	}).Info("generated rules")
	return rules
}

func rulesFromItemset(fi *eclat.FrequentItemsets, z eclat.ItemsetCount, minConfidence float64, prune bool) ([]Rule, int) {
	rules := make([]Rule, 0)
	n := len(z.Items)
	full := uint64(1)<<uint(n) - 1
	failed := make([]uint64, 0)
	skipped := 0

	for size := n - 1; size >= 1; size-- {
		for _, mask := range masksOfSize(n, size) {
			if prune && isSubsetOfAny(mask, failed) {
				skipped++
				continue
			}
			a := itemsFromMask(z.Items, mask)
			c := itemsFromMask(z.Items, full&^mask)
			sA, okA := fi.Support(a)
			sC, okC := fi.Support(c)
			if !okA || !okC {
				log.WithFields(log.Fields{"antecedent": a, "consequent": c}).Debug("missing subset support, skipping split")
				continue
			}
			r, ok := newRule(a, c, z.Count, sA, sC, fi.NumTransactions)
			if !ok {
				continue
			}
			if r.Confidence >= minConfidence {
				rules = append(rules, r)
			} else {
				failed = append(failed, mask)
			}
		}
	}
	return rules, skipped
}

// newRule computes the rule metrics, false when a denominator is zero.
func newRule(a, c eclat.Itemset, sZ, sA, sC, numTrans int) (Rule, bool) {
	if sA == 0 || sC == 0 || numTrans == 0 {
		return Rule{}, false
	}
	t := float64(numTrans)
	confidence := float64(sZ) / float64(sA)
	union := sA + sC - sZ
	if union <= 0 {
		return Rule{}, false
	}
	return Rule{
		Antecedent: a,
		Consequent: c,
		Support:    sZ,
		Confidence: confidence,
		Lift:       confidence / (float64(sC) / t),
		Leverage:   float64(sZ)/t - (float64(sA)/t)*(float64(sC)/t),
		Jaccard:    float64(sZ) / float64(union),
	}, true
}

// masksOfSize lists the n-bit masks with k bits set, lexicographic on the chosen positions.
func masksOfSize(n, k int) []uint64 {
	masks := make([]uint64, 0)
	pos := make([]int, k)
	for i := range pos {
		pos[i] = i
	}
	for {
		var m uint64
		for _, p := range pos {
			m |= 1 << uint(p)
		}
		masks = append(masks, m)

		i := k - 1
		for i >= 0 && pos[i] == n-k+i {
			i--
		}
		if i < 0 {
			return masks
		}
		pos[i]++
		for j := i + 1; j < k; j++ {
			pos[j] = pos[j-1] + 1
		}
	}
}

func isSubsetOfAny(mask uint64, supersets []uint64) bool {
	for _, s := range supersets {
		if mask&s == mask {
			return true
		}
	}
	return false
}

func itemsFromMask(items eclat.Itemset, mask uint64) eclat.Itemset {
	res := make(eclat.Itemset, 0)
	for idx, itm := range items {
		if mask&(1<<uint(idx)) != 0 {
			res = append(res, itm)
		}
	}
	return res
}

// TopRules returns up to k rules by descending confidence, then lift.
func TopRules(rules []Rule, k int) []Rule {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].Lift > sorted[j].Lift
	})
	if k >= 0 && len(sorted) > k {
		return sorted[:k]
	}
	return sorted
}
