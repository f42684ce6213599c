package rules

import (
	"bytes"
	"math/rand"
	"testing"

	"recommender/eclat"

	"github.com/stretchr/testify/assert"
)

func mine(db [][]int, minsup int) *eclat.FrequentItemsets {
	return eclat.Mine(eclat.BuildVerticalIndex(db), minsup)
}

func randomDB(seed int64, numTrans, numItems int) [][]int {
	r := rand.New(rand.NewSource(seed))
	db := make([][]int, 0, numTrans)
	for i := 0; i < numTrans; i++ {
		trn := make([]int, 0)
		for itm := 0; itm < numItems; itm++ {
			if r.Intn(2) == 0 {
				trn = append(trn, itm)
			}
		}
		db = append(db, trn)
	}
	return db
}

func findRule(rules []Rule, a, c eclat.Itemset) (Rule, bool) {
	for _, r := range rules {
		if r.Antecedent.Equal(a) && r.Consequent.Equal(c) {
			return r, true
		}
	}
	return Rule{}, false
}

func TestGenerateScenario(t *testing.T) {
	fi := mine([][]int{{0, 1}, {0, 1}, {0, 1}, {0, 2}}, 2)
	rules := Generate(fi, 0.5, true)
	assert.Equal(t, 2, len(rules))

	r, ok := findRule(rules, eclat.Itemset{1}, eclat.Itemset{0})
	assert.True(t, ok)
	assert.Equal(t, 3, r.Support)
	assert.InDelta(t, 1.0, r.Confidence, 1e-9)
	assert.InDelta(t, 1.0, r.Lift, 1e-9)
	assert.InDelta(t, 0.0, r.Leverage, 1e-9)
	assert.InDelta(t, 0.75, r.Jaccard, 1e-9)

	r, ok = findRule(rules, eclat.Itemset{0}, eclat.Itemset{1})
	assert.True(t, ok)
	assert.InDelta(t, 0.75, r.Confidence, 1e-9)
	assert.InDelta(t, 1.0, r.Lift, 1e-9)
	assert.InDelta(t, 0.75, r.Jaccard, 1e-9)

	// traversal order within one size is lexicographic on the antecedent
	assert.Equal(t, eclat.Itemset{0}, rules[0].Antecedent)
	assert.Equal(t, eclat.Itemset{1}, rules[1].Antecedent)
}

func TestGenerateConfidenceThreshold(t *testing.T) {
	fi := mine([][]int{{0, 1}, {0, 1}, {0, 1}, {0, 2}}, 2)
	rules := Generate(fi, 0.8, true)
	assert.Equal(t, 1, len(rules))
	assert.Equal(t, eclat.Itemset{1}, rules[0].Antecedent)
}

func TestGenerateEmpty(t *testing.T) {
	fi := mine([][]int{}, 1)
	assert.Equal(t, 0, len(Generate(fi, 0.1, true)))
	assert.Equal(t, 0, len(Generate(nil, 0.1, true)))
}

func TestGenerateMultiItemConsequent(t *testing.T) {
	db := [][]int{{0, 1, 2}, {0, 1, 2}, {0, 1, 2}, {0}}
	rules := Generate(mine(db, 1), 0.5, true)
	r, ok := findRule(rules, eclat.Itemset{0}, eclat.Itemset{1, 2})
	assert.True(t, ok)
	assert.InDelta(t, 0.75, r.Confidence, 1e-9)
	r, ok = findRule(rules, eclat.Itemset{1, 2}, eclat.Itemset{0})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, r.Confidence, 1e-9)
}

func TestGenerateRuleValidity(t *testing.T) {
	db := randomDB(5, 80, 7)
	fi := mine(db, 6)
	minconf := 0.4
	for _, r := range Generate(fi, minconf, true) {
		assert.GreaterOrEqual(t, r.Confidence, minconf)
		for _, itm := range r.Antecedent {
			assert.False(t, r.Consequent.Contains(itm))
		}
		assert.NotEmpty(t, r.Antecedent)
		assert.NotEmpty(t, r.Consequent)
		z := eclat.NewItemset(append(append([]int{}, r.Antecedent...), r.Consequent...))
		s, ok := fi.Support(z)
		assert.True(t, ok)
		assert.Equal(t, s, r.Support)
	}
}

func TestPrunedMatchesExhaustive(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		fi := mine(randomDB(seed, 100, 8), 8)
		for _, minconf := range []float64{0.0, 0.3, 0.6, 0.9} {
			exhaustive := Generate(fi, minconf, false)
			pruned := Generate(fi, minconf, true)
			assert.Equal(t, exhaustive, pruned, "seed %d minconf %f", seed, minconf)
		}
	}
}

func TestMasksOfSize(t *testing.T) {
	assert.Equal(t, []uint64{0b011, 0b101, 0b110}, masksOfSize(3, 2))
	assert.Equal(t, []uint64{0b001, 0b010, 0b100}, masksOfSize(3, 1))
	assert.Equal(t, []uint64{0b111}, masksOfSize(3, 3))
}

func TestTopRules(t *testing.T) {
	rules := []Rule{
		{Antecedent: eclat.Itemset{0}, Confidence: 0.5, Lift: 2},
		{Antecedent: eclat.Itemset{1}, Confidence: 0.9, Lift: 1},
		{Antecedent: eclat.Itemset{2}, Confidence: 0.5, Lift: 3},
	}
	top := TopRules(rules, 2)
	assert.Equal(t, 2, len(top))
	assert.Equal(t, eclat.Itemset{1}, top[0].Antecedent)
	assert.Equal(t, eclat.Itemset{2}, top[1].Antecedent)
	assert.Equal(t, 3, len(TopRules(rules, 10)))
}

func TestWriteReadRules(t *testing.T) {
	rules := Generate(mine([][]int{{0, 1}, {0, 1}, {0, 1}, {0, 2}}, 2), 0.5, true)
	var buf bytes.Buffer
	assert.Nil(t, WriteRules(&buf, rules))
	read, err := ReadRules(&buf)
	assert.Nil(t, err)
	assert.Equal(t, rules, read)
}
