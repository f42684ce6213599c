package recommender

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"recommender/config"
	"recommender/eclat"
	"recommender/rules"

	"github.com/shopspring/decimal"
	logTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func scenarioConfig() config.Configuration {
	conf := config.Default()
	conf.Mining.MinSupport = 0
	conf.Mining.MinSupportCount = 2
	conf.Mining.MinConfidence = 0.5
	return conf
}

func scenarioDB() [][]int {
	return [][]int{{0, 1}, {0, 1}, {0, 1}, {0, 2}}
}

func randomDB(seed int64, numTrans, numItems int) [][]int {
	r := rand.New(rand.NewSource(seed))
	db := make([][]int, 0, numTrans)
	for i := 0; i < numTrans; i++ {
		trn := make([]int, 0)
		for itm := 0; itm < numItems; itm++ {
			if r.Intn(3) == 0 {
				trn = append(trn, itm)
			}
		}
		db = append(db, trn)
	}
	return db
}

func TestTrainAndRecommendScenario(t *testing.T) {
	rc := New(scenarioConfig())
	m, err := rc.Train(PricesFromFloats([]float64{1.0, 2.0, 3.0}), scenarioDB())
	assert.Nil(t, err)
	assert.Equal(t, 4, m.NumTransactions)
	assert.Equal(t, 2, m.MinSupportCount)
	assert.Equal(t, 3, m.Itemsets.Len())
	assert.Equal(t, 2, len(m.Rules))
	assert.NotEmpty(t, m.Id)

	items, err := rc.Recommend([]int{1}, 1)
	assert.Nil(t, err)
	assert.Equal(t, []int{0}, items)

	items, err = rc.Recommend([]int{0}, 5)
	assert.Nil(t, err)
	assert.Equal(t, []int{1}, items)
}

func TestTrainEmptyDatabase(t *testing.T) {
	rc := NewDefault()
	m, err := rc.Train([]decimal.Decimal{}, [][]int{})
	assert.Nil(t, err)
	assert.Equal(t, 0, len(m.Rules))
	assert.Equal(t, 0, m.Itemsets.Len())

	items, err := rc.Recommend([]int{}, 5)
	assert.Nil(t, err)
	assert.Equal(t, []int{}, items)
}

func TestZeroValueRecommender(t *testing.T) {
	var rc Recommender
	items, err := rc.Recommend([]int{1, 2}, 3)
	assert.Nil(t, err)
	assert.Equal(t, []int{}, items)

	_, err = rc.Train(PricesFromFloats([]float64{1, 1, 1}), scenarioDB())
	assert.Nil(t, err)
	items, err = rc.Recommend([]int{1}, 3)
	assert.Nil(t, err)
	assert.Equal(t, []int{0}, items)
}

func TestTrainRejectsNegativeItem(t *testing.T) {
	_, err := Train(PricesFromFloats([]float64{1}), [][]int{{0, -1}}, scenarioConfig().Mining)
	assert.NotNil(t, err)
}

func TestTrainRejectsInvalidMiningConfig(t *testing.T) {
	mc := config.MiningConfig{MinSupport: 0.1, MinSupportCount: 3}
	_, err := Train(PricesFromFloats([]float64{1}), scenarioDB(), mc)
	assert.NotNil(t, err)
}

func TestRecommendCartCoversAllSuggestions(t *testing.T) {
	m, err := Train(PricesFromFloats([]float64{1, 2, 3}), scenarioDB(), scenarioConfig().Mining)
	assert.Nil(t, err)
	items, err := Recommend(m, []int{0, 1}, 5, scenarioConfig().Scoring)
	assert.Nil(t, err)
	assert.Equal(t, []int{}, items)
}

func TestRecommendNoMatchingRule(t *testing.T) {
	m, err := Train(PricesFromFloats([]float64{1, 2, 3}), scenarioDB(), scenarioConfig().Mining)
	assert.Nil(t, err)
	items, err := Recommend(m, []int{2}, 5, scenarioConfig().Scoring)
	assert.Nil(t, err)
	assert.Equal(t, []int{}, items)

	items, err = Recommend(nil, []int{2}, 5, scenarioConfig().Scoring)
	assert.Nil(t, err)
	assert.Equal(t, []int{}, items)
}

func TestRecommendBoundedAndExclusive(t *testing.T) {
	conf := config.Default()
	conf.Mining.MinSupport = 0.05
	conf.Mining.MinConfidence = 0.1
	numItems := 10
	prices := make([]float64, numItems)
	for i := range prices {
		prices[i] = float64(i%3) + 0.5
	}
	m, err := Train(PricesFromFloats(prices), randomDB(9, 200, numItems), conf.Mining)
	assert.Nil(t, err)

	r := rand.New(rand.NewSource(17))
	for i := 0; i < 50; i++ {
		cart := make([]int, 0)
		for itm := 0; itm < numItems; itm++ {
			if r.Intn(4) == 0 {
				cart = append(cart, itm)
			}
		}
		for _, k := range []int{0, 1, 3, 20} {
			items, err := Recommend(m, cart, k, conf.Scoring)
			assert.Nil(t, err)
			assert.LessOrEqual(t, len(items), k)
			cartSet := eclat.NewItemset(cart)
			for _, itm := range items {
				assert.False(t, cartSet.Contains(itm), "item %d of cart %v recommended", itm, cart)
			}
			again, err := Recommend(m, cart, k, conf.Scoring)
			assert.Nil(t, err)
			assert.Equal(t, items, again)
		}
	}
}

func TestRecommendIgnoresCartOrderAndDuplicates(t *testing.T) {
	conf := config.Default()
	conf.Mining.MinSupport = 0.05
	conf.Mining.MinConfidence = 0.1
	m, err := Train(PricesFromFloats([]float64{1, 2, 3, 4, 5, 6}), randomDB(4, 100, 6), conf.Mining)
	assert.Nil(t, err)
	a, err := Recommend(m, []int{3, 1}, 4, conf.Scoring)
	assert.Nil(t, err)
	b, err := Recommend(m, []int{1, 3, 1}, 4, conf.Scoring)
	assert.Nil(t, err)
	assert.Equal(t, a, b)
}

func ruleModel(prices []float64, rs []rules.Rule) *Model {
	return &Model{
		Id:              "test",
		Prices:          PricesFromFloats(prices),
		NumTransactions: 10,
		Itemsets:        eclat.NewFrequentItemsets(10, 1, nil),
		Rules:           rs,
	}
}

func TestRecommendKeepsMaximumScore(t *testing.T) {
	sc := config.Default().Scoring
	m := ruleModel([]float64{1, 1, 1}, []rules.Rule{
		{Antecedent: eclat.Itemset{0}, Consequent: eclat.Itemset{1}, Confidence: 0.2, Lift: 0.2, Leverage: 0.2, Jaccard: 0.2},
		{Antecedent: eclat.Itemset{0}, Consequent: eclat.Itemset{2}, Confidence: 0.5, Lift: 0.5, Leverage: 0.5, Jaccard: 0.5},
		{Antecedent: eclat.Itemset{0}, Consequent: eclat.Itemset{1}, Confidence: 0.9, Lift: 0.9, Leverage: 0.9, Jaccard: 0.9},
	})
	scores := ScoreCandidates(m, eclat.Itemset{0}, sc)
	assert.InDelta(t, 0.9, scores[1], 1e-9)
	assert.InDelta(t, 0.5, scores[2], 1e-9)

	items, err := Recommend(m, []int{0}, 2, sc)
	assert.Nil(t, err)
	assert.Equal(t, []int{1, 2}, items)
}

func TestRecommendPriceTieBreak(t *testing.T) {
	same := rules.Rule{Confidence: 0.5, Lift: 1, Leverage: 0, Jaccard: 0.5}
	rs := make([]rules.Rule, 0)
	for _, c := range []int{1, 2, 3} {
		r := same
		r.Antecedent = eclat.Itemset{0}
		r.Consequent = eclat.Itemset{c}
		rs = append(rs, r)
	}
	m := ruleModel([]float64{1, 2.5, 9.99, 2.5}, rs)

	sc := config.Default().Scoring
	items, err := Recommend(m, []int{0}, 3, sc)
	assert.Nil(t, err)
	assert.Equal(t, []int{2, 1, 3}, items)

	sc.PriceTieBreak = config.PriceTieBreakAsc
	items, err = Recommend(m, []int{0}, 3, sc)
	assert.Nil(t, err)
	assert.Equal(t, []int{1, 3, 2}, items)
}

func TestRecommendOutOfRange(t *testing.T) {
	m := ruleModel([]float64{1, 1}, []rules.Rule{
		{Antecedent: eclat.Itemset{0}, Consequent: eclat.Itemset{5}, Confidence: 1, Lift: 1, Jaccard: 1},
	})
	_, err := Recommend(m, []int{0}, 3, config.Default().Scoring)
	assert.NotNil(t, err)
	var oor *OutOfRangeError
	assert.True(t, errors.As(err, &oor))
	assert.Equal(t, 5, oor.Item)
	assert.Equal(t, 2, oor.NumItems)

	_, err = m.Price(-1)
	assert.NotNil(t, err)
}

func TestCompositeScoreWeights(t *testing.T) {
	r := rules.Rule{Confidence: 0.8, Lift: 2, Leverage: 0.1, Jaccard: 0.4}
	assert.InDelta(t, (0.8+2+0.1+0.4)/4, CompositeScore(r, config.Default().Scoring), 1e-9)

	sc := config.ScoringConfig{ConfidenceWeight: 1}
	assert.InDelta(t, 0.8, CompositeScore(r, sc), 1e-9)
}

func TestRecommendationCache(t *testing.T) {
	rc := New(scenarioConfig())
	_, err := rc.Train(PricesFromFloats([]float64{1, 2, 3}), scenarioDB())
	assert.Nil(t, err)

	first, err := rc.Recommend([]int{1}, 2)
	assert.Nil(t, err)
	first[0] = 42
	second, err := rc.Recommend([]int{1, 1}, 2)
	assert.Nil(t, err)
	assert.Equal(t, []int{0}, second)

	assert.Equal(t, getRecommendationCacheKey("m", []int{3, 1, 3}, 2), getRecommendationCacheKey("m", []int{1, 3}, 2))
}

func TestModelSwapIsAtomic(t *testing.T) {
	rc := New(scenarioConfig())
	prices := PricesFromFloats([]float64{1, 2, 3})
	_, err := rc.Train(prices, scenarioDB())
	assert.Nil(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				items, err := rc.Recommend([]int{1}, 1)
				assert.Nil(t, err)
				assert.Equal(t, []int{0}, items)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		_, err := rc.Train(prices, scenarioDB())
		assert.Nil(t, err)
	}
	wg.Wait()
}

func TestModelInfo(t *testing.T) {
	m, err := Train(PricesFromFloats([]float64{1, 2, 3}), scenarioDB(), scenarioConfig().Mining)
	assert.Nil(t, err)
	info := m.Info()
	assert.Equal(t, 3, info.NumItems)
	assert.Equal(t, 4, info.NumTransactions)
	assert.Equal(t, 3, info.NumItemsets)
	assert.Equal(t, 2, info.NumRules)

	var nilModel *Model
	assert.Equal(t, ModelInfo{}, nilModel.Info())
}

func TestRecommendOutOfRangeReportsLowestItem(t *testing.T) {
	rs := make([]rules.Rule, 0)
	for c := 14; c >= 5; c-- {
		rs = append(rs, rules.Rule{Antecedent: eclat.Itemset{0}, Consequent: eclat.Itemset{c}, Confidence: 1, Lift: 1, Jaccard: 1})
	}
	m := ruleModel([]float64{1, 1}, rs)
	for i := 0; i < 50; i++ {
		_, err := Recommend(m, []int{0}, 3, config.Default().Scoring)
		var oor *OutOfRangeError
		assert.True(t, errors.As(err, &oor))
		assert.Equal(t, 5, oor.Item)
	}
}

func TestTrainRejectsInvalidScoringConfig(t *testing.T) {
	conf := scenarioConfig()
	conf.Scoring.PriceTieBreak = "ASC"
	_, err := New(conf).Train(PricesFromFloats([]float64{1, 2, 3}), scenarioDB())
	assert.NotNil(t, err)

	conf = scenarioConfig()
	conf.Scoring.LiftWeight = -1
	rc := New(conf)
	_, err = rc.Train(PricesFromFloats([]float64{1, 2, 3}), scenarioDB())
	assert.NotNil(t, err)
	assert.Nil(t, rc.GetModel())
}

func TestTrainLogsUnpricedItems(t *testing.T) {
	hook := logTest.NewGlobal()
	defer hook.Reset()

	_, err := Train(PricesFromFloats([]float64{1, 2}), [][]int{{0, 3}, {4, 3}, {1}}, scenarioConfig().Mining)
	assert.Nil(t, err)

	found := false
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Transactions reference items without a price" {
			found = true
			assert.Equal(t, []int{3, 4}, entry.Data["unpriced_items"])
			assert.Equal(t, 2, entry.Data["num_items"])
		}
	}
	assert.True(t, found)
}
