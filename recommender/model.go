package recommender

import (
	"fmt"
	"sort"
	"time"

	"recommender/config"
	"recommender/eclat"
	"recommender/rules"
	U "recommender/util"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Model is the trained, read-only artifact. Nothing mutates a Model once Train returns it.
type Model struct {
	Id              string            `json:"id"`
	TrainedAt       int64             `json:"trained_at"`
	Prices          []decimal.Decimal `json:"prices"`
	NumTransactions int               `json:"num_transactions"`
	MinSupportCount int               `json:"min_support_count"`
	MinConfidence   float64           `json:"min_confidence"`

	// Transactions references the log the model was trained on. Not persisted.
	Transactions [][]int                `json:"-"`
	Itemsets     *eclat.FrequentItemsets `json:"-"`
	Rules        []rules.Rule            `json:"-"`
}

// ModelInfo is a summary of a model, safe to log and return over the wire.
type ModelInfo struct {
	Id              string  `json:"id"`
	TrainedAt       int64   `json:"trained_at"`
	NumItems        int     `json:"num_items"`
	NumTransactions int     `json:"num_transactions"`
	MinSupportCount int     `json:"min_support_count"`
	MinConfidence   float64 `json:"min_confidence"`
	NumItemsets     int     `json:"num_itemsets"`
	NumRules        int     `json:"num_rules"`
}

func (m *Model) Info() ModelInfo {
	if m == nil {
		return ModelInfo{}
	}
	return ModelInfo{
		Id:              m.Id,
		TrainedAt:       m.TrainedAt,
		NumItems:        len(m.Prices),
		NumTransactions: m.NumTransactions,
		MinSupportCount: m.MinSupportCount,
		MinConfidence:   m.MinConfidence,
		NumItemsets:     m.Itemsets.Len(),
		NumRules:        len(m.Rules),
	}
}

// Price returns the price of itm or an *OutOfRangeError.
func (m *Model) Price(itm int) (decimal.Decimal, error) {
	if itm < 0 || itm >= len(m.Prices) {
		return decimal.Zero, &OutOfRangeError{Item: itm, NumItems: len(m.Prices)}
	}
	return m.Prices[itm], nil
}

// Train builds a new model from scratch: vertical index, frequent itemsets, rules.
// An empty database gives a model with no rules.
func Train(prices []decimal.Decimal, db [][]int, mc config.MiningConfig) (*Model, error) {
	if err := mc.Validate(); err != nil {
		return nil, err
	}
	unpriced := make(map[int]bool)
	for tid, trn := range db {
		for _, itm := range trn {
			if itm < 0 {
				return nil, fmt.Errorf("transaction %d has negative item id %d", tid, itm)
			}
			if itm >= len(prices) {
				unpriced[itm] = true
			}
		}
	}
	if len(unpriced) > 0 {
		unpricedItems := make([]int, 0, len(unpriced))
		for itm := range unpriced {
			unpricedItems = append(unpricedItems, itm)
		}
		sort.Ints(unpricedItems)
		log.WithFields(log.Fields{
			"num_items":      len(prices),
			"unpriced_items": unpricedItems,
		}).Warn("Transactions reference items without a price")
	}

	startTime := time.Now()
	vi := eclat.BuildVerticalIndex(db)
	supportCount := mc.SupportCount(vi.NumTransactions)
	fi := eclat.MineParallel(vi, supportCount, mc.Workers)
	rs := rules.Generate(fi, mc.MinConfidence, mc.ShouldPruneRules())

	m := &Model{
		Id:              xid.New().String(),
		TrainedAt:       U.TimeNowUnix(),
		Prices:          copyPrices(prices),
		NumTransactions: vi.NumTransactions,
		MinSupportCount: fi.MinSupportCount,
		MinConfidence:   mc.MinConfidence,
		Transactions:    db,
		Itemsets:        fi,
		Rules:           rs,
	}

	log.WithFields(log.Fields{
		"model_id":     m.Id,
		"items":        len(prices),
		"transactions": vi.NumTransactions,
		"itemsets":     fi.Len(),
		"rules":        len(rs),
		"time_taken":   time.Since(startTime).Milliseconds(),
	}).Info("Training finished")
	return m, nil
}

func copyPrices(prices []decimal.Decimal) []decimal.Decimal {
	res := make([]decimal.Decimal, len(prices))
	copy(res, prices)
	return res
}

// PricesFromFloats is a convenience for callers holding float prices.
func PricesFromFloats(prices []float64) []decimal.Decimal {
	res := make([]decimal.Decimal, 0, len(prices))
	for _, p := range prices {
		res = append(res, decimal.NewFromFloat(p))
	}
	return res
}
