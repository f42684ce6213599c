package recommender

import (
	"fmt"
	"sync"
	"time"

	"recommender/config"
	"recommender/metrics"
	U "recommender/util"

	cache "github.com/hashicorp/golang-lru"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Recommender holds the last trained model. Train swaps in a complete new
// model under the lock, so readers see either the old or the new model.
// The zero value is usable and runs with config.Default().
type Recommender struct {
	conf *config.Configuration

	stateLock sync.RWMutex
	model     *Model

	cacheOnce           sync.Once
	recommendationCache *cache.Cache
}

func New(conf config.Configuration) *Recommender {
	return &Recommender{conf: &conf}
}

func NewDefault() *Recommender {
	return New(config.Default())
}

func (rc *Recommender) getConfig() config.Configuration {
	if rc.conf == nil {
		return config.Default()
	}
	return *rc.conf
}

func (rc *Recommender) getCache() *cache.Cache {
	rc.cacheOnce.Do(func() {
		size := rc.getConfig().RecommendationCacheSize
		if size <= 0 {
			return
		}
		c, err := cache.New(size)
		if err != nil {
			log.WithError(err).Error("Failed to create recommendation cache")
			return
		}
		rc.recommendationCache = c
	})
	return rc.recommendationCache
}

// Train replaces the current model with one trained on prices and db.
func (rc *Recommender) Train(prices []decimal.Decimal, db [][]int) (*Model, error) {
	startTime := time.Now()
	conf := rc.getConfig()
	if err := conf.Scoring.Validate(); err != nil {
		return nil, err
	}
	m, err := Train(prices, db, conf.Mining)
	if err != nil {
		return nil, err
	}
	rc.SetModel(m)
	metrics.RecordLatency(metrics.LatencyTrain, float64(time.Since(startTime).Milliseconds()))
	metrics.CountInt(metrics.CountTrainRules, int64(len(m.Rules)))
	metrics.CountInt(metrics.CountTrainItemsets, int64(m.Itemsets.Len()))
	return m, nil
}

// SetModel atomically swaps in m, e.g. a model loaded from storage.
func (rc *Recommender) SetModel(m *Model) {
	rc.stateLock.Lock()
	rc.model = m
	rc.stateLock.Unlock()

	if c := rc.getCache(); c != nil {
		c.Purge()
	}
	log.WithFields(log.Fields{"model": m.Info()}).Info("Setting New Model")
}

func (rc *Recommender) GetModel() *Model {
	rc.stateLock.RLock()
	defer rc.stateLock.RUnlock()
	return rc.model
}

// Recommend ranks up to maxRecommendations items for cart against the current model.
func (rc *Recommender) Recommend(cart []int, maxRecommendations int) ([]int, error) {
	startTime := time.Now()
	metrics.Increment(metrics.IncrRecommendRequest)
	m := rc.GetModel()
	if m == nil {
		return []int{}, nil
	}

	key := getRecommendationCacheKey(m.Id, cart, maxRecommendations)
	c := rc.getCache()
	if c != nil {
		if cached, ok := c.Get(key); ok {
			metrics.Increment(metrics.IncrRecommendCacheHit)
			return copyItems(cached.([]int)), nil
		}
	}

	items, err := Recommend(m, cart, maxRecommendations, rc.getConfig().Scoring)
	if err != nil {
		return nil, err
	}
	if c != nil {
		c.Add(key, copyItems(items))
	}

	metrics.RecordLatency(metrics.LatencyRecommend, float64(time.Since(startTime).Milliseconds()))
	log.WithFields(log.Fields{
		"model_id":   m.Id,
		"cart":       cart,
		"items":      items,
		"time_taken": time.Since(startTime).Microseconds(),
	}).Debug("Recommendation computed")
	return items, nil
}

// getRecommendationCacheKey ignores cart order and duplicates, as Recommend does.
func getRecommendationCacheKey(modelId string, cart []int, maxRecommendations int) string {
	return fmt.Sprintf("%s:%s:%d", modelId, U.IntsToString(U.SortedUniqueInts(cart), ","), maxRecommendations)
}

func copyItems(items []int) []int {
	res := make([]int, len(items))
	copy(res, items)
	return res
}
