package recommendserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"recommender/config"
	"recommender/recommender"
	"recommender/rules"
	"recommender/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTopRules = 10
)

// RecommendServer serves recommendations from the latest trained or loaded model.
type RecommendServer struct {
	ip       string
	rpcPort  string
	httpPort string

	conf        config.Configuration
	recommender *recommender.Recommender
	store       *store.ModelStore
}

// New creates a server without a model; recommendations are empty until
// TrainFromData, TrainFromDataset or LoadModelById runs. ms may be nil, which
// disables persistence.
func New(conf config.Configuration, ms *store.ModelStore) *RecommendServer {
	return &RecommendServer{
		ip:          conf.IP,
		rpcPort:     conf.RPCPort,
		httpPort:    conf.HTTPPort,
		conf:        conf,
		recommender: recommender.New(conf),
		store:       ms,
	}
}

func (rs *RecommendServer) GetIp() string {
	return rs.ip
}

func (rs *RecommendServer) GetRPCPort() string {
	return rs.rpcPort
}

func (rs *RecommendServer) GetHTTPPort() string {
	return rs.httpPort
}

func (rs *RecommendServer) GetRecommender() *recommender.Recommender {
	return rs.recommender
}

func (rs *RecommendServer) GetStore() *store.ModelStore {
	return rs.store
}

var errNoStore = errors.New("model store not configured")

// TrainFromDataset trains on a dataset read through the model store.
func (rs *RecommendServer) TrainFromDataset(dataset string, persist bool) (*recommender.Model, error) {
	if rs.store == nil {
		return nil, errNoStore
	}
	prices, db, err := rs.store.GetDataset(dataset)
	if err != nil {
		return nil, err
	}
	return rs.TrainFromData(prices, db, persist)
}

// TrainFromData trains on inline data and optionally persists the new model.
func (rs *RecommendServer) TrainFromData(prices []decimal.Decimal, db [][]int, persist bool) (*recommender.Model, error) {
	m, err := rs.recommender.Train(prices, db)
	if err != nil {
		return nil, err
	}
	if persist {
		if rs.store == nil {
			return m, errNoStore
		}
		if err := rs.store.PutModel(m); err != nil {
			return m, err
		}
	}
	return m, nil
}

// LoadModelById swaps in a persisted model.
func (rs *RecommendServer) LoadModelById(modelId string) (*recommender.Model, error) {
	if rs.store == nil {
		return nil, errNoStore
	}
	m, err := rs.store.GetModel(modelId)
	if err != nil {
		return nil, err
	}
	rs.recommender.SetModel(m)
	return m, nil
}

func (rs *RecommendServer) DebugState(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"ip":      rs.GetIp(),
			"model":   rs.recommender.GetModel().Info(),
			"mining":  rs.conf.Mining,
			"scoring": rs.conf.Scoring,
		},
	})
}

// GetTopRules returns the strongest rules of the current model, ?k= limits the count.
func (rs *RecommendServer) GetTopRules(c *gin.Context) {
	k := DefaultTopRules
	if kStr := c.Query("k"); kStr != "" {
		var err error
		k, err = strconv.Atoi(kStr)
		if err != nil || k < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": fmt.Sprintf("invalid k %q", kStr)})
			return
		}
	}

	m := rs.recommender.GetModel()
	if m == nil {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": []rules.Rule{}})
		return
	}
	log.WithFields(log.Fields{"mid": m.Id, "k": k}).Debug("Fetching top rules")
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": rules.TopRules(m.Rules, k)})
}
