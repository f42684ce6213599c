package recommendserver

import (
	"errors"
	"fmt"
	"net/http"

	cache "recommender/cache/redis"
	client "recommender/recommend_client"
	"recommender/metrics"
	"recommender/recommender"

	E "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func toClientModelInfo(info recommender.ModelInfo) client.ModelInfo {
	return client.ModelInfo{
		Id:              info.Id,
		TrainedAt:       info.TrainedAt,
		NumItems:        info.NumItems,
		NumTransactions: info.NumTransactions,
		MinSupportCount: info.MinSupportCount,
		MinConfidence:   info.MinConfidence,
		NumItemsets:     info.NumItemsets,
		NumRules:        info.NumRules,
	}
}

func (rs *RecommendServer) Train(
	r *http.Request, args *client.TrainRequest, result *client.TrainResponse) error {
	if args == nil {
		err := E.Wrap(errors.New("MissingParams"), "Train missing args")
		result.Error = err.Error()
		return err
	}
	if args.Dataset != "" && (len(args.Prices) > 0 || len(args.Transactions) > 0) {
		err := E.Wrap(errors.New("ConflictingParams"), "Train takes a dataset or inline data, not both")
		result.Error = err.Error()
		return err
	}
	metrics.Increment(metrics.IncrTrainRequest)

	var m *recommender.Model
	var err error
	if args.Dataset != "" {
		m, err = rs.TrainFromDataset(args.Dataset, args.Persist)
	} else {
		m, err = rs.TrainFromData(args.Prices, args.Transactions, args.Persist)
	}
	if err != nil {
		err = E.Wrap(err, fmt.Sprintf("Train failed, dataset: %q", args.Dataset))
		result.Error = err.Error()
		return err
	}

	result.ModelId = m.Id
	result.ModelInfo = toClientModelInfo(m.Info())
	return nil
}

func (rs *RecommendServer) Recommend(
	r *http.Request, args *client.RecommendRequest, result *client.RecommendResponse) error {
	if args == nil {
		err := E.Wrap(errors.New("MissingParams"), "Recommend missing args")
		result.Error = err.Error()
		return err
	}

	m := rs.recommender.GetModel()
	if m == nil {
		result.Items = []int{}
		return nil
	}
	result.ModelId = m.Id

	var key *cache.Key
	if cache.IsEnabled() {
		var err error
		key, err = cache.NewRecommendationKey(m.Id, args.Cart, args.MaxRecommendations)
		if err == nil {
			items, found, err := cache.GetItems(key)
			if err != nil {
				log.WithError(err).Error("Failed to get recommendation from redis")
			} else if found {
				metrics.Increment(metrics.IncrRecommendCacheHit)
				result.Items = items
				return nil
			}
		}
	}

	items, err := rs.recommender.Recommend(args.Cart, args.MaxRecommendations)
	if err != nil {
		err = E.Wrap(err, fmt.Sprintf("Recommend failed, ModelID: %s", m.Id))
		result.Error = err.Error()
		return err
	}
	result.Items = items

	// a concurrent swap means items may belong to a newer model
	if key != nil && rs.recommender.GetModel() == m {
		if err := cache.SetItems(key, items, float64(rs.conf.Redis.ExpirySeconds)); err != nil {
			log.WithError(err).Error("Failed to set recommendation in redis")
		}
	}
	return nil
}

func (rs *RecommendServer) LoadModel(
	r *http.Request, args *client.LoadModelRequest, result *client.LoadModelResponse) error {
	if args == nil || args.ModelId == "" {
		err := E.Wrap(errors.New("MissingParams"), "LoadModel missing param modelID")
		result.Error = err.Error()
		return err
	}

	m, err := rs.LoadModelById(args.ModelId)
	if err != nil {
		err = E.Wrap(err, fmt.Sprintf("LoadModel failed, ModelID: %s", args.ModelId))
		result.Error = err.Error()
		return err
	}
	result.ModelId = m.Id
	result.ModelInfo = toClientModelInfo(m.Info())
	return nil
}

func (rs *RecommendServer) GetModelInfo(
	r *http.Request, args *client.GetModelInfoRequest, result *client.GetModelInfoResponse) error {
	m := rs.recommender.GetModel()
	if m == nil {
		result.Ignored = true
		return nil
	}
	result.ModelId = m.Id
	result.ModelInfo = toClientModelInfo(m.Info())
	return nil
}
