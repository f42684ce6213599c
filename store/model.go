package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"recommender/eclat"
	"recommender/filestore"
	"recommender/recommender"
	"recommender/rules"

	cache "github.com/hashicorp/golang-lru"
	E "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	IdSeparator = ":"
)

// ModelStore persists trained models and reads datasets. Models are read
// through an LRU cache, then local disk, then the cloud bucket; a model
// fetched from the cloud is written back to disk.
type ModelStore struct {
	diskFileManager  filestore.FileManager
	cloudFileManager filestore.FileManager

	modelCache *cache.Cache
}

func New(modelCacheSize int, diskManager, cloudManager filestore.FileManager) (*ModelStore, error) {
	if modelCacheSize <= 0 {
		modelCacheSize = 1
	}
	modelCache, err := cache.New(modelCacheSize)
	if err != nil {
		return nil, err
	}
	return &ModelStore{
		diskFileManager:  diskManager,
		cloudFileManager: cloudManager,
		modelCache:       modelCache,
	}, nil
}

func getModelCacheKey(modelId string) string {
	return fmt.Sprintf("%s%s%s", "model", IdSeparator, modelId)
}

func (ms *ModelStore) GetCloudManager() filestore.FileManager {
	return ms.cloudFileManager
}

// PutModel writes the model to the cloud bucket and to disk, and caches it.
func (ms *ModelStore) PutModel(m *recommender.Model) error {
	if m == nil || m.Id == "" {
		return E.New("cannot persist a model without id")
	}
	logCtx := log.WithField("mid", m.Id)
	logCtx.Debugln("[ModelStore] PutModel")

	startTime := time.Now()
	if err := putModelToFileManager(ms.cloudFileManager, m); err != nil {
		return E.Wrap(err, fmt.Sprintf("Failed to write model %s to cloud", m.Id))
	}
	if ms.diskFileManager != nil {
		if err := putModelToFileManager(ms.diskFileManager, m); err != nil {
			logCtx.WithError(err).Error("Failed to write model to disk")
		}
	}
	ms.modelCache.Add(getModelCacheKey(m.Id), m)
	logCtx.WithField("time_taken", time.Since(startTime).Milliseconds()).Info("Model persisted")
	return nil
}

// GetModel returns the model with modelId, which is then cached.
func (ms *ModelStore) GetModel(modelId string) (*recommender.Model, error) {
	logCtx := log.WithField("mid", modelId)
	logCtx.Debugln("[ModelStore] GetModel")

	if mIface, ok := ms.modelCache.Get(getModelCacheKey(modelId)); ok {
		if m, ok := mIface.(*recommender.Model); ok {
			return m, nil
		}
	}

	writeToDisk := false
	var m *recommender.Model
	var err error
	if ms.diskFileManager != nil {
		m, err = getModelFromFileManager(ms.diskFileManager, modelId)
	} else {
		err = os.ErrNotExist
	}
	if err != nil {
		if !os.IsNotExist(E.Cause(err)) {
			return nil, err
		}
		writeToDisk = ms.diskFileManager != nil
		m, err = getModelFromFileManager(ms.cloudFileManager, modelId)
		if err != nil {
			return nil, E.Wrap(err, fmt.Sprintf("Failed to read model %s", modelId))
		}
	}

	ms.modelCache.Add(getModelCacheKey(modelId), m)
	if writeToDisk {
		if err := putModelToFileManager(ms.diskFileManager, m); err != nil {
			logCtx.WithError(err).Error("Failed to write model to disk")
		}
	}
	return m, nil
}

// GetDataset reads the prices and transactions of dataset from the cloud bucket.
func (ms *ModelStore) GetDataset(dataset string) ([]decimal.Decimal, [][]int, error) {
	fm := ms.cloudFileManager
	path, fName := fm.GetDatasetPricesFilePathAndName(dataset)
	pricesFile, err := fm.Get(path, fName)
	if err != nil {
		return nil, nil, E.Wrap(err, fmt.Sprintf("Failed to open prices of dataset %s", dataset))
	}
	defer pricesFile.Close()
	prices, err := ReadPrices(pricesFile)
	if err != nil {
		return nil, nil, E.Wrap(err, fmt.Sprintf("Failed to read prices of dataset %s", dataset))
	}

	path, fName = fm.GetDatasetTransactionsFilePathAndName(dataset)
	transactionsFile, err := fm.Get(path, fName)
	if err != nil {
		return nil, nil, E.Wrap(err, fmt.Sprintf("Failed to open transactions of dataset %s", dataset))
	}
	defer transactionsFile.Close()
	db, err := ReadTransactions(transactionsFile)
	if err != nil {
		return nil, nil, E.Wrap(err, fmt.Sprintf("Failed to read transactions of dataset %s", dataset))
	}

	log.WithFields(log.Fields{
		"dataset":      dataset,
		"items":        len(prices),
		"transactions": len(db),
	}).Info("Dataset loaded")
	return prices, db, nil
}

// PutDataset writes a dataset to the cloud bucket.
func (ms *ModelStore) PutDataset(dataset string, prices []decimal.Decimal, db [][]int) error {
	fm := ms.cloudFileManager
	reader, err := CreateReaderFromPrices(prices)
	if err != nil {
		return err
	}
	path, fName := fm.GetDatasetPricesFilePathAndName(dataset)
	if err := fm.Create(path, fName, reader); err != nil {
		return E.Wrap(err, fmt.Sprintf("Failed to write prices of dataset %s", dataset))
	}

	reader, err = CreateReaderFromTransactions(db)
	if err != nil {
		return err
	}
	path, fName = fm.GetDatasetTransactionsFilePathAndName(dataset)
	if err := fm.Create(path, fName, reader); err != nil {
		return E.Wrap(err, fmt.Sprintf("Failed to write transactions of dataset %s", dataset))
	}
	return nil
}

func putModelToFileManager(fm filestore.FileManager, m *recommender.Model) error {
	infoBytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	path, fName := fm.GetModelInfoFilePathAndName(m.Id)
	if err := fm.Create(path, fName, bytes.NewReader(infoBytes)); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := eclat.WriteFrequentItemsets(&buf, m.Itemsets); err != nil {
		return err
	}
	path, fName = fm.GetModelItemsetsFilePathAndName(m.Id)
	if err := fm.Create(path, fName, &buf); err != nil {
		return err
	}

	var rulesBuf bytes.Buffer
	if err := rules.WriteRules(&rulesBuf, m.Rules); err != nil {
		return err
	}
	path, fName = fm.GetModelRulesFilePathAndName(m.Id)
	return fm.Create(path, fName, &rulesBuf)
}

func getModelFromFileManager(fm filestore.FileManager, modelId string) (*recommender.Model, error) {
	path, fName := fm.GetModelInfoFilePathAndName(modelId)
	infoFile, err := fm.Get(path, fName)
	if err != nil {
		return nil, err
	}
	defer infoFile.Close()

	var m recommender.Model
	if err := json.NewDecoder(infoFile).Decode(&m); err != nil {
		return nil, E.Wrap(err, "Failed to decode model info")
	}

	path, fName = fm.GetModelItemsetsFilePathAndName(modelId)
	itemsetsFile, err := fm.Get(path, fName)
	if err != nil {
		return nil, err
	}
	defer itemsetsFile.Close()
	m.Itemsets, err = eclat.ReadFrequentItemsets(itemsetsFile, m.NumTransactions, m.MinSupportCount)
	if err != nil {
		return nil, E.Wrap(err, "Failed to read itemsets")
	}

	path, fName = fm.GetModelRulesFilePathAndName(modelId)
	rulesFile, err := fm.Get(path, fName)
	if err != nil {
		return nil, err
	}
	defer rulesFile.Close()
	m.Rules, err = rules.ReadRules(rulesFile)
	if err != nil {
		return nil, E.Wrap(err, "Failed to read rules")
	}
	return &m, nil
}
