package main

import (
	"flag"
	"fmt"

	"recommender/config"
	"recommender/metrics"
	"recommender/recommender"
	"recommender/rules"
	"recommender/services"
	"recommender/store"

	log "github.com/sirupsen/logrus"
)

// Offline training job: reads a dataset from the bucket, trains, persists the model.
func main() {
	configFile := flag.String("config", "", "Optional: json config file, merged over the defaults")
	envFlag := flag.String("env", "", "Optional: overrides env of the config")
	bucketName := flag.String("bucket_name", "", "")
	cloudProvider := flag.String("cloud_provider", "", "disk, gcs or s3")
	dataset := flag.String("dataset", "", "Dataset to train on")
	minSupportCount := flag.Int("min_support_count", 0, "Optional: absolute support threshold, replaces min_support")
	numWorkers := flag.Int("num_routines", 0, "Optional: mining workers")
	topRules := flag.Int("top_rules", 5, "Number of strongest rules to log")

	flag.Parse()

	if *dataset == "" {
		panic(fmt.Errorf("dataset is required"))
	}

	conf, err := config.LoadFromFile(*configFile)
	if err != nil {
		panic(err)
	}
	if *envFlag != "" {
		conf.Env = *envFlag
	}
	if *bucketName != "" {
		conf.BucketName = *bucketName
	}
	if *cloudProvider != "" {
		conf.CloudProvider = *cloudProvider
	}
	if *minSupportCount > 0 {
		conf.Mining.MinSupport = 0
		conf.Mining.MinSupportCount = *minSupportCount
	}
	if *numWorkers > 0 {
		conf.Mining.Workers = *numWorkers
	}
	if err := config.ApplyEnv(&conf); err != nil {
		panic(err)
	}
	if err := conf.Validate(); err != nil {
		panic(err)
	}
	config.InitLogging(conf.Env)

	if exporter := metrics.InitMetrics(conf.Env, "train_job", conf.MetricsProjectID, ""); exporter != nil {
		defer exporter.Flush()
	}

	diskManager, cloudManager, err := services.NewFileManagers(conf)
	if err != nil {
		log.WithError(err).Fatal("Failed to init file managers")
	}
	ms, err := store.New(conf.ModelCacheSize, diskManager, cloudManager)
	if err != nil {
		log.WithError(err).Fatal("Failed to init model store")
	}

	prices, db, err := ms.GetDataset(*dataset)
	if err != nil {
		log.WithError(err).Fatal("Failed to read dataset")
	}

	rc := recommender.New(conf)
	m, err := rc.Train(prices, db)
	if err != nil {
		log.WithError(err).Fatal("Training failed")
	}
	if err := ms.PutModel(m); err != nil {
		log.WithError(err).Fatal("Failed to persist model")
	}

	log.WithFields(log.Fields{
		"dataset":        *dataset,
		"model":          m.Info(),
		"itemsetsBySize": m.Itemsets.CountBySize(),
		"topRules":       rules.TopRules(m.Rules, *topRules),
	}).Info("Successfully trained model")
}
