package main

import (
	"flag"
	"fmt"
	"io/ioutil"

	"recommender/config"
	"recommender/datagen"
	"recommender/services"
	"recommender/store"

	log "github.com/sirupsen/logrus"
)

// Writes a synthetic dataset described by a yaml file to the bucket.
func main() {
	configFile := flag.String("config", "", "Optional: json config file, merged over the defaults")
	datagenFile := flag.String("datagen_config", "", "yaml description of items and bundles")
	bucketName := flag.String("bucket_name", "", "")
	cloudProvider := flag.String("cloud_provider", "", "disk, gcs or s3")
	dataset := flag.String("dataset", "", "Name of the dataset to write")

	flag.Parse()

	if *datagenFile == "" || *dataset == "" {
		panic(fmt.Errorf("datagen_config and dataset are required"))
	}

	conf, err := config.LoadFromFile(*configFile)
	if err != nil {
		panic(err)
	}
	if *bucketName != "" {
		conf.BucketName = *bucketName
	}
	if *cloudProvider != "" {
		conf.CloudProvider = *cloudProvider
	}
	if err := conf.Validate(); err != nil {
		panic(err)
	}
	config.InitLogging(conf.Env)

	fileContents, err := ioutil.ReadFile(*datagenFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to read datagen config")
	}
	genConf, err := datagen.ParseConfig(fileContents)
	if err != nil {
		log.WithError(err).Fatal("Invalid datagen config")
	}
	prices, db, err := datagen.Generate(genConf)
	if err != nil {
		log.WithError(err).Fatal("Failed to generate dataset")
	}

	diskManager, cloudManager, err := services.NewFileManagers(conf)
	if err != nil {
		log.WithError(err).Fatal("Failed to init file managers")
	}
	ms, err := store.New(conf.ModelCacheSize, diskManager, cloudManager)
	if err != nil {
		log.WithError(err).Fatal("Failed to init model store")
	}
	if err := ms.PutDataset(*dataset, prices, db); err != nil {
		log.WithError(err).Fatal("Failed to write dataset")
	}
	log.WithFields(log.Fields{
		"dataset":      *dataset,
		"items":        len(prices),
		"transactions": len(db),
	}).Info("Dataset written")
}
