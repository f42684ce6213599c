package gcstorage

import (
	"context"
	"fmt"
	"io"

	"recommender/filestore"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*GCSDriver)(nil)

type GCSDriver struct {
	client     *storage.Client
	BucketName string
}

func New(bucketName string) (*GCSDriver, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	d := &GCSDriver{
		BucketName: bucketName,
		client:     client,
	}
	return d, nil
}

func (gcsd *GCSDriver) Create(dir, fileName string, reader io.Reader) error {
	ctx := context.Background()
	obj := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName)
	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, reader); err != nil {
		log.WithFields(log.Fields{"dir": dir, "file": fileName}).WithError(err).Error("Failed to write object")
		w.Close()
		return err
	}
	return w.Close()
}

func (gcsd *GCSDriver) Get(dir, fileName string) (io.ReadCloser, error) {
	ctx := context.Background()
	obj := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName)
	rc, err := obj.NewReader(ctx)
	return rc, err
}

func (gcsd *GCSDriver) GetBucketName() string {
	return gcsd.BucketName
}

func (gcsd *GCSDriver) GetDatasetDir(dataset string) string {
	return fmt.Sprintf("datasets/%s/", dataset)
}

func (gcsd *GCSDriver) GetDatasetPricesFilePathAndName(dataset string) (string, string) {
	return gcsd.GetDatasetDir(dataset), "prices.txt"
}

func (gcsd *GCSDriver) GetDatasetTransactionsFilePathAndName(dataset string) (string, string) {
	return gcsd.GetDatasetDir(dataset), "transactions.txt"
}

func (gcsd *GCSDriver) GetModelDir(modelId string) string {
	return fmt.Sprintf("models/%s/", modelId)
}

func (gcsd *GCSDriver) GetModelInfoFilePathAndName(modelId string) (string, string) {
	path := gcsd.GetModelDir(modelId)
	return path, fmt.Sprintf("info_%s.txt", modelId)
}

func (gcsd *GCSDriver) GetModelItemsetsFilePathAndName(modelId string) (string, string) {
	path := gcsd.GetModelDir(modelId)
	return path, fmt.Sprintf("itemsets_%s.txt", modelId)
}

func (gcsd *GCSDriver) GetModelRulesFilePathAndName(modelId string) (string, string) {
	path := gcsd.GetModelDir(modelId)
	return path, fmt.Sprintf("rules_%s.txt", modelId)
}
