package filestore

import (
	"io"
)

// FileManager abstracts where datasets and trained models live: local disk or a cloud bucket.
type FileManager interface {
	Create(dir, fileName string, reader io.Reader) error
	Get(dir, fileName string) (io.ReadCloser, error)
	GetBucketName() string
	GetDatasetDir(dataset string) string
	GetDatasetPricesFilePathAndName(dataset string) (string, string)
	GetDatasetTransactionsFilePathAndName(dataset string) (string, string)
	GetModelDir(modelId string) string
	GetModelInfoFilePathAndName(modelId string) (string, string)
	GetModelItemsetsFilePathAndName(modelId string) (string, string)
	GetModelRulesFilePathAndName(modelId string) (string, string)
}
