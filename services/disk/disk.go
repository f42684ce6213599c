package disk

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"recommender/filestore"

	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*DiskDriver)(nil)

type DiskDriver struct {
	// This can be used as namespace
	// to differentiate files across multiple instances of DiskDriver
	// Analogus to bucket name
	baseDir string
}

func New(baseDir string) *DiskDriver {
	return &DiskDriver{baseDir: baseDir}
}

func MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (dd *DiskDriver) Create(path, fileName string, reader io.Reader) error {
	err := MkdirAll(path)
	if err != nil {
		log.WithError(err).Errorln("Failed to create dir")
		return err
	}

	file, err := os.Create(filepath.Join(path, fileName))
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, reader)
	return err
}

// Get opens a file in read only mode.
// Caller should take care of closing the returned io.ReadCloser.
func (dd *DiskDriver) Get(path, fileName string) (io.ReadCloser, error) {
	log.WithFields(log.Fields{
		"Path":     path,
		"FileName": fileName,
	}).Debug("DiskDriver Opening file")

	file, err := os.OpenFile(filepath.Join(path, fileName), os.O_RDONLY, 0444)
	return file, err
}

func (dd *DiskDriver) GetBucketName() string {
	return dd.baseDir
}

func (dd *DiskDriver) GetDatasetDir(dataset string) string {
	return fmt.Sprintf("%s/datasets/%s/", dd.baseDir, dataset)
}

func (dd *DiskDriver) GetDatasetPricesFilePathAndName(dataset string) (string, string) {
	return dd.GetDatasetDir(dataset), "prices.txt"
}

func (dd *DiskDriver) GetDatasetTransactionsFilePathAndName(dataset string) (string, string) {
	return dd.GetDatasetDir(dataset), "transactions.txt"
}

func (dd *DiskDriver) GetModelDir(modelId string) string {
	return fmt.Sprintf("%s/models/%s/", dd.baseDir, modelId)
}

func (dd *DiskDriver) GetModelInfoFilePathAndName(modelId string) (string, string) {
	return dd.GetModelDir(modelId), fmt.Sprintf("info_%s.txt", modelId)
}

func (dd *DiskDriver) GetModelItemsetsFilePathAndName(modelId string) (string, string) {
	return dd.GetModelDir(modelId), fmt.Sprintf("itemsets_%s.txt", modelId)
}

func (dd *DiskDriver) GetModelRulesFilePathAndName(modelId string) (string, string) {
	return dd.GetModelDir(modelId), fmt.Sprintf("rules_%s.txt", modelId)
}

// ListFiles List files present in a directory.
func (dd *DiskDriver) ListFiles(path string) []string {
	var files []string
	fileObjects, err := ioutil.ReadDir(path)
	if err != nil {
		log.WithError(err).Errorln("Failed to read directory contents")
		return files
	}

	for _, file := range fileObjects {
		files = append(files, filepath.Join(path, file.Name()))
	}
	return files
}
