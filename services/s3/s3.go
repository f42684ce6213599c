package s3

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	"recommender/filestore"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	log "github.com/sirupsen/logrus"
)

const (
	separator = "/"
)

var _ filestore.FileManager = (*S3Driver)(nil)

type S3Driver struct {
	s3         *s3.S3
	BucketName string
	Region     string
}

func New(bucketName, region string) (*S3Driver, error) {
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &S3Driver{s3: s3.New(sess), BucketName: bucketName, Region: region}, nil
}

// key joins dir and fileName. Dirs returned by the path helpers already end with separator.
func key(dir, fileName string) string {
	if dir == "" || dir[len(dir)-1:] == separator {
		return dir + fileName
	}
	return dir + separator + fileName
}

func (sd *S3Driver) Create(dir, fileName string, reader io.Reader) error {
	logCtx := log.WithFields(log.Fields{
		"Dir":        dir,
		"FileName":   fileName,
		"BucketName": sd.BucketName,
		"Region":     sd.Region,
	})
	logCtx.Debug("S3Driver Creating file")

	// PutObject needs a seekable body.
	content, err := ioutil.ReadAll(reader)
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(sd.BucketName),
		Body:   bytes.NewReader(content),
		Key:    aws.String(key(dir, fileName)),
	}
	_, err = sd.s3.PutObject(input)
	if err != nil {
		logCtx.WithError(err).Error("Failed to put object")
	}
	return err
}

func (sd *S3Driver) Get(dir, fileName string) (io.ReadCloser, error) {
	input := s3.GetObjectInput{
		Bucket: aws.String(sd.BucketName),
		Key:    aws.String(key(dir, fileName)),
	}
	op, err := sd.s3.GetObject(&input)
	if err != nil {
		return nil, err
	}
	return op.Body, nil
}

func (sd *S3Driver) GetBucketName() string {
	return sd.BucketName
}

func (sd *S3Driver) GetDatasetDir(dataset string) string {
	return fmt.Sprintf("datasets/%s/", dataset)
}

func (sd *S3Driver) GetDatasetPricesFilePathAndName(dataset string) (string, string) {
	return sd.GetDatasetDir(dataset), "prices.txt"
}

func (sd *S3Driver) GetDatasetTransactionsFilePathAndName(dataset string) (string, string) {
	return sd.GetDatasetDir(dataset), "transactions.txt"
}

func (sd *S3Driver) GetModelDir(modelId string) string {
	return fmt.Sprintf("models/%s/", modelId)
}

func (sd *S3Driver) GetModelInfoFilePathAndName(modelId string) (string, string) {
	return sd.GetModelDir(modelId), fmt.Sprintf("info_%s.txt", modelId)
}

func (sd *S3Driver) GetModelItemsetsFilePathAndName(modelId string) (string, string) {
	return sd.GetModelDir(modelId), fmt.Sprintf("itemsets_%s.txt", modelId)
}

func (sd *S3Driver) GetModelRulesFilePathAndName(modelId string) (string, string) {
	return sd.GetModelDir(modelId), fmt.Sprintf("rules_%s.txt", modelId)
}
