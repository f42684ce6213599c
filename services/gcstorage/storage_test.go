package gcstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectPaths(t *testing.T) {
	// paths are computed without a client
	gcsd := &GCSDriver{BucketName: "recommender-models"}
	assert.Equal(t, "recommender-models", gcsd.GetBucketName())

	path, name := gcsd.GetDatasetTransactionsFilePathAndName("groceries")
	assert.Equal(t, "datasets/groceries/", path)
	assert.Equal(t, "transactions.txt", name)

	path, name = gcsd.GetModelRulesFilePathAndName("abc")
	assert.Equal(t, "models/abc/", path)
	assert.Equal(t, "rules_abc.txt", name)
}
