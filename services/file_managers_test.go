package services

import (
	"testing"

	"recommender/config"
	serviceDisk "recommender/services/disk"

	"github.com/stretchr/testify/assert"
)

func TestNewFileManagersDisk(t *testing.T) {
	conf := config.Default()
	conf.DiskBaseDir = t.TempDir()
	conf.BucketName = t.TempDir()
	diskManager, cloudManager, err := NewFileManagers(conf)
	assert.Nil(t, err)
	assert.Equal(t, conf.DiskBaseDir, diskManager.GetBucketName())
	assert.Equal(t, conf.BucketName, cloudManager.GetBucketName())
	_, ok := cloudManager.(*serviceDisk.DiskDriver)
	assert.True(t, ok)
}

func TestNewFileManagersUnknownProvider(t *testing.T) {
	conf := config.Default()
	conf.CloudProvider = "ftp"
	_, _, err := NewFileManagers(conf)
	assert.NotNil(t, err)
}
