package services

import (
	"fmt"

	"recommender/config"
	"recommender/filestore"
	serviceDisk "recommender/services/disk"
	serviceGCS "recommender/services/gcstorage"
	serviceS3 "recommender/services/s3"

	log "github.com/sirupsen/logrus"
)

// NewFileManagers returns the local disk manager and the bucket manager for conf.CloudProvider.
func NewFileManagers(conf config.Configuration) (filestore.FileManager, filestore.FileManager, error) {
	diskManager := serviceDisk.New(conf.DiskBaseDir)

	var cloudManager filestore.FileManager
	switch conf.CloudProvider {
	case config.CloudProviderDisk:
		cloudManager = serviceDisk.New(conf.BucketName)
	case config.CloudProviderGCS:
		gcsManager, err := serviceGCS.New(conf.BucketName)
		if err != nil {
			log.WithError(err).Errorln("Failed to init New GCS Client")
			return nil, nil, err
		}
		cloudManager = gcsManager
	case config.CloudProviderS3:
		s3Manager, err := serviceS3.New(conf.BucketName, conf.AWSRegion)
		if err != nil {
			log.WithError(err).Errorln("Failed to init New S3 Client")
			return nil, nil, err
		}
		cloudManager = s3Manager
	default:
		return nil, nil, fmt.Errorf("cloud provider [ %s ] not recognised", conf.CloudProvider)
	}
	return diskManager, cloudManager, nil
}
