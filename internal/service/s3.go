package service

import (
	"os"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/m-mizutani/pmcoa/internal/adaptor"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// S3Service is accessor to S3
type S3Service struct {
	newS3 adaptor.S3ClientFactory
}

// NewS3Service is constructor of S3Service
func NewS3Service(newS3 adaptor.S3ClientFactory) *S3Service {
	return &S3Service{
		newS3: newS3,
	}
}

// UploadFileToS3 upload a specified local file to S3
func (x *S3Service) UploadFileToS3(filePath string, dst models.S3Object) error {
	fd, err := os.Open(filePath)
	if err != nil {
		return errors.Wrapf(err, "Fail to open a file: %s", filePath)
	}
	defer fd.Close()

	client := x.newS3(dst.Region)
	if err := client.Upload(dst.Bucket, dst.Key, fd, ""); err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			return errors.Wrapf(aerr, "Fail to upload a file in AWS: %s/%s (%s)", dst.Bucket, dst.Key, aerr.Code())
		}
		return errors.Wrapf(err, "Fail to upload a file: %s/%s", dst.Bucket, dst.Key)
	}

	logger.WithFields(logrus.Fields{
		"path":   filePath,
		"bucket": dst.Bucket,
		"key":    dst.Key,
	}).Debug("Uploaded a file")

	return nil
}
