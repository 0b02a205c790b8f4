package adaptor

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3ClientFactory is interface S3Client constructor
type S3ClientFactory func(region string) S3Client

// S3Client is interface of AWS S3 SDK
type S3Client interface {
	Upload(bucket, key string, body io.Reader, encoding string) error
}

type awsS3Client struct {
	uploader *s3manager.Uploader
}

// NewS3Client creates actual AWS S3 SDK client
func NewS3Client(region string) S3Client {
	ssn := session.Must(session.NewSession(&aws.Config{Region: aws.String(region)}))
	return &awsS3Client{
		uploader: s3manager.NewUploader(ssn),
	}
}

// Upload sends body by multipart upload
func (x *awsS3Client) Upload(bucket, key string, body io.Reader, encoding string) error {
	input := &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if encoding != "" {
		input.ContentEncoding = aws.String(encoding)
	}

	_, err := x.uploader.Upload(input)
	return err
}
