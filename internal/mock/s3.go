package mock

import (
	"io"

	"github.com/m-mizutani/pmcoa/internal/adaptor"
)

// NewS3Client is constructor of S3 Mock
func NewS3Client(region string) adaptor.S3Client {
	return &S3Client{
		data: mockS3ClientDataStore,
	}
}

// S3Client is on memory S3Client mock
type S3Client struct {
	data map[string]map[string][]byte
}

var mockS3ClientDataStore = map[string]map[string][]byte{}

// Upload of S3Client put data from io.Reader
func (x *S3Client) Upload(bucket, key string, body io.Reader, encoding string) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	bkt, ok := x.data[bucket]
	if !ok {
		bkt = map[string][]byte{}
		x.data[bucket] = bkt
	}
	bkt[key] = raw
	return nil
}

// Get returns uploaded data. ok is false if the object does not exist.
func (x *S3Client) Get(bucket, key string) (raw []byte, ok bool) {
	raw, ok = x.data[bucket][key]
	return
}

// Keys returns all keys in the bucket
func (x *S3Client) Keys(bucket string) []string {
	var keys []string
	for k := range x.data[bucket] {
		keys = append(keys, k)
	}
	return keys
}
