package adaptor_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/pmcoa/internal/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Mock(t *testing.T) {
	t.Run("Can get object saved by Upload", func(tt *testing.T) {
		bucket := uuid.New().String()
		client := mock.NewS3Client("test")
		require.NoError(tt, client.Upload(bucket, "k1/obj", strings.NewReader("abc"), ""))

		raw, ok := client.(*mock.S3Client).Get(bucket, "k1/obj")
		require.True(tt, ok)
		assert.Equal(tt, "abc", string(raw))
	})

	t.Run("Can not get object not uploaded", func(tt *testing.T) {
		bucket := uuid.New().String()
		client := mock.NewS3Client("test").(*mock.S3Client)

		_, ok := client.Get(bucket, "k1/obj")
		assert.False(tt, ok)
		assert.Equal(tt, 0, len(client.Keys(bucket)))
	})

	t.Run("Objects are shared between clients", func(tt *testing.T) {
		bucket := uuid.New().String()
		require.NoError(tt, mock.NewS3Client("r1").Upload(bucket, "k", strings.NewReader("x"), "gzip"))

		assert.Equal(tt, []string{"k"}, mock.NewS3Client("r2").(*mock.S3Client).Keys(bucket))
	})
}
