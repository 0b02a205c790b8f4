package models_test

import (
	"testing"

	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Object(t *testing.T) {
	t.Run("Encode and Decode", func(tt *testing.T) {
		obj := models.NewS3Object("ap-northeast-1", "blue", "path/to:obj")
		decoded, err := models.DecodeS3Object(obj.Encode())
		require.NoError(tt, err)
		assert.Equal(tt, obj, *decoded)
	})

	t.Run("Decode invalid format", func(tt *testing.T) {
		_, err := models.DecodeS3Object("blue")
		assert.Error(tt, err)
		_, err = models.DecodeS3Object("blue@ap-northeast-1")
		assert.Error(tt, err)
	})

	t.Run("AppendKey", func(tt *testing.T) {
		obj := models.NewS3Object("r", "b", "")
		obj.AppendKey("a.parquet")
		assert.Equal(tt, "a.parquet", obj.Key)

		obj = models.NewS3Object("r", "b", "out/")
		obj.AppendKey("a.parquet")
		assert.Equal(tt, "out/a.parquet", obj.Key)

		obj = models.NewS3Object("r", "b", "out")
		obj.AppendKey("a.parquet")
		assert.Equal(tt, "out/a.parquet", obj.Key)
	})
}
