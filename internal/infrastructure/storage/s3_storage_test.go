package storage

import (
	"testing"
	"time"

	"github.com/bizlens/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewS3ArchiveStorage_NilConfig(t *testing.T) {
	storage, err := NewS3ArchiveStorage(nil)
	require.Error(t, err)
	assert.Nil(t, storage)
	assert.Contains(t, err.Error(), "configuration is required")
}

func TestNewS3ArchiveStorage_MissingBucket(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Region: "us-east-1",
	}
	storage, err := NewS3ArchiveStorage(cfg)
	require.Error(t, err)
	assert.Nil(t, storage)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestNewS3ArchiveStorage_PartialCredentials(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Bucket:      "bizlens-archives",
		AccessKeyID: "minioadmin",
	}
	storage, err := NewS3ArchiveStorage(cfg)
	require.Error(t, err)
	assert.Nil(t, storage)
	assert.Contains(t, err.Error(), "both access key id and secret access key")
}

func TestNewS3ArchiveStorage_ValidConfig(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Bucket:          "bizlens-archives",
		Region:          "eu-west-1",
		Endpoint:        "localhost:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UsePathStyle:    true,
	}
	storage, err := NewS3ArchiveStorage(cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NotNil(t, storage)
	assert.Equal(t, "bizlens-archives", storage.GetBucket())
	assert.Equal(t, 15*time.Minute, storage.presignExpiration)
}

func TestNewS3ArchiveStorage_DefaultRegion(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Bucket: "bizlens-archives",
	}
	storage, err := NewS3ArchiveStorage(cfg)
	require.NoError(t, err)
	require.NotNil(t, storage)
}

func TestNewS3ArchiveStorage_CustomPresignExpiration(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Bucket: "bizlens-archives",
	}
	storage, err := NewS3ArchiveStorage(cfg, WithPresignExpiration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, storage.presignExpiration)
}
