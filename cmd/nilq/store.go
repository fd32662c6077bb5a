package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/nilq/blobstore"
	miniostore "github.com/hupe1980/nilq/blobstore/minio"
	s3store "github.com/hupe1980/nilq/blobstore/s3"
	"github.com/hupe1980/nilq/checkpoint"
	"github.com/hupe1980/nilq/internal/compress"
	"github.com/hupe1980/nilq/resource"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// openBlobStore connects to the configured checkpoint store. It returns nil
// when checkpoints are disabled.
func openBlobStore(ctx context.Context, c CheckpointConfig) (blobstore.BlobStore, error) {
	switch c.Store {
	case "":
		return nil, nil
	case "local":
		return blobstore.NewLocalStore(c.Dir), nil
	case "s3":
		awsCfg, err := s3store.LoadConfig(ctx, c.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		store := s3store.NewStore(awss3.NewFromConfig(awsCfg), c.Bucket, c.Prefix)
		if c.Table == "" {
			return store, nil
		}
		baseURI := fmt.Sprintf("s3://%s/%s", c.Bucket, c.Prefix)
		return s3store.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), c.Table, baseURI), nil
	case "minio":
		client, err := minio.New(c.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
			Secure: c.Secure,
			Region: c.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return miniostore.NewStore(client, c.Bucket, c.Prefix), nil
	}
	return nil, fmt.Errorf("unknown checkpoint store %q", c.Store)
}

// openCheckpoints wraps the configured blob store in a checkpoint store.
func openCheckpoints(ctx context.Context, c CheckpointConfig, rc *resource.Controller) (*checkpoint.Store, error) {
	blobs, err := openBlobStore(ctx, c)
	if err != nil || blobs == nil {
		return nil, err
	}
	opts := []checkpoint.Option{checkpoint.WithResourceController(rc), checkpoint.WithKeep(c.Keep)}
	if c.Compression != "" {
		t, err := compress.ParseType(c.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, checkpoint.WithCompression(t))
	}
	return checkpoint.New(blobs, opts...), nil
}
