package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Service writes reconciled shift reports to object storage so that
// finalized grids survive beyond the live database.
type Service struct {
	client *minio.Client
	bucket string
}

// New connects to the object store and makes sure the bucket exists.
// Returns nil with an error when the endpoint is unreachable; callers
// should run without archiving in that case.
func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Service, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", bucket, err)
		}
		log.Printf("archive: created bucket %s", bucket)
	}

	return &Service{client: client, bucket: bucket}, nil
}

// PutGrid stores a reconciled grid as JSON under
// reports/<scopeKey>/<unix>.json and returns the object key.
func (s *Service) PutGrid(ctx context.Context, scopeKey string, grid any) (string, error) {
	data, err := json.MarshalIndent(grid, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal grid: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%d.json", scopeKey, time.Now().Unix())
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return key, nil
}
