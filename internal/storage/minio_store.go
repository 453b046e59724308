package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	gobreaker "github.com/sony/gobreaker/v2"

	"foodgram/internal/config"
	"foodgram/internal/logging"
	"foodgram/internal/metrics"
)

const breakerName = "object-storage"

// ObjectClient is the subset of *minio.Client the store needs.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioStore saves images as objects and hands out their public URLs. Calls
// pass through a circuit breaker so a dead object store fails fast.
type MinioStore struct {
	client    ObjectClient
	bucket    string
	publicURL string
	breaker   *gobreaker.CircuitBreaker[any]
}

func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}

	store := NewMinioStoreWithClient(client, cfg.Bucket, cfg.PublicURL)
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func NewMinioStoreWithClient(client ObjectClient, bucket, publicURL string) *MinioStore {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &MinioStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		breaker:   cb,
	}
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	_, err := s.breaker.Execute(func() (any, error) {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, nil
		}
		return nil, s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})
	if err != nil {
		return fmt.Errorf("ensure bucket %s failed: %w", s.bucket, err)
	}
	return nil
}

// SaveImage decodes a data URI and uploads it under prefix. It returns the
// public URL of the stored object.
func (s *MinioStore) SaveImage(ctx context.Context, prefix, dataURI string) (string, error) {
	img, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.%s", strings.Trim(prefix, "/"), uuid.NewString(), img.Ext)
	_, err = s.breaker.Execute(func() (any, error) {
		info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(img.Data), int64(len(img.Data)),
			minio.PutObjectOptions{ContentType: img.ContentType})
		return info, err
	})
	if err != nil {
		return "", fmt.Errorf("upload image failed: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

// DeleteImage removes the object behind a URL returned by SaveImage. URLs not
// owned by this store are ignored.
func (s *MinioStore) DeleteImage(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return nil
	}
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	})
	if err != nil {
		return fmt.Errorf("remove image failed: %w", err)
	}
	return nil
}

// Ping reports whether the bucket is reachable.
func (s *MinioStore) Ping(ctx context.Context) error {
	if s.breaker.State() == gobreaker.StateOpen {
		return gobreaker.ErrOpenState
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("bucket missing")
	}
	return nil
}
