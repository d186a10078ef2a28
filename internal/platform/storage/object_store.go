// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package storage provides access to S3-compatible object storage for book artwork.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const bucketCheckTimeout = 5 * time.Second

// ObjectStore is the subset of object storage the domain needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// MinioConfig carries the connection settings for [NewMinioStore].
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore implements [ObjectStore] on MinIO or any S3-compatible service.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and creates the bucket when it is missing.
func NewMinioStore(ctx context.Context, cfg MinioConfig, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to init minio client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(checkCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: failed to create bucket %q: %w", cfg.Bucket, err)
		}
		logger.Info("storage_bucket_created", slog.String("bucket", cfg.Bucket))
	}

	logger.Info("storage_connected",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("bucket", cfg.Bucket),
	)

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads an object.
func (store *MinioStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := store.client.PutObject(ctx, store.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("storage: failed to put %q: %w", key, err)
	}
	return nil
}

// PresignGet generates a pre-signed GET URL valid for expiry.
func (store *MinioStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	signed, err := store.client.PresignedGetObject(ctx, store.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("storage: failed to presign %q: %w", key, err)
	}
	return signed.String(), nil
}

// Delete removes an object. Removing a missing key is not an error.
func (store *MinioStore) Delete(ctx context.Context, key string) error {
	if err := store.client.RemoveObject(ctx, store.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: failed to delete %q: %w", key, err)
	}
	return nil
}

// Ping checks that the bucket is reachable. Used by the readiness probe.
func (store *MinioStore) Ping(ctx context.Context) error {
	if _, err := store.client.BucketExists(ctx, store.bucket); err != nil {
		return fmt.Errorf("storage: ping failed: %w", err)
	}
	return nil
}
