// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// S3Config holds the object storage settings.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	Timeout         time.Duration
}

// PutObjectAPI is the subset of [s3.Client] used by [S3Store].
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client. A custom endpoint (MinIO, R2, ...) switches
// the client to path-style addressing.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	options := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

// S3Store uploads staged files to an S3-compatible bucket.
type S3Store struct {
	client PutObjectAPI
	cfg    S3Config
	logger *zap.Logger
	now    func() time.Time
}

// NewS3Store returns an [Uploader] backed by client.
func NewS3Store(client PutObjectAPI, cfg S3Config, logger *zap.Logger) *S3Store {
	return &S3Store{client: client, cfg: cfg, logger: logger, now: time.Now}
}

// Upload puts file under prefix/yyyy/mm/<ksuid><ext>. It is bounded by the
// configured timeout and never retried.
func (s *S3Store) Upload(ctx context.Context, prefix string, file *LocalFile) (Asset, error) {
	if file == nil {
		return Asset{}, fmt.Errorf("storage: nothing to upload")
	}

	body, err := os.Open(file.Path)
	if err != nil {
		return Asset{}, fmt.Errorf("storage: failed to open staged file: %w", err)
	}
	defer body.Close()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	key := ObjectKey(prefix, s.now(), file.Ext())

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(file.Size),
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}

	started := s.now()
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("asset_upload_failed", zap.String("key", key), zap.Error(err))
		return Asset{}, fmt.Errorf("storage: put object %q: %w", key, err)
	}

	s.logger.Info("asset_uploaded",
		zap.String("key", key),
		zap.Int64("size", file.Size),
		zap.Duration("latency", s.now().Sub(started)),
	)

	return Asset{URL: s.publicURL(key), Key: key}, nil
}

// ObjectKey builds the storage key for an upload made at t.
func ObjectKey(prefix string, t time.Time, ext string) string {
	return fmt.Sprintf("%s/%04d/%02d/%s%s", strings.Trim(prefix, "/"), t.Year(), int(t.Month()), ksuid.New().String(), ext)
}

func (s *S3Store) publicURL(key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}
