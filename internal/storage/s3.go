package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config addresses an S3-compatible bucket (AWS, R2, MinIO).
type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	KeyPrefix string
	PathStyle bool
}

// ObjectPutter is the slice of *s3.Client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

func NewS3Store(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewS3StoreWithClient(client, cfg.Bucket, cfg.KeyPrefix, logger), nil
}

func NewS3StoreWithClient(client ObjectPutter, bucket, prefix string, logger *slog.Logger) *S3Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix != "" {
		k = path.Join(s.prefix, k)
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(k),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		s.logger.Error("storage.s3.put_failed", "bucket", s.bucket, "key", k, "error", err)
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	s.logger.Debug("storage.s3.saved", "bucket", s.bucket, "key", k, "bytes", len(data))
	return fmt.Sprintf("s3://%s/%s", s.bucket, k), nil
}
