package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"noticeboard-http-service/internal/infrastructure/config"
)

type s3FileStorage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
}

// NewS3FileStorage builds the bucket client from cfg. An S3 endpoint override
// (LocalStack, MinIO) switches to path-style addressing.
func NewS3FileStorage(ctx context.Context, cfg *config.Config) (FileStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3FileStorageFromClient(client, cfg.S3Bucket), nil
}

func NewS3FileStorageFromClient(client *s3.Client, bucketName string) FileStorage {
	return &s3FileStorage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
	}
}

func (s *s3FileStorage) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (*PresignedRequest, error) {
	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	return &PresignedRequest{
		URL:       request.URL,
		Key:       key,
		Method:    http.MethodPut,
		ExpiresAt: time.Now().Add(expires),
	}, nil
}

func (s *s3FileStorage) PresignDownload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error) {
	request, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return nil, fmt.Errorf("failed to presign get object: %w", err)
	}

	return &PresignedRequest{
		URL:       request.URL,
		Key:       key,
		Method:    http.MethodGet,
		ExpiresAt: time.Now().Add(expires),
	}, nil
}

func (s *s3FileStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

var _ FileStorage = (*s3FileStorage)(nil)
