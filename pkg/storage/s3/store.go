package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"leaderkill/pkg/storage"
)

func init() {
	storage.Register("s3", Open)
	storage.Register("aws", Open)
}

// API is the subset of the S3 client the store needs.
type API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps shared files as objects under a bucket prefix.
type S3Store struct {
	client API
	bucket string
	prefix string
}

// S3StoreConfig holds S3 configuration
type S3StoreConfig struct {
	Bucket          string
	Prefix          string // e.g., "jobstores/nightly/"
	Region          string
	Endpoint        string // For MinIO/local S3
	AccessKeyID     string
	SecretAccessKey string
}

// Open handles s3://bucket/prefix and aws:region:bucket[/prefix] locators.
func Open(ctx context.Context, loc storage.Locator, opts storage.Options) (storage.SharedStore, error) {
	cfg := S3StoreConfig{
		Region:          opts.AWSRegion,
		Endpoint:        opts.S3Endpoint,
		AccessKeyID:     opts.AWSAccessKeyID,
		SecretAccessKey: opts.AWSSecretAccessKey,
	}

	var path string
	switch loc.Scheme {
	case "aws":
		region, rest, ok := strings.Cut(loc.Body, ":")
		if !ok || region == "" {
			return nil, fmt.Errorf("%w: expected aws:<region>:<bucket>, got %q", storage.ErrNoSuchStore, loc.Raw)
		}
		cfg.Region = region
		path = rest
	default:
		path = strings.TrimPrefix(loc.Body, "//")
	}

	bucket, prefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return nil, fmt.Errorf("%w: s3 locator names no bucket", storage.ErrNoSuchStore)
	}
	cfg.Bucket = bucket
	cfg.Prefix = prefix

	return NewS3Store(ctx, cfg)
}

// NewS3Store builds an S3 client from the default AWS config chain.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	// Custom credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %w", storage.ErrUnavailable, err)
	}

	clientOpts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	}

	return NewFromClient(ctx, s3.NewFromConfig(awsCfg, clientOpts...), cfg.Bucket, cfg.Prefix)
}

// NewFromClient checks that the bucket exists and wraps the client.
func NewFromClient(ctx context.Context, client API, bucket, prefix string) (*S3Store, error) {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		if isMissing(err, "NotFound", "NoSuchBucket") {
			return nil, fmt.Errorf("%w: bucket %s", storage.ErrNoSuchStore, bucket)
		}
		return nil, fmt.Errorf("%w: failed to reach bucket %s: %w", storage.ErrUnavailable, bucket, err)
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) ReadSharedFile(ctx context.Context, name string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
	})
	if err != nil {
		if isMissing(err, "NoSuchKey", "NotFound") {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to get %s: %w", storage.ErrUnavailable, name, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", storage.ErrUnavailable, name, err)
	}
	return data, nil
}

func (s *S3Store) WriteSharedFile(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to put %s: %w", storage.ErrUnavailable, name, err)
	}
	return nil
}

func isMissing(err error, codes ...string) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &notFound) || errors.As(err, &noBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		for _, code := range codes {
			if apiErr.ErrorCode() == code {
				return true
			}
		}
	}
	return false
}
