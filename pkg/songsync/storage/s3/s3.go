package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (MinIO)
	PartSize        int64  // Download part size in bytes (default: manager.DefaultDownloadPartSize)
	Concurrency     int    // Parallel part downloads (default: manager.DefaultDownloadConcurrency)
}

// Backend is an S3-compatible implementation of the songsync.ObjectStore interface
type Backend struct {
	downloader *manager.Downloader
}

// New creates a new S3-compatible storage backend
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, s3Options...), config), nil
}

// NewWithClient creates a backend on top of an existing GetObject client
func NewWithClient(client manager.DownloadAPIClient, config Config) *Backend {
	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		if config.PartSize > 0 {
			d.PartSize = config.PartSize
		}
		if config.Concurrency > 0 {
			d.Concurrency = config.Concurrency
		}
	})
	return &Backend{downloader: downloader}
}

// Fetch downloads the object into w in parallel byte ranges
func (b *Backend) Fetch(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	n, err := b.downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, songsync.ErrObjectNotFound
		}
		return n, fmt.Errorf("failed to download object: %w", err)
	}
	return n, nil
}

// isNotFound recognises missing objects from both AWS and MinIO responses.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
