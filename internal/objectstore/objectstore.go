// Package objectstore presigns downloads from an S3-compatible bucket
// (Cloudflare R2 by default).
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fmueller/r2scribe/internal/config"
)

const (
	// DefaultExpiry bounds how long a presigned download URL stays valid.
	DefaultExpiry = 900 * time.Second

	// Region is the pseudo-region R2 expects in signatures.
	Region = "auto"
)

type Client struct {
	presign *awss3.PresignClient
	bucket  string
	expiry  time.Duration
}

// Endpoint returns the S3 API endpoint for an R2 account.
func Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// New builds a presigning client from cfg. It fails with a
// *config.MissingError when required values are absent.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	if err := cfg.RequireObjectStore(); err != nil {
		return nil, err
	}

	endpoint := strings.TrimSpace(cfg.R2Endpoint)
	if endpoint == "" {
		endpoint = Endpoint(cfg.R2AccountID)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load object store config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		presign: awss3.NewPresignClient(client),
		bucket:  cfg.R2BucketName,
		expiry:  DefaultExpiry,
	}, nil
}

// DownloadURL returns a presigned GET URL for key. Existence is not checked;
// a missing object surfaces when the URL is fetched.
func (c *Client) DownloadURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("object key is required")
	}

	req, err := c.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(c.expiry))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", c.bucket, key, err)
	}

	return req.URL, nil
}
