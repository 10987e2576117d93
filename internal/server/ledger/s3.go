package ledger

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
)

// S3Config locates an S3-compatible store (AWS or MinIO).
type S3Config struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
}

// S3Fetcher is the ObjectFetcher backed by aws-sdk-go-v2.
type S3Fetcher struct {
	cfg S3Config
}

func NewS3Fetcher(cfg S3Config) *S3Fetcher {
	return &S3Fetcher{cfg: cfg}
}

func (f *S3Fetcher) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(f.cfg.Region)}
	if f.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			f.cfg.AccessKey,
			f.cfg.SecretKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if f.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(f.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Fetch downloads bucket/key fully into memory.
func (f *S3Fetcher) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	c, err := f.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	out, err := getObject(c, ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
