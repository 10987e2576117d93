package ledger

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubS3(t *testing.T, get func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error)) *[]func(*s3.Options) {
	t.Helper()
	origLoad, origNew, origGet := loadDefaultAWSConfig, newS3ClientFromConfig, getObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, getObject = origLoad, origNew, origGet
	})

	var opts []func(*s3.Options)
	loadDefaultAWSConfig = func(ctx context.Context, fns ...func(*config.LoadOptions) error) (aws.Config, error) {
		var lo config.LoadOptions
		for _, fn := range fns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		opts = append(opts, optFns...)
		return s3.NewFromConfig(cfg, optFns...)
	}
	getObject = func(_ *s3.Client, _ context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return get(in)
	}
	return &opts
}

func TestS3Fetcher_Fetch(t *testing.T) {
	var bucket, key string
	opts := stubS3(t, func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		bucket, key = aws.ToString(in.Bucket), aws.ToString(in.Key)
		return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(`[]`))}, nil
	})

	f := NewS3Fetcher(S3Config{AccessKey: "ak", SecretKey: "sk", Region: "eu-west-1", BaseEndpoint: "http://minio:9000"})
	got, err := f.Fetch(context.Background(), "abis", "shop/electron.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.Equal(t, "abis", bucket)
	assert.Equal(t, "shop/electron.json", key)

	o := s3.Options{}
	for _, fn := range *opts {
		fn(&o)
	}
	assert.Equal(t, "http://minio:9000", aws.ToString(o.BaseEndpoint))
	assert.True(t, o.UsePathStyle)
}

func TestS3Fetcher_FetchError(t *testing.T) {
	stubS3(t, func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, errors.New("NoSuchKey")
	})

	_, err := NewS3Fetcher(S3Config{Region: "us-east-1"}).Fetch(context.Background(), "abis", "missing.json")
	assert.EqualError(t, err, "NoSuchKey")
}

func TestLoadABI_FromS3(t *testing.T) {
	stubS3(t, func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(embeddedABI)))}, nil
	})

	parsed, err := LoadABI(context.Background(), "s3://abis/electron.json", NewS3Fetcher(S3Config{Region: "us-east-1"}))
	require.NoError(t, err)
	_, ok := parsed.Methods[MethodAddUser]
	assert.True(t, ok)
}
