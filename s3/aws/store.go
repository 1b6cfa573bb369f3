package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	aws_s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/s3"
)

// AWSStore is the AWS S3 implementation of the s3.Store interface.
type AWSStore struct {
	log    *zap.Logger
	client *aws_s3.Client
	bucket string
}

type Config struct {
	Region string
	Bucket string

	// Endpoint overrides the S3 endpoint, e.g. for LocalStack. Path-style
	// addressing is used when set.
	Endpoint string

	// Static credentials. When empty, the default credential chain is used.
	AccessKey string
	SecretKey string
}

func NewAWSStore(ctx context.Context, log *zap.Logger, cfg Config) (*AWSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}

	var loadOptions []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws config")
	}

	client := aws_s3.NewFromConfig(awsCfg, func(o *aws_s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &AWSStore{
		log:    log,
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// CreateBucket creates the store's bucket. It is used to provision test and
// development environments.
func (a *AWSStore) CreateBucket(ctx context.Context) error {
	_, err := a.client.CreateBucket(ctx, &aws_s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return errors.Wrap(err, "failed to create bucket")
	}
	return nil
}

func (a *AWSStore) Upload(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if data == nil {
		return fmt.Errorf("data cannot be nil")
	}

	_, err := a.client.PutObject(ctx, &aws_s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return errors.Wrap(err, "failed to upload object to S3")
	}

	a.log.Debug("Uploaded object", zap.String("bucket", a.bucket), zap.String("key", key))
	return nil
}

func (a *AWSStore) Download(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	output, err := a.client.GetObject(ctx, &aws_s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, s3.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to download object from S3")
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read object data")
	}

	a.log.Debug("Downloaded object", zap.String("bucket", a.bucket), zap.String("key", key))
	return data, nil
}
