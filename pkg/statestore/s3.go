package statestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// S3Config configures the S3 backend. Any S3-compatible service that honours
// conditional writes (If-Match, If-None-Match) can be used.
type S3Config struct {
	Bucket         string `env:"S3_BUCKET,required"`                     // Bucket holds the state objects.
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`       // Region of the bucket.
	Prefix         string `env:"S3_PREFIX" envDefault:"volstate/"`       // Prefix namespaces every object key.
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`                       // AccessKeyID enables static credentials together with SecretKey.
	SecretKey      string `env:"S3_SECRET_KEY"`                          // SecretKey enables static credentials together with AccessKeyID.
	Endpoint       string `env:"S3_ENDPOINT"`                            // Endpoint overrides the AWS endpoint, e.g. for MinIO.
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"` // ForcePathStyle is required by most S3-compatible services.
}

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// NewS3Client builds an S3 client from cfg and the default AWS config chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Join(ErrFailedToConnect, err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// S3Store keeps each record as a small object. Creation uses If-None-Match
// and compare-and-swap uses If-Match on the ETag that was read.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store wraps an S3 client. Keys are "<prefix><id>/<domain>".
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(id uuid.UUID, d volstate.Domain) string {
	return s.prefix + recordKey(id, d)
}

func (s *S3Store) InitState(ctx context.Context, id uuid.UUID, d volstate.Domain, state string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(id, d)),
		Body:        strings.NewReader(state),
		ContentType: aws.String("text/plain"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put state: %w", err)
	}
	return nil
}

func (s *S3Store) GetState(ctx context.Context, id uuid.UUID, d volstate.Domain) (string, error) {
	state, _, err := s.read(ctx, s.key(id, d))
	return state, err
}

func (s *S3Store) SetState(ctx context.Context, id uuid.UUID, d volstate.Domain, expected, next string) error {
	key := s.key(id, d)
	current, etag, err := s.read(ctx, key)
	if err != nil {
		return err
	}
	if current != expected {
		return ErrConflict
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(next),
		ContentType: aws.String("text/plain"),
		IfMatch:     aws.String(etag),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return ErrConflict
		}
		return fmt.Errorf("put state: %w", err)
	}
	return nil
}

func (s *S3Store) read(ctx context.Context, key string) (string, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", "", ErrNotFound
		}
		return "", "", fmt.Errorf("get state: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return "", "", fmt.Errorf("read state: %w", err)
	}
	return string(body), aws.ToString(out.ETag), nil
}

// S3Healthcheck returns a probe that checks the bucket is reachable.
func S3Healthcheck(client S3API, bucket string) func(context.Context) error {
	return func(ctx context.Context) error {
		if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// isPreconditionFailed reports a lost conditional write. S3 answers 412 when
// the condition does not hold and 409 when a concurrent conditional write won.
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	default:
		return false
	}
}
