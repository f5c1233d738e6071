package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// s3Store backs the S3, S3Compatible, Oss, and Cos tags. Alibaba OSS and
// Tencent COS both expose S3-compatible endpoints, so (per spec.md §9,
// "model them as a single interface ... not an inheritance tree") all four
// tags share this one client, parameterized by endpoint and path-style.
type s3Store struct {
	client *s3.Client
	bucket string
	label  string // for StoreError.Backend
}

// newS3Store builds the shared S3-protocol client. compatible selects
// path-style addressing and a custom endpoint, used by S3Compatible, Oss,
// and Cos; plain S3 uses virtual-hosted addressing against the real AWS
// endpoint for the given region.
func newS3Store(c BackendConfig, compatible bool) (*s3Store, error) {
	accessKey, secretKey := resolveS3Credentials(c)

	region := c.Region
	if region == "" {
		region = defaultS3CompatibleRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("blobstore: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if compatible && c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}

		o.UsePathStyle = compatible
	})

	return &s3Store{client: client, bucket: c.Bucket, label: string(c.Type)}, nil
}

// resolveS3Credentials maps Oss's access_key_id/access_key_secret and Cos's
// secret_id/secret_key onto the AWS SDK's (access key, secret key) pair.
func resolveS3Credentials(c BackendConfig) (accessKey, secretKey string) {
	switch c.Type {
	case BackendOss:
		return c.AccessKeyID, c.AccessKeySecret
	case BackendCos:
		return c.SecretID, c.SecretKey
	default:
		return c.AccessKeyID, c.SecretAccessKey
	}
}

func (s *s3Store) Write(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return &StoreError{Backend: s.label, Key: key, Err: err}
	}

	return nil
}

func (s *s3Store) Read(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, &StoreError{Backend: s.label, Key: key, Err: ErrNotFound}
		}

		return nil, &StoreError{Backend: s.label, Key: key, Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &StoreError{Backend: s.label, Key: key, Err: err}
	}

	return data, nil
}

func (s *s3Store) List(ctx context.Context, prefix string) ([]Entry, error) {
	var entries []Entry

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &StoreError{Backend: s.label, Key: prefix, Err: err}
		}

		for _, obj := range page.Contents {
			entries = append(entries, Entry{Path: aws.ToString(obj.Key)})
		}
	}

	return entries, nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return &StoreError{Backend: s.label, Key: key, Err: err}
	}

	return nil
}

func (s *s3Store) Stat(ctx context.Context, key string) (Stat, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return Stat{}, &StoreError{Backend: s.label, Key: key, Err: ErrNotFound}
		}

		return Stat{}, &StoreError{Backend: s.label, Key: key, Err: err}
	}

	return Stat{ContentLength: aws.ToInt64(out.ContentLength)}, nil
}

// isNotFound classifies an S3 SDK error as "object does not exist",
// covering both the typed NoSuchKey error and the generic 404 response
// some S3-compatible backends (OSS, COS) return instead.
func isNotFound(err error) bool {
	var nsk *s3Types404
	if errors.As(err, &nsk) {
		return true
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == 404
	}

	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound")
}

// s3Types404 aliases s3.NoSuchKey so isNotFound's errors.As target has a
// named type without importing the s3types package just for this check.
type s3Types404 = s3.NoSuchKey
