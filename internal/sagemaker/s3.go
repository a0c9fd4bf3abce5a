package sagemaker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

type bucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DefaultBucket returns the session's default artifact bucket,
// sagemaker-{region}-{account}, creating it when missing.
func (s *Session) DefaultBucket(ctx context.Context) (string, error) {
	account, err := s.AccountID(ctx)
	if err != nil {
		return "", err
	}
	bucket := fmt.Sprintf("sagemaker-%s-%s", s.Region, account)
	if err := ensureBucket(ctx, s.S3, bucket, s.Region); err != nil {
		return "", err
	}
	return bucket, nil
}

// UploadData uploads a model artifact and returns its s3:// URL.
func (s *Session) UploadData(ctx context.Context, bucket, key string, body io.Reader) (string, error) {
	return uploadData(ctx, s.lg, s.S3, bucket, key, body)
}

func uploadData(ctx context.Context, lg *zap.Logger, svc bucketAPI, bucket, key string, body io.Reader) (string, error) {
	lg.Info("uploading data", zap.String("bucket", bucket), zap.String("key", key))
	_, err := svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

func ensureBucket(ctx context.Context, svc bucketAPI, bucket, region string) error {
	_, err := svc.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}
	if !isBucketMissing(err) {
		return fmt.Errorf("failed to check bucket %q: %w", bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}
	if _, err := svc.CreateBucket(ctx, input); err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}
	return nil
}

func isBucketMissing(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}
