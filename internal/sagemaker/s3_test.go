package sagemaker

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	headErr error

	created []*s3.CreateBucketInput
	puts    []*s3.PutObjectInput
}

func (f *fakeS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, params)
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func TestEnsureBucketExists(t *testing.T) {
	svc := &fakeS3{}
	require.NoError(t, ensureBucket(context.Background(), svc, "sagemaker-us-west-2-123456789012", "us-west-2"))
	assert.Empty(t, svc.created)
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	svc := &fakeS3{headErr: &s3types.NotFound{}}
	require.NoError(t, ensureBucket(context.Background(), svc, "sagemaker-us-west-2-123456789012", "us-west-2"))

	require.Len(t, svc.created, 1)
	created := svc.created[0]
	assert.Equal(t, "sagemaker-us-west-2-123456789012", aws.ToString(created.Bucket))
	require.NotNil(t, created.CreateBucketConfiguration)
	assert.Equal(t, s3types.BucketLocationConstraint("us-west-2"), created.CreateBucketConfiguration.LocationConstraint)
}

func TestEnsureBucketUsEast1HasNoLocationConstraint(t *testing.T) {
	svc := &fakeS3{headErr: &s3types.NotFound{}}
	require.NoError(t, ensureBucket(context.Background(), svc, "sagemaker-us-east-1-123456789012", "us-east-1"))

	require.Len(t, svc.created, 1)
	assert.Nil(t, svc.created[0].CreateBucketConfiguration)
}

func TestUploadData(t *testing.T) {
	svc := &fakeS3{}
	url, err := uploadData(context.Background(), zap.NewNop(), svc, "sagemaker-us-west-2-123456789012", "mxnet/model.tar.gz", strings.NewReader("artifact"))
	require.NoError(t, err)
	assert.Equal(t, "s3://sagemaker-us-west-2-123456789012/mxnet/model.tar.gz", url)
	require.Len(t, svc.puts, 1)
	assert.Equal(t, "mxnet/model.tar.gz", aws.ToString(svc.puts[0].Key))
}
