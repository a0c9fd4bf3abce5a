package docker

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// describeAPI is the subset of the ECR client used to verify a pushed image.
type describeAPI interface {
	DescribeRepositories(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
	DescribeImages(ctx context.Context, params *ecr.DescribeImagesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImagesOutput, error)
}

// Check checks that the repository and image tag exist in ECR, and returns
// the repository URI + ":" + image tag.
func Check(ctx context.Context, lg *zap.Logger, svc describeAPI, repoAccountID string, repoName string, imgTag string) (img string, err error) {
	lg.Info("describing ECR repositories")
	repoOut, err := svc.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RegistryId:      aws.String(repoAccountID),
		RepositoryNames: []string{repoName},
	})
	if err != nil {
		return "", err
	}
	if len(repoOut.Repositories) != 1 {
		return "", fmt.Errorf("%q expected 1 ECR repository, got %d", repoName, len(repoOut.Repositories))
	}
	repo := repoOut.Repositories[0]
	name := aws.ToString(repo.RepositoryName)
	uri := aws.ToString(repo.RepositoryUri)
	lg.Info(
		"described ECR repository",
		zap.String("arn", aws.ToString(repo.RepositoryArn)),
		zap.String("name", name),
		zap.String("uri", uri),
	)
	if name != repoName {
		return "", fmt.Errorf("unexpected ECR repository name %q", name)
	}

	lg.Info("describing image", zap.String("image-tag", imgTag))
	imgOut, err := svc.DescribeImages(ctx, &ecr.DescribeImagesInput{
		RegistryId:     aws.String(repoAccountID),
		RepositoryName: aws.String(repoName),
		ImageIds: []ecrtypes.ImageIdentifier{
			{
				ImageTag: aws.String(imgTag),
			},
		},
	})
	if err != nil {
		lg.Warn("failed to describe image", zap.Error(err))
		return "", err
	}
	if len(imgOut.ImageDetails) == 0 {
		return "", fmt.Errorf("image tag %q not found", imgTag)
	}
	lg.Info("described images", zap.Int("images", len(imgOut.ImageDetails)))
	for i, detail := range imgOut.ImageDetails {
		lg.Info("found an image",
			zap.Int("index", i),
			zap.String("requested-tag", imgTag),
			zap.Strings("returned-tags", detail.ImageTags),
			zap.String("digest", aws.ToString(detail.ImageDigest)),
			zap.String("pushed-at", humanize.Time(aws.ToTime(detail.ImagePushedAt))),
			zap.String("size", humanize.Bytes(uint64(aws.ToInt64(detail.ImageSizeInBytes)))),
		)
	}
	return uri + ":" + imgTag, nil
}
