package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Fetcher downloads batch input files from an S3 prefix so remote exports
// can be analyzed without a manual copy step.
type S3Fetcher struct {
	client *s3.Client
	bucket string
}

// NewS3Fetcher creates a fetcher for the given bucket using the default AWS
// credential chain.
func NewS3Fetcher(ctx context.Context, bucket, region string) (*S3Fetcher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Fetcher{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// FetchPrefix downloads every object under prefix into destDir and returns
// the local paths, insertion-ordered by listing order. Zero-byte objects
// (directory markers) are skipped.
func (f *S3Fetcher) FetchPrefix(ctx context.Context, prefix, destDir string) ([]string, error) {
	var paths []string

	paginator := s3.NewListObjectsV2Paginator(f.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(f.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", f.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Size == 0 || obj.Key == nil {
				continue
			}
			local, err := f.download(ctx, *obj.Key, destDir)
			if err != nil {
				return nil, err
			}
			paths = append(paths, local)
		}
	}
	return paths, nil
}

func (f *S3Fetcher) download(ctx context.Context, key, destDir string) (string, error) {
	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("getting S3 object %s: %w", key, err)
	}
	defer resp.Body.Close()

	local := filepath.Join(destDir, path.Base(key))
	out, err := os.Create(local)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", fmt.Errorf("writing %s: %w", local, err)
	}
	return local, out.Close()
}
