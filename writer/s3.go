package writer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "mandiflow/config"
	"mandiflow/logger"
)

// UploadToS3 ships an exported file to the configured bucket under
// prefix/filename. The local file is the source of truth; upload failures are
// reported to the caller without touching it.
func UploadToS3(ctx context.Context, cfg appconfig.S3Config, localPath string) error {
	log := logger.GetLogger().WithComponent("s3_uploader")

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return fmt.Errorf("aws credentials not found")
	}

	client := s3.NewFromConfig(awsCfg)

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open exported file: %w", err)
	}
	defer f.Close()

	key := path.Join(cfg.Prefix, filepath.Base(localPath))
	if _, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return fmt.Errorf("failed to upload to s3://%s/%s: %w", cfg.Bucket, key, err)
	}

	log.WithFields(logger.Fields{
		"bucket": cfg.Bucket,
		"key":    key,
	}).Info("export uploaded to S3")

	return nil
}
