// utils/r2.go
package utils

import (
	"context"
	"fmt"

	"duel-bot/services"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2 reads question packs from a Cloudflare R2 bucket through the S3 API.
type R2 struct {
	client *s3.Client
	bucket string
}

func NewR2(ctx context.Context, accountID, accessKeyID, accessKeySecret, bucket string) (*R2, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
	})
	return &R2{client: client, bucket: bucket}, nil
}

// FetchQuestionPack downloads and decodes the JSON question pack stored under key.
func (r *R2) FetchQuestionPack(ctx context.Context, key string) ([]services.PackEntry, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s from R2: %w", key, err)
	}
	defer out.Body.Close()

	return DecodeQuestionPack(out.Body)
}
