package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	pkgerrors "github.com/pkg/errors"
)

// ArchiveConfig points at an S3-compatible bucket used to keep a copy of
// every generated summary outside the CMS.
type ArchiveConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
}

type ArchiveClient struct {
	client *s3.Client
	bucket string
}

func NewArchiveClient(cfg ArchiveConfig) (*ArchiveClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		awsconfig.WithRegion(cfg.Region),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &ArchiveClient{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

type archivedSummary struct {
	VideoID   string    `json:"video_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// SaveSummary archives one generated summary under its owning user.
func (c *ArchiveClient) SaveSummary(ctx context.Context, videoID, userID, title, content, model string) error {
	data, err := json.Marshal(archivedSummary{
		VideoID:   videoID,
		UserID:    userID,
		Title:     title,
		Content:   content,
		Model:     model,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "marshal summary")
	}

	key := fmt.Sprintf("summaries/%s/%s.json", userID, videoID)
	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "put summary object")
	}

	return nil
}

// GetSummary reads an archived summary back, mostly for operational tooling.
func (c *ArchiveClient) GetSummary(ctx context.Context, videoID, userID string) (string, string, error) {
	key := fmt.Sprintf("summaries/%s/%s.json", userID, videoID)
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", "", pkgerrors.Wrap(err, "get summary object")
	}
	defer result.Body.Close()

	var data archivedSummary
	if err := json.NewDecoder(result.Body).Decode(&data); err != nil {
		return "", "", pkgerrors.Wrap(err, "decode summary object")
	}

	return data.Title, data.Content, nil
}
