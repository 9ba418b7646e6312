// Package storage holds audio attachments in an S3-compatible bucket and
// hands out presigned URLs for playback.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/XSTOOR/healthcare-doctor-patient-translation/internal/config"
)

// MaxAudioSize is the upload size cap for audio attachments.
const MaxAudioSize = 10 << 20 // 10 MB

// playbackURLTTL is how long presigned playback URLs stay valid.
const playbackURLTTL = 24 * time.Hour

// AllowedAudioTypes is the MIME whitelist for uploads.
var AllowedAudioTypes = map[string]bool{
	"audio/webm": true,
	"audio/ogg":  true,
	"audio/mpeg": true,
	"audio/mp4":  true,
	"audio/wav":  true,
}

// AudioStore wraps the S3 client for audio attachment blobs.
type AudioStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewAudioStore builds an audio store from configuration, or returns nil when
// S3 is not configured; callers treat a nil store as "audio disabled".
func NewAudioStore(cfg *appconfig.Config) (*AudioStore, error) {
	if !cfg.S3Configured() {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	return &AudioStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.S3Bucket,
	}, nil
}

// Put uploads an audio blob under the given object key.
func (s *AudioStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("audio upload failed: %w", err)
	}
	return nil
}

// PlaybackURL returns a presigned GET URL for an uploaded object.
func (s *AudioStore) PlaybackURL(ctx context.Context, key string) (string, error) {
	presigned, err := s.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		},
		func(po *s3.PresignOptions) {
			po.Expires = playbackURLTTL
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign audio URL: %w", err)
	}
	return presigned.URL, nil
}

// Delete removes an audio object.
func (s *AudioStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("audio delete failed: %w", err)
	}
	return nil
}
