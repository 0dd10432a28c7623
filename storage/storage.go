package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"rovify-backend/model"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const MaxImageSize = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Uploader stores user media in an S3 compatible bucket.
type Uploader interface {
	Upload(ctx context.Context, folder, contentType string, body io.Reader) (*model.Upload, error)
	Presign(ctx context.Context, folder, contentType string, ttl time.Duration) (*model.Upload, error)
}

type Storage struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	publicURL string
}

// New builds a client for bucket. Static keys are used when given, otherwise the default AWS
// credential chain applies. A custom endpoint switches to path style addressing (R2, MinIO).
func New(ctx context.Context, accessKey, secretKey, region, endpoint, bucket, publicURL string) (*Storage, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(region))
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new: unable to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return newStorage(client, bucket, publicURL), nil
}

func newStorage(client *s3.Client, bucket, publicURL string) *Storage {
	return &Storage{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *Storage) Upload(ctx context.Context, folder, contentType string, body io.Reader) (*model.Upload, error) {
	key, err := ObjectKey(folder, contentType)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload: unable to put object %s: %w", key, err)
	}
	return &model.Upload{Key: key, URL: s.objectURL(key)}, nil
}

// Presign returns a URL the browser can PUT the object to directly until ttl elapses.
func (s *Storage) Presign(ctx context.Context, folder, contentType string, ttl time.Duration) (*model.Upload, error) {
	key, err := ObjectKey(folder, contentType)
	if err != nil {
		return nil, err
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("presign: unable to presign %s: %w", key, err)
	}
	return &model.Upload{Key: key, URL: req.URL, ExpiresAt: time.Now().Add(ttl).UTC()}, nil
}

// Supported reports whether contentType may be stored.
func Supported(contentType string) bool {
	_, ok := imageExtensions[strings.ToLower(contentType)]
	return ok
}

// ObjectKey names a new object under folder. Only image content types are accepted.
func ObjectKey(folder, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("objectKey: unsupported content type: %q", contentType)
	}
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" {
		folder = "misc"
	}
	return path.Join(folder, uuid.NewString()+ext), nil
}

func (s *Storage) objectURL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
