package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	KeyPrefix  string
	ACL        string
	// AllowedTypes holds MIME prefixes accepted for upload. Empty allows all.
	AllowedTypes []string
}

// UploadResult describes an object stored on the media host.
type UploadResult struct {
	Key         string `json:"key"`
	SecureURL   string `json:"secure_url"`
	ContentType string `json:"content_type"`
	Bytes       int64  `json:"bytes"`
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Client struct {
	cfg S3Config
	s3  objectPutter
}

func NewClient(ctx context.Context, cfg S3Config) (*Client, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newClientWithAPI(cfg, s3Client), nil
}

func newClientWithAPI(cfg S3Config, api objectPutter) *Client {
	return &Client{cfg: cfg, s3: api}
}

// UploadFile stores the file at localPath under a fresh key and returns its
// public https URL.
func (c *Client) UploadFile(ctx context.Context, localPath string) (UploadResult, error) {
	if c == nil {
		return UploadResult{}, errors.New("s3 client not initialized")
	}
	if localPath == "" {
		return UploadResult{}, errors.New("local path is required")
	}

	mtype, err := mimetype.DetectFile(localPath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("detect content type: %w", err)
	}
	contentType := mtype.String()
	if err := c.ValidateContentType(contentType); err != nil {
		return UploadResult{}, err
	}

	acl, err := c.ValidateACL(c.cfg.ACL)
	if err != nil {
		return UploadResult{}, err
	}

	file, err := os.Open(localPath)
	if err != nil {
		return UploadResult{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, err
	}

	key := c.ObjectKey(mtype.Extension())
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(info.Size()),
	}
	if acl != "" {
		input.ACL = acl
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return UploadResult{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return UploadResult{
		Key:         key,
		SecureURL:   c.FileURL(key),
		ContentType: contentType,
		Bytes:       info.Size(),
	}, nil
}

// ObjectKey builds "<prefix>/<uuid><ext>".
func (c *Client) ObjectKey(ext string) string {
	name := uuid.NewString() + strings.ToLower(ext)
	if c.cfg.KeyPrefix == "" {
		return name
	}
	return path.Join(c.cfg.KeyPrefix, name)
}

func (c *Client) FileURL(key string) string {
	if c == nil || key == "" {
		return ""
	}
	if c.cfg.PublicBase != "" {
		return c.cfg.PublicBase + "/" + key
	}
	if c.cfg.Endpoint != "" {
		return strings.TrimRight(c.cfg.Endpoint, "/") + "/" + c.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.cfg.Bucket, c.cfg.Region, key)
}

func (c *Client) ValidateContentType(contentType string) error {
	if contentType == "" {
		return errors.New("content type is required")
	}
	if len(c.cfg.AllowedTypes) == 0 {
		return nil
	}
	for _, prefix := range c.cfg.AllowedTypes {
		if strings.HasPrefix(contentType, prefix) {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}

func (c *Client) ValidateACL(acl string) (types.ObjectCannedACL, error) {
	switch acl {
	case "":
		return "", nil
	case "private":
		return types.ObjectCannedACLPrivate, nil
	case "public-read":
		return types.ObjectCannedACLPublicRead, nil
	default:
		return "", errors.New("invalid acl")
	}
}
