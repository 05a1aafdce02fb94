package document

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the part of the s3 client used by the loader
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 loads documents from s3://bucket/key URIs
type S3 struct {
	client   S3API
	maxBytes int64
}

var (
	_ Loader = (*S3)(nil)
	_ Lister = (*S3)(nil)
)

type S3Option func(*S3)

func WithS3MaxBytes(n int64) S3Option {
	return func(s *S3) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

func NewS3(client S3API, opts ...S3Option) *S3 {
	ret := &S3{
		client:   client,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// IsS3URI reports whether uri uses the s3 scheme
func IsS3URI(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// ParseS3URI splits s3://bucket/key into bucket and key
func ParseS3URI(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func (s *S3) Load(ctx context.Context, uri string) (*Document, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object metadata: %w", err)
	}
	if size := aws.ToInt64(head.ContentLength); size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer resp.Body.Close()
	content, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, err
	}
	content, contentType, err := Normalize(content, aws.ToString(head.ContentType))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	meta := map[string]string{
		"source":       "s3",
		"bucket":       bucket,
		"key":          key,
		"content_type": contentType,
	}
	if head.LastModified != nil {
		meta["modtime"] = strconv.FormatInt(head.LastModified.Unix(), 10)
	}
	return &Document{
		Source:  uri,
		Meta:    meta,
		Content: content,
	}, nil
}

// List returns every object URI below the prefix
func (s *S3) List(ctx context.Context, uri string) ([]string, error) {
	bucket, prefix, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	var (
		ret   []string
		token *string
	)
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			ret = append(ret, "s3://"+bucket+"/"+key)
		}
		if !aws.ToBool(out.IsTruncated) {
			return ret, nil
		}
		token = out.NextContinuationToken
	}
}
