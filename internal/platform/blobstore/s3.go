package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3KeyPrefix = "lists/"

// object metadata keys; S3 lower-cases user metadata names
const (
	metaFileName    = "file-name"
	metaTeam        = "team"
	metaHash        = "sha256"
	metaPatients    = "patients"
	metaNewPatients = "new-patients"
	metaGenerated   = "generated-at"
)

// objectAPI is the subset of *s3.Client the archive uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config configures the S3 backend. Endpoint and PathStyle allow an
// S3-compatible server such as MinIO.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// S3Store keeps each list as one object, with its metadata stored as object
// user metadata.
type S3Store struct {
	client objectAPI
	bucket string
}

// NewS3Store builds a client from the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "eu-west-2"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) key(id string) string { return s3KeyPrefix + id }

func (s *S3Store) Upload(ctx context.Context, meta Metadata, content io.Reader) (*Metadata, error) {
	meta, data, err := prepare(meta, content)
	if err != nil {
		return nil, err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(meta.ID)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(meta.Size),
		ContentType:   aws.String(meta.ContentType),
		Metadata:      toObjectMetadata(meta),
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", meta.ID, err)
	}
	return &meta, nil
}

func (s *S3Store) Download(ctx context.Context, id string) (io.ReadCloser, *Metadata, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, nil, notFound(id, err)
	}
	meta := fromObjectMetadata(id, out.Metadata, aws.ToString(out.ContentType), aws.ToInt64(out.ContentLength))
	return out.Body, meta, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) error {
	if _, err := s.GetMetadata(ctx, id); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (s *S3Store) GetMetadata(ctx context.Context, id string) (*Metadata, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, notFound(id, err)
	}
	return fromObjectMetadata(id, out.Metadata, aws.ToString(out.ContentType), aws.ToInt64(out.ContentLength)), nil
}

// Search lists every archived object and reads its metadata. The archive
// holds one list per team per day so a full scan stays small.
func (s *S3Store) Search(ctx context.Context, params SearchParams) ([]*Metadata, int, error) {
	var (
		matched []*Metadata
		token   *string
	)
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s3KeyPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("list archive: %w", err)
		}
		for _, obj := range out.Contents {
			id := strings.TrimPrefix(aws.ToString(obj.Key), s3KeyPrefix)
			meta, err := s.GetMetadata(ctx, id)
			if err != nil {
				return nil, 0, err
			}
			if matches(meta, params) {
				matched = append(matched, meta)
			}
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	return page(matched, params.Limit, params.Offset), len(matched), nil
}

func notFound(id string, err error) error {
	var noKey *types.NoSuchKey
	var missing *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &missing) {
		return fmt.Errorf("%s: %w", id, ErrListNotFound)
	}
	return fmt.Errorf("read %s: %w", id, err)
}

func toObjectMetadata(m Metadata) map[string]string {
	return map[string]string{
		metaFileName:    m.FileName,
		metaTeam:        m.Team,
		metaHash:        m.Hash,
		metaPatients:    strconv.Itoa(m.Patients),
		metaNewPatients: strconv.Itoa(m.NewPatients),
		metaGenerated:   m.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

func fromObjectMetadata(id string, md map[string]string, contentType string, size int64) *Metadata {
	m := &Metadata{
		ID:          id,
		FileName:    md[metaFileName],
		ContentType: contentType,
		Size:        size,
		Hash:        md[metaHash],
		Team:        md[metaTeam],
	}
	m.Patients, _ = strconv.Atoi(md[metaPatients])
	m.NewPatients, _ = strconv.Atoi(md[metaNewPatients])
	m.GeneratedAt, _ = time.Parse(time.RFC3339, md[metaGenerated])
	return m
}
