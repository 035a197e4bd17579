package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/storage"
)

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// objectAPI is the subset of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *awss3.DeleteObjectsInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectsOutput, error)
	awss3.ListObjectsV2APIClient
}

// Storage keeps organized files as objects keyed user_<id>/<category>/<name>.
type Storage struct {
	client objectAPI
	bucket string
	locks  *storage.KeyedMutex
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "s3 storage", errors.New("bucket is required"))
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newWithClient(client, cfg.Bucket), nil
}

func newWithClient(client objectAPI, bucket string) *Storage {
	return &Storage{client: client, bucket: bucket, locks: storage.NewKeyedMutex()}
}

// Place uploads with If-None-Match so a name taken by another process is
// skipped like a local collision.
func (s *Storage) Place(ctx context.Context, userID string, category domain.Category, filename string, body io.Reader) (string, error) {
	if err := storage.ValidateSegment("filename", filename); err != nil {
		return "", err
	}
	prefix, err := storage.CategoryDir(userID, category)
	if err != nil {
		return "", err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}

	unlock := s.locks.Lock(prefix)
	defer unlock()

	for attempt := 0; attempt < storage.MaxCollisionAttempts; attempt++ {
		name := storage.CandidateName(filename, attempt)
		key := path.Join(prefix, name)

		exists, err := s.exists(ctx, key)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(raw),
			ContentLength: aws.Int64(int64(len(raw))),
			IfNoneMatch:   aws.String("*"),
		})
		if statusCode(err) == http.StatusPreconditionFailed {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("put object %s: %w", key, err)
		}
		return name, nil
	}
	return "", fmt.Errorf("no free name for %q after %d attempts", filename, storage.MaxCollisionAttempts)
}

func (s *Storage) Open(ctx context.Context, userID string, category domain.Category, filename string) (io.ReadCloser, error) {
	key, err := s.fileKey(userID, category, filename)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, key)
}

func (s *Storage) Delete(ctx context.Context, userID string, category domain.Category, filename string) error {
	key, err := s.fileKey(userID, category, filename)
	if err != nil {
		return err
	}
	exists, err := s.exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return domain.WrapError(domain.ErrNotFound, "delete object", errors.New(key))
	}
	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context, userID string, category domain.Category) ([]string, error) {
	prefix, err := storage.CategoryDir(userID, category)
	if err != nil {
		return nil, err
	}
	keys, err := s.listKeys(ctx, prefix+"/")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, prefix+"/")
		if name != "" && !strings.Contains(name, "/") {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	prefix, err := storage.UserDir(userID)
	if err != nil {
		return err
	}
	keys, err := s.listKeys(ctx, prefix+"/")
	if err != nil {
		return err
	}

	const batchSize = 1000
	for start := 0; start < len(keys); start += batchSize {
		end := min(start+batchSize, len(keys))
		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
		}
		out, err := s.client.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete user objects: %w", err)
		}
		if out != nil && len(out.Errors) > 0 {
			return fmt.Errorf("delete user objects: %d keys failed, first %s", len(out.Errors), aws.ToString(out.Errors[0].Key))
		}
	}
	return nil
}

func (s *Storage) Stage(ctx context.Context, userID, filename string, body io.Reader) (string, error) {
	if err := storage.ValidateSegment("filename", filename); err != nil {
		return "", err
	}
	prefix, err := storage.StagingDir(userID)
	if err != nil {
		return "", err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}

	key := uuid.NewString() + "_" + filename
	if _, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path.Join(prefix, key)),
		Body:          bytes.NewReader(raw),
		ContentLength: aws.Int64(int64(len(raw))),
	}); err != nil {
		return "", fmt.Errorf("put staged object: %w", err)
	}
	return key, nil
}

func (s *Storage) OpenStaged(ctx context.Context, userID, key string) (io.ReadCloser, error) {
	objectKey, err := s.stagedKey(userID, key)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, objectKey)
}

func (s *Storage) RemoveStaged(ctx context.Context, userID, key string) error {
	objectKey, err := s.stagedKey(userID, key)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("delete staged object: %w", err)
	}
	return nil
}

func (s *Storage) get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, domain.WrapError(domain.ErrNotFound, "get object", err)
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *Storage) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", key, err)
}

func (s *Storage) listKeys(ctx context.Context, prefix string) ([]string, error) {
	paginator := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *Storage) fileKey(userID string, category domain.Category, filename string) (string, error) {
	if err := storage.ValidateSegment("filename", filename); err != nil {
		return "", err
	}
	prefix, err := storage.CategoryDir(userID, category)
	if err != nil {
		return "", err
	}
	return path.Join(prefix, filename), nil
}

func (s *Storage) stagedKey(userID, key string) (string, error) {
	if err := storage.ValidateSegment("staged key", key); err != nil {
		return "", err
	}
	prefix, err := storage.StagingDir(userID)
	if err != nil {
		return "", err
	}
	return path.Join(prefix, key), nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound) || statusCode(err) == http.StatusNotFound
}

func statusCode(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
