// internal/platform/storage/s3.go
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/errors"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Storage lee entradas de cualquier bucket y escribe salidas en Bucket.
type S3Storage struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

// NewS3Storage crea el cliente. Sin credenciales estáticas se usa la cadena
// de credenciales del entorno (variables AWS, perfil o rol IAM).
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.Wrap(errors.ErrMissingConfig, "s3 endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.Wrap(errors.ErrMissingConfig, "s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	var creds *credentials.Credentials
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access != "" && secret != "" {
		creds = credentials.NewStaticV4(access, secret, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
		})
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init s3 client")
	}

	return &S3Storage{
		client:     client,
		bucketName: bucket,
		region:     region,
	}, nil
}

func (s *S3Storage) Name() string { return "s3" }

// Bucket retorna el bucket de salida.
func (s *S3Storage) Bucket() string { return s.bucketName }

func (s *S3Storage) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("store is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = errors.Join(errors.ErrStorageUnavailable, err)
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Storage) Fetch(ctx context.Context, ref domain.FileReference) (io.ReadCloser, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if ref.Origin == domain.OriginLocal {
		return openLocal(ref.Path)
	}

	obj, err := s.client.GetObject(ctx, ref.Bucket, ref.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", ref)
	}
	// GetObject es perezoso; Stat fuerza la petición para detectar claves ausentes.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, notFound(err, ref.String())
		}
		return nil, errors.Wrapf(err, "stat %s", ref)
	}
	return obj, nil
}

func (s *S3Storage) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return errors.Wrap(errors.ErrInvalidInput, "object key is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return errors.Wrap(err, "ensure bucket")
	}

	_, err := s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return errors.Wrapf(err, "put s3://%s/%s", s.bucketName, key)
	}
	return nil
}

func (s *S3Storage) Delete(ctx context.Context, ref domain.FileReference) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if ref.Origin == domain.OriginLocal {
		return removeLocal(ref.Path)
	}
	if err := s.client.RemoveObject(ctx, ref.Bucket, ref.Key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, "remove %s", ref)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}
