package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio implements Store using a MinIO (or any S3-compatible) backend.
// The deletion handle of every reference is the object key.
type Minio struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// MinioOptions configures NewMinio.
type MinioOptions struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/aaxiero"
	UseSSL     bool
}

// NewMinio creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use store.
func NewMinio(ctx context.Context, opts MinioOptions, logger *slog.Logger) (*Minio, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
		logger.Info("created storage bucket", slog.String("bucket", opts.Bucket))
	}

	if err := client.SetBucketPolicy(ctx, opts.Bucket, publicReadPolicy(opts.Bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &Minio{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: strings.TrimRight(opts.PublicBase, "/"),
	}, nil
}

// Put streams the staged upload to <folder>/<uuid><ext>.
func (s *Minio) Put(ctx context.Context, upload *Upload, folder string) (Reference, error) {
	defer func() {
		_ = upload.Discard()
	}()

	f, err := upload.Open()
	if err != nil {
		return Reference{}, uploadFailed(upload, fmt.Errorf("open staged file: %w", err))
	}
	defer f.Close()

	key := path.Join(cleanFolder(folder), uuid.NewString()+upload.Extension)
	_, err = s.client.PutObject(ctx, s.bucket, key, f, upload.Size, minio.PutObjectOptions{
		ContentType: upload.ContentType,
	})
	if err != nil {
		return Reference{}, uploadFailed(upload, fmt.Errorf("put object %q: %w", key, err))
	}
	return NewReference(s.publicBase+"/"+key, key), nil
}

// Delete removes the object behind ref. References stored without a handle
// have their key recovered from the URL.
func (s *Minio) Delete(ctx context.Context, ref Reference) error {
	key := ref.HandleValue()
	if key == "" {
		var ok bool
		if key, ok = HandleFromURL(ref.URL, s.publicBase); !ok {
			return fmt.Errorf("cannot derive object key from %q", ref.URL)
		}
	}
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// HandleFromURL recovers an object key from a public URL. URLs under
// publicBase yield everything after it; other URLs yield their path with the
// leading bucket segment stripped when it matches the key layout
// "<folder>/<name>.<ext>".
func HandleFromURL(raw, publicBase string) (string, bool) {
	publicBase = strings.TrimRight(publicBase, "/")
	if publicBase != "" && strings.HasPrefix(raw, publicBase+"/") {
		key := strings.TrimPrefix(raw, publicBase+"/")
		return key, key != ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "", false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", false
	}
	name := segments[len(segments)-1]
	if path.Ext(name) == "" || strings.TrimSuffix(name, path.Ext(name)) == "" {
		return "", false
	}
	return strings.Join(segments[len(segments)-2:], "/"), true
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
