package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	probeTimeout   = 5 * time.Second
	uploadTimeout  = 15 * time.Second
	uploadAttempts = 2
)

// AudioStore is the read-through cache bucket for synthesized audio. Objects
// are content-addressed and immutable once written, so repeated uploads of the
// same key are safe.
type AudioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	cdnURL    string
}

// NewAudioStoreFromEnv initialises AudioStore using MINIO_* environment
// variables. Returns (nil, nil) when the store is not configured; callers
// treat a nil store as "cache disabled".
func NewAudioStoreFromEnv() (*AudioStore, error) {
	endpoint := strings.TrimSpace(os.Getenv("MINIO_ENDPOINT"))
	accessKey := strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY"))
	secretKey := strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY"))
	bucket := strings.TrimSpace(os.Getenv("MINIO_BUCKET"))
	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, nil
	}

	useSSL := strings.EqualFold(strings.TrimSpace(os.Getenv("MINIO_USE_SSL")), "true")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	publicURL := strings.TrimSpace(os.Getenv("MINIO_PUBLIC_URL"))
	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	return &AudioStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		cdnURL:    strings.TrimSuffix(strings.TrimSpace(os.Getenv("CDN_BASE_URL")), "/"),
	}, nil
}

// Enabled reports whether a usable store was configured.
func (s *AudioStore) Enabled() bool {
	return s != nil && s.client != nil
}

// Exists probes the bucket for the given object. A missing object is not an
// error: the known not-found shapes (NoSuchKey, NotFound, HTTP 404) all map
// to (false, nil); anything else surfaces as an error for the caller to log.
func (s *AudioStore) Exists(ctx context.Context, objectName string) (bool, error) {
	if !s.Enabled() {
		return false, errors.New("audio store not configured")
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := s.client.StatObject(probeCtx, s.bucket, objectName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey", resp.Code == "NotFound", resp.StatusCode == http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("stat object %s: %w", objectName, err)
}

// Upload writes the audio bytes under the given key, retrying once. The
// object is served publicly with long-lived cache headers since its content
// never changes for a given key.
func (s *AudioStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	if !s.Enabled() {
		return errors.New("audio store not configured")
	}
	if len(data) == 0 {
		return errors.New("audio payload is empty")
	}

	var lastErr error
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		_, err := s.client.PutObject(uploadCtx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType:  contentType,
			CacheControl: "public, max-age=31536000, immutable",
		})
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < uploadAttempts {
			log.Printf("storage: upload %s attempt %d failed, retrying: %v", objectName, attempt, err)
		}
	}
	return fmt.Errorf("upload %s: %w", objectName, lastErr)
}

// PublicURL builds the externally reachable URL for an object, preferring the
// CDN base when one is configured.
func (s *AudioStore) PublicURL(objectName string) string {
	if s == nil {
		return ""
	}
	object := strings.TrimPrefix(objectName, "/")
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, object)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, object)
}
