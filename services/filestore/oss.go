package fssvc

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

// OSSStore keeps blobs in an Alibaba Cloud OSS bucket and serves them back
// over the bucket's public endpoint.
type OSSStore struct {
	bucket     *oss.Bucket
	bucketName string
	endpoint   string // scheme-less
	keyPrefix  string
}

var _ core.FileStore = (*OSSStore)(nil)

func NewOSSStore(conf *core.Config) (*OSSStore, error) {
	client, err := oss.New(conf.Storage.Endpoint, conf.Storage.AccessKeyID, conf.Storage.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to OSS")
	}
	bucket, err := client.Bucket(conf.Storage.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening bucket "+conf.Storage.Bucket)
	}

	endpoint := strings.TrimPrefix(conf.Storage.Endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return &OSSStore{
		bucket:     bucket,
		bucketName: conf.Storage.Bucket,
		endpoint:   endpoint,
		keyPrefix:  strings.Trim(conf.Storage.KeyPrefix, "/"),
	}, nil
}

func (s *OSSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	k := s.fullKey(key)
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	}
	if err := s.bucket.PutObject(k, r, opts...); err != nil {
		return "", core.NewStorageError("storing "+k, err)
	}
	return s.PublicURL(key), nil
}

func (s *OSSStore) Delete(ctx context.Context, url string) error {
	k, err := s.keyFromURL(url)
	if err != nil {
		return core.NewStorageError("deleting "+url, err)
	}
	if err := s.bucket.DeleteObject(k, oss.WithContext(ctx)); err != nil {
		return core.NewStorageError("deleting "+k, err)
	}
	return nil
}

func (s *OSSStore) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, s.endpoint, s.fullKey(key))
}

func (s *OSSStore) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + "/" + key
}

func (s *OSSStore) keyFromURL(url string) (string, error) {
	base := fmt.Sprintf("https://%s.%s/", s.bucketName, s.endpoint)
	if !strings.HasPrefix(url, base) {
		return "", errors.New("url does not belong to this bucket: " + url)
	}
	return strings.TrimPrefix(url, base), nil
}
