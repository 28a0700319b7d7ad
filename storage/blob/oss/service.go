package ossblob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/storage/blob"
)

type service struct {
	bucket  *oss.Bucket
	baseURL string
}

var _ blob.Storage = (*service)(nil)

func NewService(conf *core.Config) (blob.Storage, error) {
	client, err := oss.New(conf.OSS.Endpoint, conf.OSS.AccessKeyID, conf.OSS.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating OSS client")
	}
	bucket, err := client.Bucket(conf.OSS.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSS bucket")
	}

	host := strings.TrimPrefix(strings.TrimPrefix(conf.OSS.Endpoint, "https://"), "http://")
	return &service{
		bucket:  bucket,
		baseURL: fmt.Sprintf("https://%s.%s", conf.OSS.Bucket, host),
	}, nil
}

// Upload stores the object and returns its public URL. The SDK does not take
// a context; cancellation is bounded by the bucket client's HTTP timeouts.
func (svc *service) Upload(_ context.Context, key, contentType string, r io.Reader) (string, error) {
	var opts []oss.Option
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := svc.bucket.PutObject(key, r, opts...); err != nil {
		return "", errors.Wrap(err, "putting object "+key)
	}
	return svc.baseURL + "/" + key, nil
}
