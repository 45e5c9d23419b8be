// file: receipts/s3.go
package receipts

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Blob stores receipts as objects in a bucket.
type S3Blob struct {
	client    s3iface.S3API
	bucket    string
	prefix    string
	publicURL string
}

// S3Config locates the receipts bucket. PublicURL defaults to the bucket's
// virtual-hosted endpoint.
type S3Config struct {
	Bucket    string
	Region    string
	Prefix    string
	PublicURL string
}

// NewS3Blob wraps an S3 client.
func NewS3Blob(client s3iface.S3API, cfg S3Config) *S3Blob {
	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Blob{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		publicURL: public,
	}
}

func (b *S3Blob) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := b.prefix + name
	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return b.publicURL + "/" + key, nil
}
