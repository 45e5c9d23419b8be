// file: receipts/receipts_test.go
package receipts

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var uploadTime = time.UnixMilli(1767225600123)

func TestFileName(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"St. Mary's College", "St__Mary_s_College_Receipt_1767225600123.png"},
		{"", "unknown_Receipt_1767225600123.png"},
		{"   ", "unknown_Receipt_1767225600123.png"},
		{"../../etc/passwd", "______etc_passwd_Receipt_1767225600123.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.hint, ".png", uploadTime), tt.hint)
	}
}

// memBlob keeps puts in memory.
type memBlob struct {
	names        []string
	contentTypes []string
	err          error
}

func (m *memBlob) Put(_ context.Context, name, contentType string, _ []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.names = append(m.names, name)
	m.contentTypes = append(m.contentTypes, contentType)
	return "/uploads/receipts/" + name, nil
}

func newTestService(blob Blob, max int64) *Service {
	s := NewService(blob, max)
	s.now = func() time.Time { return uploadTime }
	return s
}

func TestSave_StoresImage(t *testing.T) {
	blob := &memBlob{}
	svc := newTestService(blob, 0)

	url, err := svc.Save(context.Background(), bytes.NewReader(pngBytes(t)), "Govt College")

	require.NoError(t, err)
	assert.Equal(t, "/uploads/receipts/Govt_College_Receipt_1767225600123.png", url)
	assert.Equal(t, []string{"image/png"}, blob.contentTypes)
	assert.Equal(t, DefaultMaxBytes, svc.MaxBytes())
}

func TestSave_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		max  int64
		want error
	}{
		{"empty", nil, 0, ErrNoFile},
		{"text", []byte("hello, this is definitely not an image"), 0, ErrNotImage},
		{"pdf", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n"), 0, ErrNotImage},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`), 0, ErrNotImage},
		{"too large", bytes.Repeat([]byte{0xff}, 65), 64, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := &memBlob{}
			_, err := newTestService(blob, tt.max).Save(context.Background(), bytes.NewReader(tt.body), "x")
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, blob.names)
		})
	}
}

func TestSave_NilReader(t *testing.T) {
	_, err := newTestService(&memBlob{}, 0).Save(context.Background(), nil, "x")
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestSave_BlobError(t *testing.T) {
	boom := errors.New("disk full")
	_, err := newTestService(&memBlob{err: boom}, 0).Save(context.Background(), bytes.NewReader(pngBytes(t)), "x")
	assert.ErrorIs(t, err, boom)
}

func TestLocalBlob(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	blob := NewLocalBlob(dir, "/uploads/receipts/")
	data := pngBytes(t)

	url, err := blob.Put(context.Background(), "a_Receipt_1.png", "image/png", data)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/receipts/a_Receipt_1.png", url)
	assert.Equal(t, dir, blob.Dir())

	onDisk, err := os.ReadFile(filepath.Join(dir, "a_Receipt_1.png"))
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	_, err = blob.Put(context.Background(), "../escape.png", "image/png", data)
	assert.Error(t, err)
}

// fakeS3 records PutObject calls.
type fakeS3 struct {
	s3iface.S3API
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, in)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Blob(t *testing.T) {
	client := &fakeS3{}
	blob := NewS3Blob(client, S3Config{Bucket: "athmageeth", Region: "ap-south-1", Prefix: "receipts/"})

	url, err := blob.Put(context.Background(), "x_Receipt_1.png", "image/png", []byte("png"))

	require.NoError(t, err)
	assert.Equal(t, "https://athmageeth.s3.ap-south-1.amazonaws.com/receipts/x_Receipt_1.png", url)
	require.Len(t, client.inputs, 1)
	assert.Equal(t, "receipts/x_Receipt_1.png", aws.StringValue(client.inputs[0].Key))
	assert.Equal(t, "image/png", aws.StringValue(client.inputs[0].ContentType))

	cdn := NewS3Blob(client, S3Config{Bucket: "b", PublicURL: "https://cdn.example.org/"})
	url, err = cdn.Put(context.Background(), "y.png", "image/png", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/y.png", url)

	client.err = errors.New("access denied")
	_, err = blob.Put(context.Background(), "z.png", "image/png", nil)
	assert.True(t, strings.Contains(err.Error(), "access denied"))
}
