// file: receipts/local.go
package receipts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalBlob writes receipts into a directory the router serves statically.
type LocalBlob struct {
	dir     string
	baseURL string
}

// NewLocalBlob stores files in dir; baseURL is the path dir is served at.
func NewLocalBlob(dir, baseURL string) *LocalBlob {
	return &LocalBlob{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir is the directory receipts are written to.
func (b *LocalBlob) Dir() string { return b.dir }

func (b *LocalBlob) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid receipt name %q", name)
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating receipts dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing receipt: %w", err)
	}
	return b.baseURL + "/" + name, nil
}
