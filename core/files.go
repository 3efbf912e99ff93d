package core

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// FileStore is any service that can keep opaque file payloads and serve them
// back by URL. Put failures surface as *StorageError; Delete is best-effort.
type FileStore interface {
	// Put stores the content under key and returns a stable retrieval URL.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete removes the blob a previous Put returned url for.
	Delete(ctx context.Context, url string) error
	// PublicURL returns the retrieval URL for key without touching the store.
	PublicURL(key string) string
}

// File is an uploaded file on its way to a FileStore.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// BuildObjectKey derives a fresh unique object key for filename under prefix.
// Keys are never reused; replaced blobs keep their old key.
func BuildObjectKey(prefix, filename string) string {
	name := path.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("%s/%s/%s", prefix, uuid.New().String(), name)
}
