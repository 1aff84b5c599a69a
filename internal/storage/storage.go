// Package storage archives uploaded identity documents in an S3-compatible
// object store. Objects are streamed; nothing touches local disk.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDCardPrefix is the key prefix for archived identity card images.
const IDCardPrefix = "idcards"

// PutObjectOptions describe an upload. Size is -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the store reports after an upload.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	Metadata    map[string]string
}

// Storage is the subset of an object store the KYC flow needs.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a URL that downloads key without credentials until expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// NewObjectKey returns prefix/<uuid><ext>, keeping only the lower-cased
// extension of the client's file name.
func NewObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	return path.Join(prefix, uuid.NewString()+ext)
}
