// Package storage provides URI-addressed access to the byte stores that
// hold input and output datasets.  An Engine hides whether a URI names a
// local file or an object in S3; the pipeline layers above deal only in
// readers and writers.
package storage

import (
	"context"
	"fmt"
	"io"
)

type Engine interface {
	Get(ctx context.Context, u *URI) (io.ReadCloser, error)
	Put(ctx context.Context, u *URI) (io.WriteCloser, error)
	Delete(ctx context.Context, u *URI) error
	DeleteByPrefix(ctx context.Context, u *URI) error
	Exists(ctx context.Context, u *URI) (bool, error)
}

// NewEngine returns the engine implied by the URI's scheme.
func NewEngine(u *URI) (Engine, error) {
	switch u.Scheme {
	case "file", "":
		return NewFileSystem(), nil
	case "s3":
		return NewS3(), nil
	}
	return nil, fmt.Errorf("unsupported scheme %q in %s", u.Scheme, u)
}

// NewLocalEngine returns an engine for file system URIs only.
func NewLocalEngine() Engine {
	return NewFileSystem()
}
