package storage

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// URI identifies a dataset location.  A string with no scheme is taken as a
// file system path, so plain paths work anywhere a URI is accepted.
type URI url.URL

func ParseURI(s string) (*URI, error) {
	if s == "" {
		return nil, fmt.Errorf("empty URI")
	}
	if !hasScheme(s) {
		abs, err := filepath.Abs(s)
		if err != nil {
			return nil, err
		}
		return &URI{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return (*URI)(u), nil
}

// MustParseURI is for tests and compile-time constants.
func MustParseURI(s string) *URI {
	u, err := ParseURI(s)
	if err != nil {
		panic(err)
	}
	return u
}

func hasScheme(s string) bool {
	for _, prefix := range []string{"file://", "s3://"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Filepath returns the URI as a local file system path.  Only meaningful
// for file URIs.
func (u *URI) Filepath() string {
	return filepath.FromSlash(u.Path)
}

// JoinPath returns a new URI with elem appended to the path.
func (u *URI) JoinPath(elem string) *URI {
	out := *u
	out.Path = path.Join(u.Path, elem)
	return &out
}

func (u *URI) String() string {
	return (*url.URL)(u).String()
}
