package export

import (
	"fmt"
	"net/url"
	"strings"
)

// Scheme identifies where output is written
type Scheme string

const (
	SchemeStdout Scheme = "stdout"
	SchemeFile   Scheme = "file"
	SchemeS3     Scheme = "s3"
	SchemeAzBlob Scheme = "azblob"
)

// Target is a parsed output location
type Target struct {
	Scheme Scheme
	// Bucket is the S3 bucket or blob container; empty for local targets
	Bucket string
	// Path is the object key or local file path
	Path string
}

// ParseTarget parses "-", "", a file path, file://path, s3://bucket/key or azblob://container/blob
func ParseTarget(raw string) (Target, error) {
	if raw == "" || raw == "-" {
		return Target{Scheme: SchemeStdout}, nil
	}
	if !strings.Contains(raw, "://") {
		return Target{Scheme: SchemeFile, Path: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("parse output %q: %w", raw, err)
	}

	switch Scheme(u.Scheme) {
	case SchemeFile:
		path := u.Host + u.Path
		if path == "" {
			return Target{}, fmt.Errorf("output %q has no file path", raw)
		}
		return Target{Scheme: SchemeFile, Path: path}, nil
	case SchemeS3, SchemeAzBlob:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Target{}, fmt.Errorf("output %q must look like %s://<bucket>/<key>", raw, u.Scheme)
		}
		return Target{Scheme: Scheme(u.Scheme), Bucket: u.Host, Path: key}, nil
	default:
		return Target{}, fmt.Errorf("unsupported output scheme %q", u.Scheme)
	}
}

func (t Target) String() string {
	switch t.Scheme {
	case SchemeStdout:
		return "-"
	case SchemeFile:
		return t.Path
	default:
		return fmt.Sprintf("%s://%s/%s", t.Scheme, t.Bucket, t.Path)
	}
}
