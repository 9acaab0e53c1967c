// Package store is the transport layer for catalog access. It abstracts
// "read this index description" and "read this leaf resource" over two
// very different backends: a local directory tree and a remote HTTP tree.
// The backend is picked once, at Open time, and the rest of the client
// never cares which one it got.
package store

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// Store reads catalog content from a single root. Locations are opaque
// strings produced by Join/Dir — relative slash paths for the local
// backend, absolute URLs for the remote one.
type Store interface {
	// Resource returns the raw text at location.
	Resource(location string) (string, error)

	// Index fetches and parses the index description at location.
	Index(location string) (*ini.File, error)

	// Join resolves path elements against base using the transport's
	// path semantics: filesystem joining locally, RFC 3986 reference
	// resolution remotely (so "../foo" or an absolute element can
	// redirect outside the current branch).
	Join(base string, elem ...string) string

	// Dir returns the location of the directory containing location.
	Dir(location string) string

	// Base returns the origin locations are joined against: "" for the
	// local backend (locations are root-relative), the root URL for the
	// remote one.
	Base() string

	// Close releases any resources held by the store.
	Close() error
}

// TransportError is a backend I/O failure: a missing local file, a
// network error, or a non-success HTTP status. It is never retried.
type TransportError struct {
	Location string
	Status   int // HTTP status code, 0 for local and network errors
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Location, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Options configures a store. The zero value is usable; unset fields
// fall back to DefaultOptions values.
type Options struct {
	Timeout       time.Duration // per-request timeout, remote only
	CacheSize     int           // in-memory response cache capacity, remote only
	DiskCachePath string        // optional persistent fetch cache, remote only
	Logger        *zap.Logger
}

// DefaultOptions returns the options Open uses for unset fields.
func DefaultOptions() Options {
	return Options{
		Timeout:   30 * time.Second,
		CacheSize: 4096,
	}
}

// Open selects the backend for root: a path naming an existing local
// directory gets the local store, anything else is treated as a remote
// root and fetched over HTTP.
func Open(root string, opts Options) (Store, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if info, err := os.Stat(root); err == nil && info.IsDir() {
		return NewLocal(osfs.New(root), opts.Logger), nil
	}
	if _, err := url.Parse(root); err != nil {
		return nil, fmt.Errorf("invalid catalog root %q: %w", root, err)
	}
	return NewRemote(root, opts)
}

// parseIndex parses raw index description bytes. Section name case is
// preserved (labels are case-sensitive choices); option names are
// lowercased on load, matching the configparser-style files the catalog
// is made of.
func parseIndex(data []byte, location string) (*ini.File, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("parse index %s: %w", location, err)
	}
	return f, nil
}
