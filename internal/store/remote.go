package store

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gopkg.in/ini.v1"
)

const userAgent = "seistools-nrl/0.1"

// Remote reads the catalog over HTTP. Every successfully fetched body is
// kept in an in-memory cache keyed by exact URL, so each URL is
// downloaded at most once per store. The cache is bounded but generous —
// the whole catalog fits comfortably — and never invalidates: a remote
// tree modified mid-session is not detected. Concurrent first fetches of
// the same URL are collapsed into a single request.
//
// With a DiskCachePath set, bodies are also persisted to a SQLite cache
// shared across processes, so short-lived CLI runs do not re-download
// the tree every invocation.
type Remote struct {
	root   string
	client *http.Client
	cache  *lru.Cache[string, string]
	disk   *DiskCache
	group  singleflight.Group
	log    *zap.Logger
}

var _ Store = (*Remote)(nil)

// NewRemote creates a remote store for the catalog rooted at root.
func NewRemote(root string, opts Options) (*Remote, error) {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = def.CacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}

	var disk *DiskCache
	if opts.DiskCachePath != "" {
		disk, err = OpenDiskCache(opts.DiskCachePath)
		if err != nil {
			return nil, err
		}
	}

	return &Remote{
		root:   strings.TrimRight(root, "/"),
		client: &http.Client{Timeout: opts.Timeout},
		cache:  cache,
		disk:   disk,
		log:    opts.Logger,
	}, nil
}

func (s *Remote) Resource(location string) (string, error) {
	return s.fetch(location)
}

func (s *Remote) Index(location string) (*ini.File, error) {
	text, err := s.fetch(location)
	if err != nil {
		return nil, err
	}
	return parseIndex([]byte(text), location)
}

// Join resolves each element against the accumulated URL per RFC 3986,
// so an element like "../foo" climbs out of the current branch and an
// absolute path element replaces the whole path.
func (s *Remote) Join(base string, elem ...string) string {
	joined := base
	for _, e := range elem {
		u, err := url.Parse(strings.TrimRight(joined, "/") + "/")
		if err != nil {
			return ""
		}
		ref, err := url.Parse(e)
		if err != nil {
			return ""
		}
		joined = u.ResolveReference(ref).String()
	}
	return joined
}

// Dir truncates location at its last path separator, the URL analogue
// of path.Dir.
func (s *Remote) Dir(location string) string {
	i := strings.LastIndex(location, "/")
	if i < 0 {
		return location
	}
	return location[:i]
}

func (s *Remote) Base() string { return s.root }

func (s *Remote) Close() error {
	if s.disk != nil {
		return s.disk.Close()
	}
	return nil
}

// fetch returns the body at location, consulting the in-memory cache,
// then the disk cache, then the network. Concurrent misses on the same
// URL share one download.
func (s *Remote) fetch(location string) (string, error) {
	if body, ok := s.cache.Get(location); ok {
		s.log.Debug("fetch cache hit", zap.String("url", location))
		return body, nil
	}

	v, err, _ := s.group.Do(location, func() (any, error) {
		// Re-check: a concurrent fetch may have filled the cache while
		// we waited on the group.
		if body, ok := s.cache.Get(location); ok {
			return body, nil
		}
		if s.disk != nil {
			body, ok, err := s.disk.Get(location)
			if err != nil {
				s.log.Warn("disk cache read failed", zap.String("url", location), zap.Error(err))
			} else if ok {
				s.log.Debug("disk cache hit", zap.String("url", location))
				s.cache.Add(location, body)
				return body, nil
			}
		}
		body, err := s.download(location)
		if err != nil {
			return nil, err
		}
		s.cache.Add(location, body)
		if s.disk != nil {
			if err := s.disk.Put(location, body); err != nil {
				s.log.Warn("disk cache write failed", zap.String("url", location), zap.Error(err))
			}
		}
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Remote) download(location string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, location, nil)
	if err != nil {
		return "", &TransportError{Location: location, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &TransportError{Location: location, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body) // drain for connection reuse
		return "", &TransportError{
			Location: location,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Location: location, Err: err}
	}
	s.log.Debug("fetched", zap.String("url", location), zap.Int("bytes", len(body)))
	return string(body), nil
}
