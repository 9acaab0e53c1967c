package store

import (
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// Local reads the catalog from a billy.Filesystem rooted at the catalog
// directory. Production use wraps the OS filesystem; tests substitute
// an in-memory one. Locations are root-relative slash paths.
type Local struct {
	fs  billy.Filesystem
	log *zap.Logger
}

var _ Store = (*Local)(nil)

// NewLocal creates a local store over fsys. fsys must be rooted at the
// catalog directory.
func NewLocal(fsys billy.Filesystem, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{fs: fsys, log: log}
}

func (s *Local) Resource(location string) (string, error) {
	data, err := util.ReadFile(s.fs, location)
	if err != nil {
		return "", &TransportError{Location: location, Err: err}
	}
	return string(data), nil
}

func (s *Local) Index(location string) (*ini.File, error) {
	text, err := s.Resource(location)
	if err != nil {
		return nil, err
	}
	return parseIndex([]byte(text), location)
}

// Join joins elements the way os.path.join does: an absolute element
// discards everything joined so far.
func (s *Local) Join(base string, elem ...string) string {
	joined := base
	for _, e := range elem {
		if path.IsAbs(e) {
			joined = e
		} else {
			joined = path.Join(joined, e)
		}
	}
	return joined
}

func (s *Local) Dir(location string) string { return path.Dir(location) }

func (s *Local) Base() string { return "" }

func (s *Local) Close() error { return nil }
