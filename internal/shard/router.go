package shard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mamigot/sterling/internal/record"
)

// Counts holds the number of shard files per record kind. More files mean
// shorter scans per file but more wasted space; the defaults are tuned so
// the post kinds, which grow fastest, are spread widest.
type Counts struct {
	Credential   int `yaml:"credential"`
	ProfilePost  int `yaml:"profile_post"`
	TimelinePost int `yaml:"timeline_post"`
	Relation     int `yaml:"relation"`
}

// For returns the shard count for kind k.
func (c Counts) For(k record.Kind) (int, error) {
	switch k {
	case record.KindCredential:
		return c.Credential, nil
	case record.KindProfilePost:
		return c.ProfilePost, nil
	case record.KindTimelinePost:
		return c.TimelinePost, nil
	case record.KindRelation:
		return c.Relation, nil
	}
	return 0, record.ErrUnknownKind
}

// Router resolves (username, kind) pairs to shard file paths under one
// storage root. A router is stateless and immutable after construction.
type Router struct {
	root   string
	counts Counts
}

// NewRouter validates the shard counts and returns a router rooted at root.
func NewRouter(root string, counts Counts) (*Router, error) {
	if root == "" {
		return nil, fmt.Errorf("shard: storage root must not be empty")
	}
	for _, k := range record.Kinds {
		n, err := counts.For(k)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, fmt.Errorf("shard: %s shard count must be positive, got %d", k, n)
		}
	}
	return &Router{root: root, counts: counts}, nil
}

// Root returns the storage root directory.
func (r *Router) Root() string { return r.root }

// Route returns the shard index for username's records of kind k: the sum
// of the username's code points modulo the kind's shard count.
func (r *Router) Route(username string, k record.Kind) (int, error) {
	count, err := r.counts.For(k)
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, cp := range username {
		sum += int(cp)
	}
	return sum % count, nil
}

// Path returns the shard file path holding username's records of kind k.
func (r *Router) Path(username string, k record.Kind) (string, error) {
	idx, err := r.Route(username, k)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.root, fmt.Sprintf("%s_%d.txt", k, idx)), nil
}

// All returns every shard file path the router can ever resolve, in a
// stable order.
func (r *Router) All() []string {
	var paths []string
	for _, k := range record.Kinds {
		count, _ := r.counts.For(k)
		for i := 0; i < count; i++ {
			paths = append(paths, filepath.Join(r.root, fmt.Sprintf("%s_%d.txt", k, i)))
		}
	}
	return paths
}

// Init creates the storage root and pre-creates every shard file as a
// zero-length file if it does not already exist. Existing files are left
// untouched.
func (r *Router) Init() error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return fmt.Errorf("shard: creating storage root: %w", err)
	}
	for _, path := range r.All() {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return fmt.Errorf("shard: creating %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("shard: creating %s: %w", path, err)
		}
	}
	return nil
}
