package social

import (
	"errors"
	"fmt"
	"time"

	"github.com/mamigot/sterling/internal/record"
	"github.com/mamigot/sterling/internal/shard"
	"github.com/mamigot/sterling/internal/storage"
)

// Typed failures surfaced to the boundary layers. Zero matches from the
// scan engine is never an error by itself; these are the cases where a
// specific domain operation decides that it is.
var (
	// ErrUsernameExists is returned when registering a username that any
	// credential record, active or tombstoned, already claims. Usernames
	// are never reusable: reviving a tombstoned post and relation graph
	// under a new owner would corrupt follower semantics.
	ErrUsernameExists = errors.New("username already exists")

	// ErrCannotVerifyCredential is returned when no active credential
	// matches a username/password pair.
	ErrCannotVerifyCredential = errors.New("cannot verify credential")

	// ErrRecordNotFound is returned when an operation required a live
	// record that does not exist: deleting an absent post, unfollowing a
	// user who was not followed, following a nonexistent user.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicatePost is returned when a user already has a post with
	// the same second-resolution timestamp. (username, timestamp) is a
	// post's identity, so the second post is rejected, never overwritten.
	ErrDuplicatePost = errors.New("user already has a post with that timestamp")
)

// Store exposes the credential, post and relation use cases over one set
// of shard files. Each call resolves, opens and releases only the shards
// it needs; nothing is held open across calls.
type Store struct {
	codec  *record.Codec
	router *shard.Router
	engine *storage.Engine

	// now is swappable so tests can pin post timestamps.
	now func() time.Time
}

// NewStore composes a store from its three collaborators.
func NewStore(codec *record.Codec, router *shard.Router, engine *storage.Engine) *Store {
	return &Store{codec: codec, router: router, engine: engine, now: time.Now}
}

// locate resolves the shard path and slot size for username's records of
// kind k.
func (s *Store) locate(username string, k record.Kind) (string, int, error) {
	path, err := s.router.Path(username, k)
	if err != nil {
		return "", 0, err
	}
	slot, err := s.codec.SlotSize(k)
	if err != nil {
		return "", 0, err
	}
	return path, slot, nil
}

// timestamp renders the current time as the canonical 10-digit decimal
// second count.
func (s *Store) timestamp() string {
	return fmt.Sprintf("%010d", s.now().Unix())
}
