package social

import (
	"fmt"

	"github.com/mamigot/sterling/internal/record"
)

// Follow records that follower now follows friend. The edge is stored as
// two mirrored physical records: outbound in the follower's relation shard
// and inbound in the friend's. The outbound side is always written first so
// a crash between the two writes leaves a deterministic one-sided state.
//
// Each side revives a tombstoned record when one exists instead of
// appending, so toggling an edge never grows either shard. Following a
// user who does not exist writes nothing and fails with ErrRecordNotFound;
// following someone already followed is a no-op.
func (s *Store) Follow(follower, friend string) error {
	ok, err := s.Exists(friend)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %s", ErrRecordNotFound, friend)
	}

	outbound := record.Relation{Active: true, First: follower, Direction: record.Outbound, Second: friend}
	if err := s.reviveOrAppend(follower, outbound); err != nil {
		return fmt.Errorf("recording outbound edge: %w", err)
	}

	inbound := record.Relation{Active: true, First: friend, Direction: record.Inbound, Second: follower}
	if err := s.reviveOrAppend(friend, inbound); err != nil {
		return fmt.Errorf("recording inbound edge: %w", err)
	}
	return nil
}

// reviveOrAppend makes rel active in owner's relation shard: if a live
// match already exists it does nothing, if a tombstoned match exists it
// flips it back, and only otherwise does it append a new record.
func (s *Store) reviveOrAppend(owner string, rel record.Relation) error {
	path, slot, err := s.locate(owner, record.KindRelation)
	if err != nil {
		return err
	}

	filter := record.RelationFilter{
		Active:    record.FlagActive,
		First:     rel.First,
		Direction: rel.Direction,
		Second:    rel.Second,
	}
	_, live, err := s.engine.FindFirst(path, slot, func(w []byte) bool {
		return s.codec.MatchRelation(w, filter)
	})
	if err != nil {
		return err
	}
	if live {
		return nil
	}

	filter.Active = record.FlagInactive
	n, err := s.engine.FlipActive(path, slot, func(w []byte) bool {
		return s.codec.MatchRelation(w, filter)
	}, true)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	rec, err := s.codec.EncodeRelation(rel)
	if err != nil {
		return err
	}
	return s.engine.Append(path, slot, rec)
}

// Unfollow tombstones the outbound edge in follower's shard, the mirrored
// inbound edge in friend's shard, and every live timeline copy of friend's
// posts in follower's timeline shard, so an unfollowed author disappears
// from the timeline retroactively. Unfollowing someone not currently
// followed fails with ErrRecordNotFound before anything is written.
func (s *Store) Unfollow(follower, friend string) error {
	outPath, slot, err := s.locate(follower, record.KindRelation)
	if err != nil {
		return err
	}
	n, err := s.engine.FlipActive(outPath, slot, func(w []byte) bool {
		return s.codec.MatchRelation(w, record.RelationFilter{
			Active:    record.FlagActive,
			First:     follower,
			Direction: record.Outbound,
			Second:    friend,
		})
	}, false)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s does not follow %s", ErrRecordNotFound, follower, friend)
	}

	inPath, _, err := s.locate(friend, record.KindRelation)
	if err != nil {
		return err
	}
	if _, err := s.engine.FlipActive(inPath, slot, func(w []byte) bool {
		return s.codec.MatchRelation(w, record.RelationFilter{
			Active:    record.FlagActive,
			First:     friend,
			Direction: record.Inbound,
			Second:    follower,
		})
	}, false); err != nil {
		return fmt.Errorf("tombstoning inbound edge: %w", err)
	}

	tlPath, tlSlot, err := s.locate(follower, record.KindTimelinePost)
	if err != nil {
		return err
	}
	if _, err := s.engine.FlipActive(tlPath, tlSlot, func(w []byte) bool {
		return s.codec.MatchTimelinePost(w, record.TimelinePostFilter{
			Active:   record.FlagActive,
			Username: follower,
			Author:   friend,
		})
	}, false); err != nil {
		return fmt.Errorf("tombstoning timeline copies: %w", err)
	}
	return nil
}

// IsFollowing reports whether a live outbound edge from follower to friend
// exists.
func (s *Store) IsFollowing(follower, friend string) (bool, error) {
	path, slot, err := s.locate(follower, record.KindRelation)
	if err != nil {
		return false, err
	}
	_, found, err := s.engine.FindFirst(path, slot, func(w []byte) bool {
		return s.codec.MatchRelation(w, record.RelationFilter{
			Active:    record.FlagActive,
			First:     follower,
			Direction: record.Outbound,
			Second:    friend,
		})
	})
	return found, err
}

// Followers returns the usernames that follow username, most recently
// recorded first, truncated to limit. A limit of zero or less means
// unbounded.
func (s *Store) Followers(username string, limit int) ([]string, error) {
	return s.relatedUsernames(username, record.Inbound, limit)
}

// Friends returns the usernames that username follows, most recently
// recorded first, truncated to limit. A limit of zero or less means
// unbounded.
func (s *Store) Friends(username string, limit int) ([]string, error) {
	return s.relatedUsernames(username, record.Outbound, limit)
}

// relatedUsernames scans username's own relation shard for live records in
// one direction and returns their second usernames. Both follower and
// friend listings are single-shard reads; that is the point of mirroring
// every edge.
func (s *Store) relatedUsernames(username string, dir record.Direction, limit int) ([]string, error) {
	path, slot, err := s.locate(username, record.KindRelation)
	if err != nil {
		return nil, err
	}
	matches, err := s.engine.Collect(path, slot, func(w []byte) bool {
		return s.codec.MatchRelation(w, record.RelationFilter{
			Active:    record.FlagActive,
			First:     username,
			Direction: dir,
		})
	}, limit)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := s.codec.DecodeRelation(m)
		if err != nil {
			return nil, err
		}
		names = append(names, rel.Second)
	}
	return names, nil
}
