package social

import (
	"fmt"

	"github.com/mamigot/sterling/internal/record"
)

// SavePost appends a post with the current second-resolution timestamp and
// fans it out to every active follower's timeline shard. It returns the
// timestamp assigned to the post.
func (s *Store) SavePost(username, text string) (string, error) {
	ts := s.timestamp()
	return ts, s.SavePostAt(username, text, ts)
}

// SavePostAt is SavePost with an explicit timestamp. The wire protocol
// exposes it so a post can be re-applied elsewhere with its original
// timestamp intact.
//
// A post is identified by (username, timestamp); if any record, live or
// tombstoned, already carries that identity the save is rejected with
// ErrDuplicatePost. The fan-out (one profile write plus one write per
// follower) is deliberate write amplification in exchange for single-shard
// timeline reads.
func (s *Store) SavePostAt(username, text, timestamp string) error {
	rec, err := s.codec.EncodeProfilePost(record.ProfilePost{
		Active:    true,
		Username:  username,
		Timestamp: timestamp,
		Text:      text,
	})
	if err != nil {
		return err
	}

	path, slot, err := s.locate(username, record.KindProfilePost)
	if err != nil {
		return err
	}
	_, dup, err := s.engine.FindFirst(path, slot, func(w []byte) bool {
		return s.codec.MatchProfilePost(w, record.ProfilePostFilter{
			Username:  username,
			Timestamp: timestamp,
		})
	})
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: %s@%s", ErrDuplicatePost, username, timestamp)
	}
	if err := s.engine.Append(path, slot, rec); err != nil {
		return err
	}

	followers, err := s.Followers(username, 0)
	if err != nil {
		return err
	}
	for _, follower := range followers {
		tlRec, err := s.codec.EncodeTimelinePost(record.TimelinePost{
			Active:    true,
			Username:  follower,
			Author:    username,
			Timestamp: timestamp,
			Text:      text,
		})
		if err != nil {
			return err
		}
		tlPath, tlSlot, err := s.locate(follower, record.KindTimelinePost)
		if err != nil {
			return err
		}
		// A mid-sequence failure stops the fan-out; earlier copies stand.
		if err := s.engine.Append(tlPath, tlSlot, tlRec); err != nil {
			return fmt.Errorf("fanning out to %s: %w", follower, err)
		}
	}
	return nil
}

// DeletePost tombstones the profile record identified by (username,
// timestamp) and then the denormalized copy in every follower's timeline
// shard. A follower with no copy (they followed after the post was
// created) is skipped, not an error. If the profile record itself is not
// live, the delete fails with ErrRecordNotFound and no timeline shard is
// touched.
func (s *Store) DeletePost(username, timestamp string) error {
	path, slot, err := s.locate(username, record.KindProfilePost)
	if err != nil {
		return err
	}
	n, err := s.engine.FlipActive(path, slot, func(w []byte) bool {
		return s.codec.MatchProfilePost(w, record.ProfilePostFilter{
			Active:    record.FlagActive,
			Username:  username,
			Timestamp: timestamp,
		})
	}, false)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: post %s@%s", ErrRecordNotFound, username, timestamp)
	}

	followers, err := s.Followers(username, 0)
	if err != nil {
		return err
	}
	for _, follower := range followers {
		tlPath, tlSlot, err := s.locate(follower, record.KindTimelinePost)
		if err != nil {
			return err
		}
		if _, err := s.engine.FlipActive(tlPath, tlSlot, func(w []byte) bool {
			return s.codec.MatchTimelinePost(w, record.TimelinePostFilter{
				Active:    record.FlagActive,
				Username:  follower,
				Author:    username,
				Timestamp: timestamp,
			})
		}, false); err != nil {
			return fmt.Errorf("tombstoning timeline copy for %s: %w", follower, err)
		}
	}
	return nil
}

// ProfilePosts returns username's live posts, most recent first, truncated
// to limit. A limit of zero or less means unbounded.
func (s *Store) ProfilePosts(username string, limit int) ([]record.ProfilePost, error) {
	path, slot, err := s.locate(username, record.KindProfilePost)
	if err != nil {
		return nil, err
	}
	matches, err := s.engine.Collect(path, slot, func(w []byte) bool {
		return s.codec.MatchProfilePost(w, record.ProfilePostFilter{
			Active:   record.FlagActive,
			Username: username,
		})
	}, limit)
	if err != nil {
		return nil, err
	}

	posts := make([]record.ProfilePost, 0, len(matches))
	for _, m := range matches {
		p, err := s.codec.DecodeProfilePost(m)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// TimelinePosts returns the live denormalized posts in username's timeline
// shard, most recent first, truncated to limit. A limit of zero or less
// means unbounded.
func (s *Store) TimelinePosts(username string, limit int) ([]record.TimelinePost, error) {
	path, slot, err := s.locate(username, record.KindTimelinePost)
	if err != nil {
		return nil, err
	}
	matches, err := s.engine.Collect(path, slot, func(w []byte) bool {
		return s.codec.MatchTimelinePost(w, record.TimelinePostFilter{
			Active:   record.FlagActive,
			Username: username,
		})
	}, limit)
	if err != nil {
		return nil, err
	}

	posts := make([]record.TimelinePost, 0, len(matches))
	for _, m := range matches {
		p, err := s.codec.DecodeTimelinePost(m)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}
