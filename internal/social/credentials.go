package social

import (
	"fmt"

	"github.com/mamigot/sterling/internal/record"
)

// Exists reports whether an active credential record exists for username,
// ignoring the password.
func (s *Store) Exists(username string) (bool, error) {
	path, slot, err := s.locate(username, record.KindCredential)
	if err != nil {
		return false, err
	}
	_, found, err := s.engine.FindFirst(path, slot, func(w []byte) bool {
		return s.codec.MatchCredential(w, record.CredentialFilter{
			Active:   record.FlagActive,
			Username: username,
		})
	})
	return found, err
}

// SaveCredential registers a new account. It fails with ErrUsernameExists
// if any credential record, active or tombstoned, already carries the
// username.
func (s *Store) SaveCredential(username, password string) error {
	// Encode first so field validation fires before any scan
	rec, err := s.codec.EncodeCredential(record.Credential{
		Active:   true,
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	path, slot, err := s.locate(username, record.KindCredential)
	if err != nil {
		return err
	}
	_, taken, err := s.engine.FindFirst(path, slot, func(w []byte) bool {
		return s.codec.MatchCredential(w, record.CredentialFilter{Username: username})
	})
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrUsernameExists, username)
	}
	return s.engine.Append(path, slot, rec)
}

// VerifyCredential fails with ErrCannotVerifyCredential unless an active
// record matches both the username and the password exactly.
func (s *Store) VerifyCredential(username, password string) error {
	path, slot, err := s.locate(username, record.KindCredential)
	if err != nil {
		return err
	}
	_, found, err := s.engine.FindFirst(path, slot, func(w []byte) bool {
		return s.codec.MatchCredential(w, record.CredentialFilter{
			Active:   record.FlagActive,
			Username: username,
			Password: password,
		})
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrCannotVerifyCredential, username)
	}
	return nil
}

// DeleteCredential deactivates an account. The credential must verify
// first; the cascade then deletes every profile post the user owns (each
// tombstoning its timeline copies across followers) before the credential
// record itself is flipped inactive. Verification failure skips the
// cascade entirely.
func (s *Store) DeleteCredential(username, password string) error {
	if err := s.VerifyCredential(username, password); err != nil {
		return err
	}

	posts, err := s.ProfilePosts(username, 0)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if err := s.DeletePost(username, p.Timestamp); err != nil {
			return fmt.Errorf("cascading delete of post %s: %w", p.Timestamp, err)
		}
	}

	path, slot, err := s.locate(username, record.KindCredential)
	if err != nil {
		return err
	}
	n, err := s.engine.FlipActive(path, slot, func(w []byte) bool {
		return s.codec.MatchCredential(w, record.CredentialFilter{
			Active:   record.FlagActive,
			Username: username,
			Password: password,
		})
	}, false)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrCannotVerifyCredential, username)
	}
	return nil
}
