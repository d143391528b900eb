package protocol

import (
	"regexp"
	"strconv"

	"github.com/mamigot/sterling/internal/record"
	"github.com/mamigot/sterling/internal/social"
)

// Request patterns. The explicit-timestamp post form is matched before the
// bare form: the bare text pattern is greedy enough to swallow a trailing
// ":timestamp" otherwise.
var (
	reExists        = regexp.MustCompile(`^GET/credential/([a-z]+)$`)
	reVerify        = regexp.MustCompile(`^GET/credential/([a-z]+):([a-z]+)$`)
	reProfilePosts  = regexp.MustCompile(`^GET/posts/profile/([a-z]+):(-?[0-9]+)$`)
	reTimelinePosts = regexp.MustCompile(`^GET/posts/timeline/([a-z]+):(-?[0-9]+)$`)
	reIsFollowing   = regexp.MustCompile(`^GET/relations/([a-z]+):([a-z]+)$`)
	reFollowers     = regexp.MustCompile(`^GET/relations/followers/([a-z]+):(-?[0-9]+)$`)
	reFriends       = regexp.MustCompile(`^GET/relations/friends/([a-z]+):(-?[0-9]+)$`)

	reSaveCredential = regexp.MustCompile(`^SAVE/credential/([a-z]+):([a-z]+)$`)
	reSavePostAt     = regexp.MustCompile(`^SAVE/posts/([a-z]+):(.*):([0-9]{10})$`)
	reSavePost       = regexp.MustCompile(`^SAVE/posts/([a-z]+):(.*)$`)
	reFollow         = regexp.MustCompile(`^SAVE/relations/([a-z]+):([a-z]+)$`)

	reDeleteCredential = regexp.MustCompile(`^DELETE/credential/([a-z]+):([a-z]+)$`)
	reDeletePost       = regexp.MustCompile(`^DELETE/posts/([a-z]+):([0-9]{10})$`)
	reUnfollow         = regexp.MustCompile(`^DELETE/relations/([a-z]+):([a-z]+)$`)
)

// Handler translates wire requests into store operations and store results
// back into wire messages. Failures of any flavor answer the error marker:
// the presentation layer on the far side owes the user nothing more
// specific than that the request did not take.
type Handler struct {
	store *social.Store
	codec *record.Codec
}

// NewHandler returns a handler serving store through codec. The codec must
// be the one the store itself encodes with, or record responses would not
// split at the caller's slot sizes.
func NewHandler(store *social.Store, codec *record.Codec) *Handler {
	return &Handler{store: store, codec: codec}
}

// Handle answers a single request line.
func (h *Handler) Handle(req string) Message {
	if m := reVerify.FindStringSubmatch(req); m != nil {
		return Bool(h.store.VerifyCredential(m[1], m[2]) == nil)
	}
	if m := reExists.FindStringSubmatch(req); m != nil {
		ok, err := h.store.Exists(m[1])
		if err != nil {
			return Failure()
		}
		return Bool(ok)
	}
	if m := reProfilePosts.FindStringSubmatch(req); m != nil {
		return h.profilePosts(m[1], atoi(m[2]))
	}
	if m := reTimelinePosts.FindStringSubmatch(req); m != nil {
		return h.timelinePosts(m[1], atoi(m[2]))
	}
	if m := reFollowers.FindStringSubmatch(req); m != nil {
		return h.relations(m[1], record.Inbound, atoi(m[2]))
	}
	if m := reFriends.FindStringSubmatch(req); m != nil {
		return h.relations(m[1], record.Outbound, atoi(m[2]))
	}
	if m := reIsFollowing.FindStringSubmatch(req); m != nil {
		ok, err := h.store.IsFollowing(m[1], m[2])
		if err != nil {
			return Failure()
		}
		return Bool(ok)
	}

	if m := reSaveCredential.FindStringSubmatch(req); m != nil {
		return status(h.store.SaveCredential(m[1], m[2]))
	}
	if m := reSavePostAt.FindStringSubmatch(req); m != nil {
		return status(h.store.SavePostAt(m[1], m[2], m[3]))
	}
	if m := reSavePost.FindStringSubmatch(req); m != nil {
		_, err := h.store.SavePost(m[1], m[2])
		return status(err)
	}
	if m := reFollow.FindStringSubmatch(req); m != nil {
		return status(h.store.Follow(m[1], m[2]))
	}

	if m := reDeleteCredential.FindStringSubmatch(req); m != nil {
		return status(h.store.DeleteCredential(m[1], m[2]))
	}
	if m := reDeletePost.FindStringSubmatch(req); m != nil {
		return status(h.store.DeletePost(m[1], m[2]))
	}
	if m := reUnfollow.FindStringSubmatch(req); m != nil {
		return status(h.store.Unfollow(m[1], m[2]))
	}

	return Failure()
}

func status(err error) Message {
	if err != nil {
		return Failure()
	}
	return Success()
}

// atoi parses the already regex-validated limit parameter.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func (h *Handler) profilePosts(username string, limit int) Message {
	posts, err := h.store.ProfilePosts(username, limit)
	if err != nil {
		return Failure()
	}
	items := make([]string, 0, len(posts))
	for _, p := range posts {
		b, err := h.codec.EncodeProfilePost(p)
		if err != nil {
			return Failure()
		}
		items = append(items, string(b))
	}
	msg, err := Records(items)
	if err != nil {
		return Failure()
	}
	return msg
}

func (h *Handler) timelinePosts(username string, limit int) Message {
	posts, err := h.store.TimelinePosts(username, limit)
	if err != nil {
		return Failure()
	}
	items := make([]string, 0, len(posts))
	for _, p := range posts {
		b, err := h.codec.EncodeTimelinePost(p)
		if err != nil {
			return Failure()
		}
		items = append(items, string(b))
	}
	msg, err := Records(items)
	if err != nil {
		return Failure()
	}
	return msg
}

// relations rebuilds the subject's relation records for the wire. The
// store hands back bare usernames; the caller expects full fixed-width
// relation records it can split and decode.
func (h *Handler) relations(username string, dir record.Direction, limit int) Message {
	var (
		names []string
		err   error
	)
	if dir == record.Inbound {
		names, err = h.store.Followers(username, limit)
	} else {
		names, err = h.store.Friends(username, limit)
	}
	if err != nil {
		return Failure()
	}

	items := make([]string, 0, len(names))
	for _, name := range names {
		b, err := h.codec.EncodeRelation(record.Relation{
			Active:    true,
			First:     username,
			Direction: dir,
			Second:    name,
		})
		if err != nil {
			return Failure()
		}
		items = append(items, string(b))
	}
	msg, err := Records(items)
	if err != nil {
		return Failure()
	}
	return msg
}
