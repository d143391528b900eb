package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/mamigot/sterling/internal/record"
)

// ErrRequestFailed is returned when the server answers a request with the
// error marker. The wire carries no further detail.
var ErrRequestFailed = errors.New("protocol: request failed")

// Client issues requests against a running server. Each call dials a fresh
// connection; the protocol is cheap enough that pooling has not been worth
// the bookkeeping.
type Client struct {
	addr   string
	widths record.Widths
	codec  *record.Codec
}

// NewClient returns a client for the server at addr, decoding records with
// the given widths. The widths must match the server's or record responses
// will not split.
func NewClient(addr string, widths record.Widths) (*Client, error) {
	codec, err := record.NewCodec(widths)
	if err != nil {
		return nil, err
	}
	return &Client{addr: addr, widths: widths, codec: codec}, nil
}

// Do sends one request line and returns the raw response payload. The
// error marker is folded into ErrRequestFailed so typed helpers only see
// payloads they can decode.
func (c *Client) Do(ctx context.Context, req string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return "", err
		}
	}

	if _, err := fmt.Fprintf(conn, "%s\n", req); err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		return "", fmt.Errorf("read response: %w", errors.New("connection closed"))
	}

	resp := scanner.Text()
	if resp == StatusError {
		return "", ErrRequestFailed
	}
	return resp, nil
}

func (c *Client) status(ctx context.Context, req string) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp != StatusSuccess {
		return fmt.Errorf("protocol: unexpected response %q", resp)
	}
	return nil
}

func (c *Client) boolean(ctx context.Context, req string) (bool, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return false, err
	}
	switch resp {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("protocol: unexpected response %q", resp)
}

func (c *Client) records(ctx context.Context, req string, k record.Kind) ([]string, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	slot, err := c.widths.SlotSize(k)
	if err != nil {
		return nil, err
	}
	return SplitRecords(resp, slot)
}

// Exists reports whether the username has ever been registered.
func (c *Client) Exists(ctx context.Context, username string) (bool, error) {
	return c.boolean(ctx, fmt.Sprintf("GET/credential/%s", username))
}

// VerifyCredential reports whether the username/password pair names a live
// account.
func (c *Client) VerifyCredential(ctx context.Context, username, password string) (bool, error) {
	return c.boolean(ctx, fmt.Sprintf("GET/credential/%s:%s", username, password))
}

// SaveCredential registers a new account.
func (c *Client) SaveCredential(ctx context.Context, username, password string) error {
	return c.status(ctx, fmt.Sprintf("SAVE/credential/%s:%s", username, password))
}

// DeleteCredential deactivates the account and everything it posted.
func (c *Client) DeleteCredential(ctx context.Context, username, password string) error {
	return c.status(ctx, fmt.Sprintf("DELETE/credential/%s:%s", username, password))
}

// SavePost publishes text under the username, stamped by the server.
func (c *Client) SavePost(ctx context.Context, username, text string) error {
	return c.status(ctx, fmt.Sprintf("SAVE/posts/%s:%s", username, text))
}

// SavePostAt publishes text under the username with the caller's timestamp,
// a ten-digit integral number of seconds.
func (c *Client) SavePostAt(ctx context.Context, username, text, timestamp string) error {
	return c.status(ctx, fmt.Sprintf("SAVE/posts/%s:%s:%s", username, text, timestamp))
}

// DeletePost removes the username's post carrying the given timestamp.
func (c *Client) DeletePost(ctx context.Context, username, timestamp string) error {
	return c.status(ctx, fmt.Sprintf("DELETE/posts/%s:%s", username, timestamp))
}

// ProfilePosts lists the username's own posts, most recent first. A limit
// of zero or less means all of them.
func (c *Client) ProfilePosts(ctx context.Context, username string, limit int) ([]record.ProfilePost, error) {
	recs, err := c.records(ctx, fmt.Sprintf("GET/posts/profile/%s:%d", username, limit), record.KindProfilePost)
	if err != nil {
		return nil, err
	}
	posts := make([]record.ProfilePost, 0, len(recs))
	for _, r := range recs {
		p, err := c.codec.DecodeProfilePost([]byte(r))
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// TimelinePosts lists the posts fanned out to the username's timeline,
// most recent first.
func (c *Client) TimelinePosts(ctx context.Context, username string, limit int) ([]record.TimelinePost, error) {
	recs, err := c.records(ctx, fmt.Sprintf("GET/posts/timeline/%s:%d", username, limit), record.KindTimelinePost)
	if err != nil {
		return nil, err
	}
	posts := make([]record.TimelinePost, 0, len(recs))
	for _, r := range recs {
		p, err := c.codec.DecodeTimelinePost([]byte(r))
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// Follow adds friend to the username's outbound relations.
func (c *Client) Follow(ctx context.Context, username, friend string) error {
	return c.status(ctx, fmt.Sprintf("SAVE/relations/%s:%s", username, friend))
}

// Unfollow removes the edge and scrubs the friend's posts from the
// username's timeline.
func (c *Client) Unfollow(ctx context.Context, username, friend string) error {
	return c.status(ctx, fmt.Sprintf("DELETE/relations/%s:%s", username, friend))
}

// IsFollowing reports whether username currently follows friend.
func (c *Client) IsFollowing(ctx context.Context, username, friend string) (bool, error) {
	return c.boolean(ctx, fmt.Sprintf("GET/relations/%s:%s", username, friend))
}

// Followers lists who follows the username.
func (c *Client) Followers(ctx context.Context, username string, limit int) ([]string, error) {
	return c.related(ctx, fmt.Sprintf("GET/relations/followers/%s:%d", username, limit))
}

// Friends lists who the username follows.
func (c *Client) Friends(ctx context.Context, username string, limit int) ([]string, error) {
	return c.related(ctx, fmt.Sprintf("GET/relations/friends/%s:%d", username, limit))
}

func (c *Client) related(ctx context.Context, req string) ([]string, error) {
	recs, err := c.records(ctx, req, record.KindRelation)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		rel, err := c.codec.DecodeRelation([]byte(r))
		if err != nil {
			return nil, err
		}
		names = append(names, rel.Second)
	}
	return names, nil
}
