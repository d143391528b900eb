package protocol

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer runs a server on a random port and returns a client
// bound to it. Shutdown happens during test cleanup.
func startTestServer(t *testing.T) *Client {
	t.Helper()

	srv := NewServer(newTestHandler(t))
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve("127.0.0.1:0") }()

	// Wait for the listener to bind.
	deadline := time.Now().Add(5 * time.Second)
	for srv.Addr() == nil {
		select {
		case err := <-errc:
			t.Fatalf("server exited early: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("server never bound its listener")
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Cleanup(func() {
		srv.Shutdown()
		assert.ErrorIs(t, <-errc, ErrServerClosed)
	})

	client, err := NewClient(srv.Addr().String(), testWidths)
	require.NoError(t, err)
	return client
}

func TestServerRoundTrip(t *testing.T) {
	c := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, c.SaveCredential(ctx, "alice", "secret"))
	require.NoError(t, c.SaveCredential(ctx, "bob", "hunter"))

	ok, err := c.VerifyCredential(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Follow(ctx, "bob", "alice"))
	require.NoError(t, c.SavePostAt(ctx, "alice", "hello, network", "1462734325"))

	timeline, err := c.TimelinePosts(ctx, "bob", -1)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, "alice", timeline[0].Author)
	assert.Equal(t, "bob", timeline[0].Username)
	assert.Equal(t, "hello, network", timeline[0].Text)

	followers, err := c.Followers(ctx, "alice", -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, followers)

	friends, err := c.Friends(ctx, "bob", -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, friends)
}

func TestServerReportsFailures(t *testing.T) {
	c := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := c.DeletePost(ctx, "nobody", "1462734325")
	assert.ErrorIs(t, err, ErrRequestFailed)

	_, err = c.Do(ctx, "not a request")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestServerHandlesManySequentialRequests(t *testing.T) {
	c := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, c.SaveCredential(ctx, "carol", "pw"))
	for i := 0; i < 5; i++ {
		require.NoError(t, c.SavePostAt(ctx, "carol", "post", fmt.Sprintf("146273432%d", i)))
	}

	posts, err := c.ProfilePosts(ctx, "carol", 3)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}
