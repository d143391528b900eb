// Package integration exercises the full stack end to end: a TCP server
// over a real shard directory, driven through the wire protocol client.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamigot/sterling/internal/config"
	"github.com/mamigot/sterling/internal/protocol"
	"github.com/mamigot/sterling/internal/record"
	"github.com/mamigot/sterling/internal/shard"
	"github.com/mamigot/sterling/internal/social"
	"github.com/mamigot/sterling/internal/storage"
)

// testSystem is the system under test: one daemon over one shard
// directory, plus a client bound to it.
type testSystem struct {
	t      *testing.T
	cfg    config.Config
	server *protocol.Server
	client *protocol.Client
	errc   chan error
}

// newTestSystem initializes the shard directory and starts a server on a
// random port. The directory outlives server restarts within the test.
func newTestSystem(t *testing.T) *testSystem {
	t.Helper()

	cfg := config.Default()
	cfg.Root = t.TempDir()
	cfg.Listen = "127.0.0.1:0"
	require.NoError(t, cfg.Validate())

	router, err := shard.NewRouter(cfg.Root, cfg.Shards)
	require.NoError(t, err)
	require.NoError(t, router.Init())

	ts := &testSystem{t: t, cfg: cfg}
	ts.start()
	return ts
}

// start boots a server over the existing shard directory.
func (ts *testSystem) start() {
	ts.t.Helper()

	codec, err := record.NewCodec(ts.cfg.Widths)
	require.NoError(ts.t, err)
	router, err := shard.NewRouter(ts.cfg.Root, ts.cfg.Shards)
	require.NoError(ts.t, err)

	store := social.NewStore(codec, router, storage.NewEngine())
	ts.server = protocol.NewServer(protocol.NewHandler(store, codec))

	ts.errc = make(chan error, 1)
	go func() { ts.errc <- ts.server.Serve(ts.cfg.Listen) }()

	deadline := time.Now().Add(5 * time.Second)
	for ts.server.Addr() == nil {
		if time.Now().After(deadline) {
			ts.t.Fatal("server never bound its listener")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ts.client, err = protocol.NewClient(ts.server.Addr().String(), ts.cfg.Widths)
	require.NoError(ts.t, err)
}

func (ts *testSystem) stop() {
	ts.t.Helper()
	ts.server.Shutdown()
	assert.ErrorIs(ts.t, <-ts.errc, protocol.ErrServerClosed)
}

func TestAccountLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ts := newTestSystem(t)
	defer ts.stop()
	c := ts.client
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ok, err := c.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SaveCredential(ctx, "alice", "secret"))

	ok, err = c.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.VerifyCredential(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.VerifyCredential(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	// The second registration loses, even with the same password.
	assert.ErrorIs(t, c.SaveCredential(ctx, "alice", "secret"), protocol.ErrRequestFailed)

	require.NoError(t, c.SavePostAt(ctx, "alice", "goodbye", "1462734325"))
	require.NoError(t, c.DeleteCredential(ctx, "alice", "secret"))

	// Deactivation hides the account and its posts, and the username stays
	// claimed forever.
	ok, err = c.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	posts, err := c.ProfilePosts(ctx, "alice", -1)
	require.NoError(t, err)
	assert.Empty(t, posts)

	assert.ErrorIs(t, c.SaveCredential(ctx, "alice", "fresh"), protocol.ErrRequestFailed)
}

func TestFollowGraphAndFanOut(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ts := newTestSystem(t)
	defer ts.stop()
	c := ts.client
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, u := range []string{"alice", "bob", "carol"} {
		require.NoError(t, c.SaveCredential(ctx, u, "pw"+u))
	}

	require.NoError(t, c.Follow(ctx, "bob", "alice"))
	require.NoError(t, c.Follow(ctx, "carol", "alice"))

	followers, err := c.Followers(ctx, "alice", -1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, followers)

	require.NoError(t, c.SavePostAt(ctx, "alice", "to everyone", "1462734325"))

	for _, u := range []string{"bob", "carol"} {
		timeline, err := c.TimelinePosts(ctx, u, -1)
		require.NoError(t, err)
		require.Len(t, timeline, 1)
		assert.Equal(t, "alice", timeline[0].Author)
		assert.Equal(t, "to everyone", timeline[0].Text)
	}

	// Unfollowing scrubs the departing reader's timeline and nobody else's.
	require.NoError(t, c.Unfollow(ctx, "bob", "alice"))

	timeline, err := c.TimelinePosts(ctx, "bob", -1)
	require.NoError(t, err)
	assert.Empty(t, timeline)

	timeline, err = c.TimelinePosts(ctx, "carol", -1)
	require.NoError(t, err)
	assert.Len(t, timeline, 1)

	// Deleting the post tombstones the remaining copy too.
	require.NoError(t, c.DeletePost(ctx, "alice", "1462734325"))

	timeline, err = c.TimelinePosts(ctx, "carol", -1)
	require.NoError(t, err)
	assert.Empty(t, timeline)
}

func TestDataSurvivesRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ts := newTestSystem(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, ts.client.SaveCredential(ctx, "alice", "secret"))
	require.NoError(t, ts.client.SavePostAt(ctx, "alice", "durable", "1462734325"))

	ts.stop()
	ts.start()
	defer ts.stop()

	ok, err := ts.client.VerifyCredential(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	posts, err := ts.client.ProfilePosts(ctx, "alice", -1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "durable", posts[0].Text)
	assert.Equal(t, "1462734325", posts[0].Timestamp)
}
