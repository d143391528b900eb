package social

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamigot/sterling/internal/record"
	"github.com/mamigot/sterling/internal/shard"
	"github.com/mamigot/sterling/internal/storage"
)

// testClock hands out a strictly advancing fake time so every SavePost in
// a test gets a distinct second-resolution timestamp unless a test pins it.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Unix(1462734325, 0)}
}

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// newTestStore builds a store over a throwaway shard directory with the
// production widths and shard counts.
func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()

	codec, err := record.NewCodec(record.Widths{Username: 20, Password: 20, Text: 140})
	require.NoError(t, err)

	router, err := shard.NewRouter(t.TempDir(), shard.Counts{
		Credential: 2, ProfilePost: 10, TimelinePost: 10, Relation: 5,
	})
	require.NoError(t, err)
	require.NoError(t, router.Init())

	st := NewStore(codec, router, storage.NewEngine())
	clock := newTestClock()
	st.now = clock.now
	return st, clock
}

// register is a shorthand for tests that need a handful of accounts.
func register(t *testing.T, st *Store, usernames ...string) {
	t.Helper()
	for _, u := range usernames {
		require.NoError(t, st.SaveCredential(u, "pw"+u))
	}
}
