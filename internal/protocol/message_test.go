package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMessages(t *testing.T) {
	assert.Equal(t, "success", Success().Encode())
	assert.Equal(t, "error", Failure().Encode())
	assert.Equal(t, "true", Bool(true).Encode())
	assert.Equal(t, "false", Bool(false).Encode())
}

func TestRecordsConcatenatesUniformItems(t *testing.T) {
	msg, err := Records([]string{"aaaa", "bbbb", "cccc"})
	require.NoError(t, err)

	assert.Equal(t, 3, msg.NumItems())
	assert.Equal(t, 4, msg.ItemSize())
	assert.Equal(t, "aaaabbbbcccc", msg.Encode())
}

func TestRecordsRejectsMixedItemSizes(t *testing.T) {
	_, err := Records([]string{"aaaa", "bb"})
	assert.ErrorIs(t, err, ErrUnevenItems)
}

func TestRecordsEmpty(t *testing.T) {
	msg, err := Records(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, msg.NumItems())
	assert.Equal(t, "", msg.Encode())
}

func TestSplitRecords(t *testing.T) {
	recs, err := SplitRecords("aaaabbbbcccc", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa", "bbbb", "cccc"}, recs)

	recs, err = SplitRecords("", 4)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = SplitRecords("aaaabb", 4)
	assert.Error(t, err)

	_, err = SplitRecords("aaaa", 0)
	assert.Error(t, err)
}
