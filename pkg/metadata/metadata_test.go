package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupStrategies(t *testing.T) {
	feed := NewFeed(
		Entry{Character: "Duke of Vienna, later Friar", Description: "The duke"},
		Entry{Character: "  Isabella ", Image: "isabella.png"},
		Entry{Character: "Claudio", Notes: "brother"},
		Entry{Character: "Claud", Notes: "shorter"},
		Entry{Character: "   "},
	)
	require.Equal(t, 4, feed.Len())

	duke, ok := feed.Lookup("Duke of Vienna")
	require.True(t, ok)
	assert.Equal(t, "The duke", duke.Description)

	isabella, ok := feed.Lookup("ISABELLA")
	require.True(t, ok)
	assert.Equal(t, "isabella.png", isabella.Image)

	// Exact match beats an earlier prefix match.
	claud, ok := feed.Lookup("claud")
	require.True(t, ok)
	assert.Equal(t, "shorter", claud.Notes)

	// Node name longer than the feed name.
	claudio, ok := feed.Lookup("Claudio the Younger")
	require.True(t, ok)
	assert.Equal(t, "brother", claudio.Notes)

	_, ok = feed.Lookup("Angelo")
	assert.False(t, ok)
	_, ok = feed.Lookup("  ")
	assert.False(t, ok)
}

func TestNilFeed(t *testing.T) {
	var feed *Feed
	_, ok := feed.Lookup("Anyone")
	assert.False(t, ok)
	assert.Zero(t, feed.Len())
	assert.Nil(t, feed.Entries())
}

func TestParseCSV(t *testing.T) {
	content := []byte("\ufeffCharacter,Description,Image\n" +
		"Hamlet,\"Prince of Denmark, son of the late king\",hamlet.jpg\n" +
		"Ophelia,,\n" +
		",orphan row,\n")

	feed, err := ParseCSV(content)
	require.NoError(t, err)
	require.Equal(t, 2, feed.Len())

	hamlet, ok := feed.Lookup("HAMLET")
	require.True(t, ok)
	assert.Equal(t, "Prince of Denmark, son of the late king", hamlet.Description)
	assert.Equal(t, "hamlet.jpg", hamlet.Image)
	assert.Empty(t, hamlet.Notes)

	ophelia, ok := feed.Lookup("Ophelia")
	require.True(t, ok)
	assert.True(t, ophelia.Empty())
}

func TestParseCSVRequiresCharacterColumn(t *testing.T) {
	_, err := ParseCSV([]byte("name,description\nHamlet,prince\n"))
	assert.Error(t, err)

	feed, err := ParseCSV(nil)
	require.NoError(t, err)
	assert.Zero(t, feed.Len())
}
