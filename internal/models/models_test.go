package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDisplayTextPrecedence(t *testing.T) {
	msg := Message{ID: "m1", Original: "hello"}

	// No translation anywhere: the original shows.
	assert.Equal(t, "hello", msg.DisplayText(""))

	// A live translation fills the gap.
	assert.Equal(t, "kumusta", msg.DisplayText("kumusta"))

	// A confirmed translation differing from the original wins over live.
	msg.Translation = strPtr("kamusta po")
	assert.Equal(t, "kamusta po", msg.DisplayText("kumusta"))

	// A confirmed translation equal to the original is not authoritative.
	msg.Translation = strPtr("hello")
	assert.Equal(t, "kumusta", msg.DisplayText("kumusta"))

	// Show-original overrides everything.
	msg.Translation = strPtr("kamusta po")
	msg.ShowOriginal = true
	assert.Equal(t, "hello", msg.DisplayText("kumusta"))
}

func TestDisplayTimestamp(t *testing.T) {
	msg := Message{Timestamp: time.Date(2025, 2, 10, 8, 30, 0, 0, time.UTC)}
	assert.Equal(t, "2025-02-10 16:30", msg.DisplayTimestamp())

	assert.Equal(t, "", (&Message{}).DisplayTimestamp())
}

func TestMessageMarshalJSONIncludesDisplayTimestamp(t *testing.T) {
	msg := Message{
		ID:        "m1",
		Original:  "hello",
		Timestamp: time.Date(2025, 2, 10, 8, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2025-02-10 16:30", decoded["display_timestamp"])
	assert.Equal(t, "m1", decoded["id"])
	assert.Nil(t, decoded["translation"])
}

func TestSelectionGroupActiveItem(t *testing.T) {
	group := SelectionGroup{
		Name: "languages",
		Items: []SelectionItem{
			{Label: "English", Value: "en"},
			{Label: "Filipino", Value: "fil", Active: true},
		},
	}

	item := group.ActiveItem()
	require.NotNil(t, item)
	assert.Equal(t, "fil", item.Value)

	empty := SelectionGroup{}
	assert.Nil(t, empty.ActiveItem())
}
