package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeShowingChanged(t *testing.T) {
	b, err := json.Marshal(showingChangedMsg{
		Type:      "showing_changed",
		ShowingID: 42,
		TsUnix:    time.Now().Unix(),
	})
	require.NoError(t, err)

	id, ok := decodeShowingChanged(b)
	require.True(t, ok)
	assert.EqualValues(t, 42, id)
}

func TestDecodeShowingChangedRejectsGarbage(t *testing.T) {
	_, ok := decodeShowingChanged([]byte("{not json"))
	assert.False(t, ok)

	_, ok = decodeShowingChanged([]byte(`{"type":"showing_changed"}`))
	assert.False(t, ok)
}
