package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWrapsPayload(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body, err := encode(IssueStatusChanged, map[string]string{"issueId": "abc", "to": "resolved"}, at)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, IssueStatusChanged, msg.Type)
	assert.True(t, at.Equal(msg.OccurredAt))
	assert.JSONEq(t, `{"issueId":"abc","to":"resolved"}`, string(msg.Data))
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, err := encode(IssueCreated, make(chan int), time.Now())
	assert.Error(t, err)
}
