package notifications

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PublishAndDrain(t *testing.T) {
	queue := NewQueue(0)
	queue.Info("first")
	queue.Warning("second")
	queue.Error("third")
	assert.Equal(t, 3, queue.Size())

	drained := queue.Drain()
	require.Len(t, drained, 3)
	assert.Equal(t, "first", drained[0].Text)
	assert.Equal(t, SeverityInfo, drained[0].Severity)
	assert.Equal(t, SeverityWarning, drained[1].Severity)
	assert.Equal(t, SeverityError, drained[2].Severity)
	assert.False(t, drained[0].At.IsZero())
	assert.Zero(t, queue.Size())
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	queue := NewQueue(3)
	for i := 0; i < 5; i++ {
		queue.Info(fmt.Sprintf("message %d", i))
	}
	drained := queue.Drain()
	require.Len(t, drained, 3)
	assert.Equal(t, "message 2", drained[0].Text)
	assert.Equal(t, "message 4", drained[2].Text)
}

func TestQueue_Clear(t *testing.T) {
	queue := NewQueue(0)
	queue.Info("pending")
	queue.Clear()
	assert.Zero(t, queue.Size())
	assert.Empty(t, queue.Drain())
}
