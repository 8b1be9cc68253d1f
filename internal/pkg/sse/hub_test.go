package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribersOnly(t *testing.T) {
	hub := NewHub()

	reviewers, cleanupReviewers := hub.Subscribe("reviewers")
	defer cleanupReviewers()
	employee, cleanupEmployee := hub.Subscribe("E1")
	defer cleanupEmployee()

	hub.Notify("reviewers", "correction.submitted", map[string]string{"id": "R1"})

	select {
	case ev := <-reviewers:
		assert.Equal(t, "reviewers", ev.Topic)
		assert.Equal(t, "correction.submitted", ev.Name)
	default:
		t.Fatal("expected an event for reviewers")
	}

	select {
	case ev := <-employee:
		t.Fatalf("unexpected event %q for employee topic", ev.Name)
	default:
	}
}

func TestHub_SubscribeToSeveralTopics(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("reviewers", "E1")
	assert.Equal(t, 1, hub.SubscriberCount("reviewers"))
	assert.Equal(t, 1, hub.SubscriberCount("E1"))

	hub.Notify("E1", "correction.approved", nil)
	ev := <-ch
	assert.Equal(t, "E1", ev.Topic)

	cleanup()
	cleanup()
	assert.Zero(t, hub.SubscriberCount("reviewers"))
	assert.Zero(t, hub.SubscriberCount("E1"))

	_, open := <-ch
	require.False(t, open)
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("E1")
	defer cleanup()

	for i := 0; i < hub.bufferSize+5; i++ {
		hub.Notify("E1", "tick", i)
	}
	assert.Len(t, ch, hub.bufferSize)
}
