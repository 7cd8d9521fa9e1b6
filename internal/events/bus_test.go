package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[BuildStarted](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(t.Context(), BuildStarted{RunID: "r1"}))

	select {
	case got := <-ch:
		require.Equal(t, "r1", got.RunID)
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_InterfaceSubscriptionReceivesConcreteEvents(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[Event](b, 2)
	defer unsubscribe()

	require.NoError(t, b.Publish(t.Context(), BuildStarted{}))
	require.NoError(t, b.Publish(t.Context(), BuildCompleted{Outcome: "success"}))

	require.Equal(t, "build_started", (<-ch).EventName())
	require.Equal(t, "build_completed", (<-ch).EventName())
}

func TestBus_ConcreteSubscriptionIgnoresOtherTypes(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[BuildCompleted](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(t.Context(), BuildStarted{}))
	select {
	case <-ch:
		t.Fatal("unexpected delivery")
	default:
	}
}

func TestBus_PublishBackpressure(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := Subscribe[FilesChanged](b, 0)
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	err := b.Publish(ctx, FilesChanged{})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRuntime))
}

func TestBus_CloseAndUnsubscribe(t *testing.T) {
	b := NewBus()

	ch, unsubscribe := Subscribe[FilesChanged](b, 1)
	require.Equal(t, 1, SubscriberCount[FilesChanged](b))
	unsubscribe()
	require.Equal(t, 0, SubscriberCount[FilesChanged](b))
	_, ok := <-ch
	require.False(t, ok)

	ch2, _ := Subscribe[FilesChanged](b, 1)
	b.Close()
	b.Close()
	_, ok = <-ch2
	require.False(t, ok)

	err := b.Publish(t.Context(), FilesChanged{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRuntime))

	late, _ := Subscribe[FilesChanged](b, 1)
	_, ok = <-late
	require.False(t, ok)
}

func TestBus_PublishValidation(t *testing.T) {
	b := NewBus()
	defer b.Close()

	err := b.Publish(t.Context(), nil)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}
