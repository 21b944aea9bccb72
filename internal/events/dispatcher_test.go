package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string

	d.Subscribe(EventUserLoggedIn, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.Subject)
		return errors.New("first failed")
	})
	d.Subscribe(EventUserLoggedIn, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventUserSignedUp, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventUserLoggedIn, "a@x.com", time.Now(), nil))
	require.EqualError(t, err, "first failed")
	require.Equal(t, []string{"first:a@x.com", "second:a@x.com"}, got)
}

func TestNewEventAssignsID(t *testing.T) {
	a := NewEvent(EventUserSignedUp, "a@x.com", time.Now(), UserSignedUpPayload{Nickname: "al"})
	b := NewEvent(EventUserSignedUp, "a@x.com", time.Now(), nil)
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
}
