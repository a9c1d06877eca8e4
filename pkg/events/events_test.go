package events

import (
	"context"
	"testing"
	"time"
)

func TestDispatcher_Subscribe(t *testing.T) {
	var d Dispatcher[int]

	var got []int
	d.Subscribe(func(e int) { got = append(got, e) })
	d.Subscribe(func(e int) { got = append(got, e*10) })

	d.Dispatch(1)
	d.Dispatch(2)

	want := []int{1, 10, 2, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDispatcher_Unbind(t *testing.T) {
	var d Dispatcher[string]

	calls := 0
	unbind := d.Subscribe(func(string) { calls++ })

	d.Dispatch("a")
	unbind()
	d.Dispatch("b")

	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}

	// Double unbind is harmless.
	unbind()
}

func TestDispatcher_SubscribeOnce(t *testing.T) {
	var d Dispatcher[int]

	calls := 0
	d.SubscribeOnce(func(int) { calls++ })

	d.Dispatch(1)
	d.Dispatch(2)

	if calls != 1 {
		t.Errorf("one-shot handler ran %d times, want 1", calls)
	}
}

func TestDispatcher_OnceDetachedBeforeHandlerRuns(t *testing.T) {
	var d Dispatcher[int]

	calls := 0
	d.SubscribeOnce(func(int) {
		calls++
		// Recursive dispatch must not re-run this handler.
		if calls == 1 {
			d.Dispatch(99)
		}
	})

	d.Dispatch(1)
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestDispatcher_Next(t *testing.T) {
	var d Dispatcher[ClickEvent]

	ch := d.Next(context.Background())
	want := ClickEvent{X: 3, Y: 4, Button: 1}
	d.Dispatch(want)

	select {
	case got := <-ch:
		if got.X != want.X || got.Y != want.Y || got.Button != want.Button {
			t.Errorf("Next() delivered %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("Next() did not deliver the event")
	}

	// The channel closes after one event.
	if _, open := <-ch; open {
		t.Error("Next() channel still open after delivery")
	}
}

func TestDispatcher_NextCancelled(t *testing.T) {
	var d Dispatcher[int]

	ctx, cancel := context.WithCancel(context.Background())
	_ = d.Next(ctx)
	cancel()

	// The canceled waiter eventually detaches.
	deadline := time.Now().Add(time.Second)
	for d.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Len() = %d after cancel, want 0", d.Len())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestClickEvent_HasModifier(t *testing.T) {
	e := ClickEvent{Modifiers: []MouseModifier{ModifierShift, ModifierAlt}}
	if !e.HasModifier(ModifierShift) {
		t.Error("HasModifier(shift) = false")
	}
	if e.HasModifier(ModifierMeta) {
		t.Error("HasModifier(meta) = true")
	}
	if (ClickEvent{}).HasModifier(ModifierControl) {
		t.Error("HasModifier() on an empty event = true")
	}
}
