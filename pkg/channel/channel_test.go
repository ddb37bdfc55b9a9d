package channel

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jesusruizlopez/pusher-java-client/pkg/dispatch"
	"github.com/jesusruizlopez/pusher-java-client/pkg/wire"
)

const successEnvelope = `{"event":"pusher_internal:subscription_succeeded","data":"{\"resume_after\":\"42\"}"}`

type recordedEvent struct {
	channel, event, data string
}

// fakeListener records every callback. Implements ChannelListener.
type fakeListener struct {
	mu        sync.Mutex
	events    []recordedEvent
	succeeded []string
}

func (l *fakeListener) OnEvent(channel, event, data string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, recordedEvent{channel, event, data})
}

func (l *fakeListener) OnSubscriptionSucceeded(channel string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.succeeded = append(l.succeeded, channel)
}

func (l *fakeListener) eventCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func newTestChannel(t *testing.T, name string) *Channel {
	t.Helper()
	ch, err := New(name, Config{Dispatcher: dispatch.Sync{}})
	if err != nil {
		t.Fatalf("New(%q) error = %v", name, err)
	}
	return ch
}

func appEvent(event, data, id string) string {
	raw := fmt.Sprintf(`{"event":%q,"data":%q`, event, data)
	if id != "" {
		raw += fmt.Sprintf(`,"id":%q`, id)
	}
	return raw + "}"
}

func TestNewInitialState(t *testing.T) {
	ch := newTestChannel(t, "ticker")

	if ch.Name() != "ticker" {
		t.Errorf("Name() = %q, want %q", ch.Name(), "ticker")
	}
	if ch.State() != StateInitial {
		t.Errorf("State() = %v, want StateInitial", ch.State())
	}
	if ch.ResumeAfter() != "" {
		t.Errorf("ResumeAfter() = %q, want empty", ch.ResumeAfter())
	}
	if ch.ChannelListener() != nil {
		t.Error("ChannelListener() != nil at construction")
	}
}

func TestNewEmptyName(t *testing.T) {
	_, err := New("", Config{Dispatcher: dispatch.Sync{}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New(\"\") error = %v, want ErrInvalidArgument", err)
	}
}

func TestNewReservedPrefixes(t *testing.T) {
	for _, name := range []string{"private-orders", "presence-lobby"} {
		_, err := New(name, Config{Dispatcher: dispatch.Sync{}})
		if !errors.Is(err, ErrNameReserved) {
			t.Errorf("New(%q) error = %v, want ErrNameReserved", name, err)
		}
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("New(%q) error = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestNewNilDispatcher(t *testing.T) {
	_, err := New("ticker", Config{})
	if !errors.Is(err, ErrNilDispatcher) {
		t.Errorf("New() error = %v, want ErrNilDispatcher", err)
	}
}

func TestBindUnbindRoundTrip(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	listener := &fakeListener{}

	if err := ch.Bind("price-update", listener); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if got := len(ch.Listeners("price-update")); got != 1 {
		t.Fatalf("len(Listeners()) = %d, want 1", got)
	}

	if err := ch.Unbind("price-update", listener); err != nil {
		t.Fatalf("Unbind() error = %v", err)
	}
	if got := len(ch.Listeners("price-update")); got != 0 {
		t.Errorf("len(Listeners()) after unbind = %d, want 0", got)
	}
}

func TestBindIsIdempotent(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	listener := &fakeListener{}

	ch.Bind("price-update", listener)
	ch.Bind("price-update", listener)

	if err := ch.OnMessage("price-update", appEvent("price-update", `{"bid":100}`, "")); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}

	if got := listener.eventCount(); got != 1 {
		t.Errorf("dispatched callbacks = %d, want 1 (set semantics)", got)
	}
}

func TestUnbindUnknownListenerIsNoError(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	if err := ch.Unbind("price-update", &fakeListener{}); err != nil {
		t.Errorf("Unbind() of unregistered listener error = %v, want nil", err)
	}
}

func TestBindValidation(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	listener := &fakeListener{}

	if err := ch.Bind("", listener); !errors.Is(err, ErrEmptyEventName) {
		t.Errorf("Bind(\"\") error = %v, want ErrEmptyEventName", err)
	}
	if err := ch.Bind("price-update", nil); !errors.Is(err, ErrNilListener) {
		t.Errorf("Bind(nil) error = %v, want ErrNilListener", err)
	}
	if err := ch.Bind("pusher_internal:subscription_succeeded", listener); !errors.Is(err, ErrInternalEvent) {
		t.Errorf("Bind(internal) error = %v, want ErrInternalEvent", err)
	}
}

func TestSubscriptionSucceeded(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	lifecycle := &fakeListener{}
	ch.SetChannelListener(lifecycle)

	if err := ch.OnMessage(wire.EventSubscriptionSucceeded, successEnvelope); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}

	if ch.State() != StateSubscribed {
		t.Errorf("State() = %v, want StateSubscribed", ch.State())
	}
	if ch.ResumeAfter() != "42" {
		t.Errorf("ResumeAfter() = %q, want %q", ch.ResumeAfter(), "42")
	}
	if len(lifecycle.succeeded) != 1 || lifecycle.succeeded[0] != "ticker" {
		t.Errorf("OnSubscriptionSucceeded calls = %v, want exactly one for ticker", lifecycle.succeeded)
	}
}

func TestSubscriptionSucceededWithoutListener(t *testing.T) {
	ch := newTestChannel(t, "ticker")

	if err := ch.OnMessage(wire.EventSubscriptionSucceeded, `{"event":"pusher_internal:subscription_succeeded","data":"{}"}`); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	if ch.State() != StateSubscribed {
		t.Errorf("State() = %v, want StateSubscribed", ch.State())
	}
	if ch.ResumeAfter() != "" {
		t.Errorf("ResumeAfter() = %q, want empty (token absent)", ch.ResumeAfter())
	}
}

func TestContinuityTokenLastWriteWins(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	ch.SetResumeAfter("42")

	// The overwrite is unconditional: "7" replaces "42" even though it
	// may describe an earlier delivery.
	if err := ch.OnMessage("price-update", appEvent("price-update", "{}", "7")); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	if ch.ResumeAfter() != "7" {
		t.Errorf("ResumeAfter() = %q, want %q", ch.ResumeAfter(), "7")
	}
}

func TestTokenUpdatedWithoutListeners(t *testing.T) {
	ch := newTestChannel(t, "ticker")

	if err := ch.OnMessage("price-update", appEvent("price-update", "{}", "9")); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	if ch.ResumeAfter() != "9" {
		t.Errorf("ResumeAfter() = %q, want %q (updated despite no listeners)", ch.ResumeAfter(), "9")
	}
}

func TestEventWithoutListenersIsDropped(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	bound := &fakeListener{}
	ch.Bind("other-event", bound)

	if err := ch.OnMessage("price-update", appEvent("price-update", "{}", "")); err != nil {
		t.Errorf("OnMessage() with no listeners error = %v, want nil", err)
	}
	if got := bound.eventCount(); got != 0 {
		t.Errorf("callbacks to unrelated listener = %d, want 0", got)
	}
}

func TestEventPayloadPassedThrough(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	listener := &fakeListener{}
	ch.Bind("price-update", listener)

	ch.OnMessage("price-update", appEvent("price-update", `{"bid":100}`, ""))

	if len(listener.events) != 1 {
		t.Fatalf("callbacks = %d, want 1", len(listener.events))
	}
	got := listener.events[0]
	if got.channel != "ticker" || got.event != "price-update" || got.data != `{"bid":100}` {
		t.Errorf("callback = %+v, want (ticker, price-update, {\"bid\":100})", got)
	}
}

func TestOnMessageMalformedEnvelope(t *testing.T) {
	ch := newTestChannel(t, "ticker")

	err := ch.OnMessage("price-update", "not json")
	var de *wire.DecodeError
	if !errors.As(err, &de) {
		t.Errorf("OnMessage(malformed) error = %v, want *wire.DecodeError", err)
	}
}

func TestSubscribeMessage(t *testing.T) {
	ch := newTestChannel(t, "my-channel")

	text, err := ch.SubscribeMessage()
	if err != nil {
		t.Fatalf("SubscribeMessage() error = %v", err)
	}
	want := `{"event":"pusher:subscribe","data":{"channel":"my-channel"}}`
	if text != want {
		t.Errorf("SubscribeMessage() = %s, want %s", text, want)
	}
}

func TestSubscribeMessageWithContinuityToken(t *testing.T) {
	ch := newTestChannel(t, "my-channel")
	ch.SetResumeAfter("42")

	text, err := ch.SubscribeMessage()
	if err != nil {
		t.Fatalf("SubscribeMessage() error = %v", err)
	}
	want := `{"event":"pusher:subscribe","data":{"channel":"my-channel","resume_after":"42"}}`
	if text != want {
		t.Errorf("SubscribeMessage() = %s, want %s", text, want)
	}
}

func TestUnsubscribeMessage(t *testing.T) {
	ch := newTestChannel(t, "my-channel")
	ch.SetResumeAfter("42")

	text, err := ch.UnsubscribeMessage()
	if err != nil {
		t.Fatalf("UnsubscribeMessage() error = %v", err)
	}
	want := `{"event":"pusher:unsubscribe","data":{"channel":"my-channel"}}`
	if text != want {
		t.Errorf("UnsubscribeMessage() = %s, want %s (no continuity field)", text, want)
	}
	if ch.State() != StateUnsubscribed {
		t.Errorf("State() = %v, want StateUnsubscribed", ch.State())
	}
}

func TestBindAfterUnsubscribeFails(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	listener := &fakeListener{}
	ch.Bind("price-update", listener)

	if _, err := ch.UnsubscribeMessage(); err != nil {
		t.Fatalf("UnsubscribeMessage() error = %v", err)
	}

	if err := ch.Bind("price-update", listener); !errors.Is(err, ErrIllegalState) {
		t.Errorf("Bind() after unsubscribe error = %v, want ErrIllegalState", err)
	}
	if err := ch.Unbind("price-update", listener); !errors.Is(err, ErrIllegalState) {
		t.Errorf("Unbind() after unsubscribe error = %v, want ErrIllegalState", err)
	}
}

func TestUnsubscribedStateIsSticky(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	ch.UnsubscribeMessage()

	// A late success envelope must not resurrect the channel.
	ch.OnMessage(wire.EventSubscriptionSucceeded, successEnvelope)
	if ch.State() != StateUnsubscribed {
		t.Errorf("State() = %v, want StateUnsubscribed (sticky)", ch.State())
	}

	ch.MarkSubscribeSent()
	if ch.State() != StateUnsubscribed {
		t.Errorf("State() after MarkSubscribeSent = %v, want StateUnsubscribed", ch.State())
	}
}

func TestUnsubscribeKeepsListeners(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	listener := &fakeListener{}
	ch.Bind("price-update", listener)

	ch.UnsubscribeMessage()

	if got := len(ch.Listeners("price-update")); got != 1 {
		t.Errorf("len(Listeners()) after unsubscribe = %d, want 1 (kept for resubscribe)", got)
	}
}

func TestMarkSubscribeSent(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	ch.MarkSubscribeSent()
	if ch.State() != StateSubscribeSent {
		t.Errorf("State() = %v, want StateSubscribeSent", ch.State())
	}
}

func TestChannelListenerLastWriteWins(t *testing.T) {
	ch := newTestChannel(t, "ticker")
	first := &fakeListener{}
	second := &fakeListener{}

	ch.SetChannelListener(first)
	ch.SetChannelListener(second)

	ch.OnMessage(wire.EventSubscriptionSucceeded, successEnvelope)

	if len(first.succeeded) != 0 {
		t.Errorf("replaced listener got %d calls, want 0", len(first.succeeded))
	}
	if len(second.succeeded) != 1 {
		t.Errorf("current listener got %d calls, want 1", len(second.succeeded))
	}
}

func TestStateStringNames(t *testing.T) {
	cases := map[State]string{
		StateInitial:       "INITIAL",
		StateSubscribeSent: "SUBSCRIBE_SENT",
		StateSubscribed:    "SUBSCRIBED",
		StateUnsubscribed:  "UNSUBSCRIBED",
		State(99):          "UNKNOWN",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestConcurrentBindUnbindAndDispatch(t *testing.T) {
	q := dispatch.NewQueue(nil)
	q.Start()
	defer q.Stop()

	ch, err := New("ticker", Config{Dispatcher: q})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var wg sync.WaitGroup

	// Application goroutines churning the registry.
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			listener := &fakeListener{}
			event := fmt.Sprintf("event-%d", g)
			for i := 0; i < 200; i++ {
				if err := ch.Bind(event, listener); err != nil {
					t.Errorf("Bind() error = %v", err)
					return
				}
				if err := ch.Unbind(event, listener); err != nil {
					t.Errorf("Unbind() error = %v", err)
					return
				}
			}
		}(g)
	}

	// Inbound goroutine delivering messages concurrently.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			raw := appEvent("event-1", "{}", fmt.Sprintf("%d", i))
			if err := ch.OnMessage("event-1", raw); err != nil {
				t.Errorf("OnMessage() error = %v", err)
				return
			}
		}
	}()

	wg.Wait()

	if ch.ResumeAfter() != "199" {
		t.Errorf("ResumeAfter() = %q, want %q", ch.ResumeAfter(), "199")
	}
}
