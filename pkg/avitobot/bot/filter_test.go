package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pkryuchkov/avitobot/pkg/avitobot/avito"
)

// testNow is a fixed eligibility reference instant.
var testNow = time.Unix(1_700_000_000, 0)

func newTestFilter(m *fakeMessenger) *Filter {
	f := NewFilter(m, FilterConfig{
		MaxSignalAge:  180 * time.Second,
		ReplyCooldown: 3 * time.Hour,
	}, testLogger())
	f.now = func() time.Time { return testNow }
	return f
}

// freshChat is updated 30s ago with a customer as last author.
func freshChat() avito.Chat {
	return avito.Chat{
		ID:      "c1",
		Updated: testNow.Unix() - 30,
		LastMessage: avito.LastMessage{
			AuthorID: 12345,
			Content:  avito.MessageContent{Text: "сколько стоит?"},
		},
	}
}

func incoming(age time.Duration) avito.Message {
	return avito.Message{
		Direction: avito.DirectionIn,
		Created:   testNow.Add(-age).Unix(),
		Content:   avito.MessageContent{Text: "сколько стоит?"},
	}
}

func outgoing(age time.Duration) avito.Message {
	return avito.Message{
		Direction: avito.DirectionOut,
		Created:   testNow.Add(-age).Unix(),
		Content:   avito.MessageContent{Text: "здравствуйте"},
	}
}

func TestFilterRejectsPlatformAuthor(t *testing.T) {
	messenger := &fakeMessenger{history: []avito.Message{incoming(30 * time.Second)}}
	filter := newTestFilter(messenger)

	chat := freshChat()
	chat.LastMessage.AuthorID = avito.PlatformAuthorID

	verdict := filter.Check(context.Background(), "tok", chat)
	if verdict.Eligible {
		t.Fatal("platform-authored chat must be ineligible")
	}
	if verdict.Reason != ReasonPlatformAuthor {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonPlatformAuthor)
	}
	if messenger.listMessagesCalls != 0 {
		t.Errorf("history fetched %d times, want 0", messenger.listMessagesCalls)
	}
}

func TestFilterRejectsStaleWithoutHistoryFetch(t *testing.T) {
	messenger := &fakeMessenger{history: []avito.Message{incoming(30 * time.Second)}}
	filter := newTestFilter(messenger)

	chat := freshChat()
	chat.Updated = testNow.Unix() - 200

	verdict := filter.Check(context.Background(), "tok", chat)
	if verdict.Eligible {
		t.Fatal("stale chat must be ineligible")
	}
	if verdict.Reason != ReasonStale {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonStale)
	}
	// The staleness check is cheap and must precede the history fetch.
	if messenger.listMessagesCalls != 0 {
		t.Errorf("history fetched %d times, want 0", messenger.listMessagesCalls)
	}
}

func TestFilterExactlyAtSignalAgeBoundary(t *testing.T) {
	messenger := &fakeMessenger{history: []avito.Message{incoming(3 * time.Minute)}}
	filter := newTestFilter(messenger)

	chat := freshChat()
	chat.Updated = testNow.Unix() - 180 // not older than the window

	verdict := filter.Check(context.Background(), "tok", chat)
	if !verdict.Eligible {
		t.Fatalf("180s-old chat must still be eligible, got %q", verdict.Reason)
	}
}

func TestFilterRejectsWhenHistoryFetchFails(t *testing.T) {
	messenger := &fakeMessenger{listMessagesErr: errors.New("boom")}
	filter := newTestFilter(messenger)

	verdict := filter.Check(context.Background(), "tok", freshChat())
	if verdict.Eligible {
		t.Fatal("chat with unfetchable history must be ineligible")
	}
	if verdict.Reason != ReasonHistoryUnavailable {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonHistoryUnavailable)
	}
}

func TestFilterRejectsEmptyHistory(t *testing.T) {
	messenger := &fakeMessenger{}
	filter := newTestFilter(messenger)

	verdict := filter.Check(context.Background(), "tok", freshChat())
	if verdict.Eligible {
		t.Fatal("chat with empty history must be ineligible")
	}
	if verdict.Reason != ReasonHistoryUnavailable {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonHistoryUnavailable)
	}
}

func TestFilterRejectsWhenBusinessSpokeLast(t *testing.T) {
	messenger := &fakeMessenger{history: []avito.Message{
		outgoing(10 * time.Second),
		incoming(1 * time.Minute),
	}}
	filter := newTestFilter(messenger)

	verdict := filter.Check(context.Background(), "tok", freshChat())
	if verdict.Eligible {
		t.Fatal("chat where the business spoke last must be ineligible")
	}
	if verdict.Reason != ReasonBusinessSpokeLast {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonBusinessSpokeLast)
	}
}

func TestFilterRejectsRecentOutgoing(t *testing.T) {
	// Newest is incoming, but the bot replied an hour ago — still cooling down.
	messenger := &fakeMessenger{history: []avito.Message{
		incoming(30 * time.Second),
		outgoing(1 * time.Hour),
		incoming(2 * time.Hour),
	}}
	filter := newTestFilter(messenger)

	verdict := filter.Check(context.Background(), "tok", freshChat())
	if verdict.Eligible {
		t.Fatal("chat inside the reply cooldown must be ineligible")
	}
	if verdict.Reason != ReasonRecentOutgoing {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonRecentOutgoing)
	}
}

func TestFilterAcceptsOldOutgoing(t *testing.T) {
	messenger := &fakeMessenger{history: []avito.Message{
		incoming(30 * time.Second),
		outgoing(4 * time.Hour),
	}}
	filter := newTestFilter(messenger)

	verdict := filter.Check(context.Background(), "tok", freshChat())
	if !verdict.Eligible {
		t.Fatalf("chat past the cooldown must be eligible, got %q", verdict.Reason)
	}
	if len(verdict.History) != 2 {
		t.Errorf("verdict history = %d messages, want 2", len(verdict.History))
	}
}

func TestFilterAcceptsNoOutgoingAtAll(t *testing.T) {
	messenger := &fakeMessenger{history: []avito.Message{
		incoming(30 * time.Second),
		incoming(5 * time.Minute),
	}}
	filter := newTestFilter(messenger)

	verdict := filter.Check(context.Background(), "tok", freshChat())
	if !verdict.Eligible {
		t.Fatalf("chat with no outgoing messages must be eligible, got %q", verdict.Reason)
	}
}

func TestFilterScanStopsAtFirstOutgoing(t *testing.T) {
	// The scan walks from the top and takes the first outgoing entry it
	// meets. Entries below it are ignored even with odd timestamps.
	messenger := &fakeMessenger{history: []avito.Message{
		incoming(30 * time.Second),
		outgoing(4 * time.Hour),
		outgoing(1 * time.Hour),
	}}
	filter := newTestFilter(messenger)

	verdict := filter.Check(context.Background(), "tok", freshChat())
	if !verdict.Eligible {
		t.Fatalf("only the most recent outgoing counts, got %q", verdict.Reason)
	}
}

func TestFilterIdempotentOnSameSnapshot(t *testing.T) {
	messenger := &fakeMessenger{history: []avito.Message{incoming(30 * time.Second)}}
	filter := newTestFilter(messenger)
	chat := freshChat()

	first := filter.Check(context.Background(), "tok", chat)
	second := filter.Check(context.Background(), "tok", chat)

	if first.Eligible != second.Eligible || first.Reason != second.Reason {
		t.Errorf("verdicts differ: %+v vs %+v", first, second)
	}
}
