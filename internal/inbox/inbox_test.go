package inbox

import (
	"context"
	"testing"
	"time"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/tests/testutil"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(testutil.NewTestStore(t))
}

func addTestAddress(t *testing.T, e *Engine, address, providerKey string) {
	t.Helper()
	now := time.Now()
	err := e.AddAddress(context.Background(), model.Address{
		Address:       address,
		Provider:      providerKey,
		CreatedAt:     now,
		LastUpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("adding address %s: %v", address, err)
	}
}

func summaries(ids ...string) []model.Message {
	msgs := make([]model.Message, len(ids))
	for i, id := range ids {
		msgs[i] = model.Message{
			ID:      id,
			Subject: "Subject " + id,
			From:    "sender@example.test",
		}
	}
	return msgs
}

func TestMergePollAddsNewMessages(t *testing.T) {
	e := newTestEngine(t)
	addTestAddress(t, e, "a@x.test", "guerrillamail")

	res, err := e.MergePoll(context.Background(), "a@x.test", summaries("1"))
	if err != nil {
		t.Fatalf("MergePoll: %v", err)
	}

	if !res.HasNew {
		t.Error("expected HasNew after first merge")
	}
	if res.Previous != 0 || res.Added != 1 {
		t.Errorf("got Previous=%d Added=%d, want 0 and 1", res.Previous, res.Added)
	}

	msgs := e.Messages("a@x.test")
	if len(msgs) != 1 || msgs[0].ID != "1" {
		t.Fatalf("cache = %+v, want exactly message 1", msgs)
	}
}

func TestMergePollIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	addTestAddress(t, e, "a@x.test", "guerrillamail")
	ctx := context.Background()

	s := summaries("1", "2", "3")
	if _, err := e.MergePoll(ctx, "a@x.test", s); err != nil {
		t.Fatalf("first MergePoll: %v", err)
	}
	res, err := e.MergePoll(ctx, "a@x.test", s)
	if err != nil {
		t.Fatalf("second MergePoll: %v", err)
	}

	if res.HasNew {
		t.Error("second merge of identical summaries reported new messages")
	}
	if got := e.MessageCount("a@x.test"); got != 3 {
		t.Errorf("message count = %d, want 3 (no duplicates)", got)
	}
}

func TestMergePollNewCount(t *testing.T) {
	e := newTestEngine(t)
	addTestAddress(t, e, "a@x.test", "mailgw")
	ctx := context.Background()

	if _, err := e.MergePoll(ctx, "a@x.test", summaries("1", "2")); err != nil {
		t.Fatalf("seed merge: %v", err)
	}

	res, err := e.MergePoll(ctx, "a@x.test", summaries("3", "4", "5"))
	if err != nil {
		t.Fatalf("MergePoll: %v", err)
	}

	if !res.HasNew {
		t.Error("expected HasNew with disjoint ids")
	}
	if res.Previous != 2 || res.Added != 3 {
		t.Errorf("got Previous=%d Added=%d, want 2 and 3", res.Previous, res.Added)
	}
	if got := e.MessageCount("a@x.test"); got != 5 {
		t.Errorf("post-merge count = %d, want 5", got)
	}
}

func TestMergePollPreservesFetchedContent(t *testing.T) {
	e := newTestEngine(t)
	addTestAddress(t, e, "a@x.test", "dropmail")
	ctx := context.Background()

	if _, err := e.MergePoll(ctx, "a@x.test", summaries("1")); err != nil {
		t.Fatalf("seed merge: %v", err)
	}

	full := model.Message{
		ID:      "1",
		Subject: "Subject 1",
		From:    "sender@example.test",
		Body:    "the full body",
		Size:    13,
	}
	if err := e.MergeFetch(ctx, "a@x.test", "1", full); err != nil {
		t.Fatalf("MergeFetch: %v", err)
	}

	// Re-poll with a bodyless summary for the same id.
	if _, err := e.MergePoll(ctx, "a@x.test", summaries("1", "2")); err != nil {
		t.Fatalf("re-poll: %v", err)
	}

	var got model.Message
	for _, m := range e.Messages("a@x.test") {
		if m.ID == "1" {
			got = m
		}
	}
	if got.Body != "the full body" {
		t.Errorf("body = %q, fetched content was overwritten by a summary", got.Body)
	}
	if !got.FetchedFullContent {
		t.Error("FetchedFullContent flag lost after re-poll")
	}
}

func TestMergeFetchInsertsUnknownID(t *testing.T) {
	e := newTestEngine(t)
	addTestAddress(t, e, "a@x.test", "tempmaillol")
	ctx := context.Background()

	full := model.Message{Subject: "Late arrival", Body: "body"}
	if err := e.MergeFetch(ctx, "a@x.test", "9", full); err != nil {
		t.Fatalf("MergeFetch: %v", err)
	}

	msgs := e.Messages("a@x.test")
	if len(msgs) != 1 {
		t.Fatalf("cache has %d messages, want 1", len(msgs))
	}
	if msgs[0].ID != "9" || !msgs[0].FetchedFullContent {
		t.Errorf("got %+v, want id 9 with FetchedFullContent", msgs[0])
	}
}

func TestMessagesReverseDiscoveryOrder(t *testing.T) {
	e := newTestEngine(t)
	addTestAddress(t, e, "a@x.test", "guerrillamail")
	ctx := context.Background()

	if _, err := e.MergePoll(ctx, "a@x.test", summaries("1", "2")); err != nil {
		t.Fatalf("first merge: %v", err)
	}
	if _, err := e.MergePoll(ctx, "a@x.test", summaries("3")); err != nil {
		t.Fatalf("second merge: %v", err)
	}

	msgs := e.Messages("a@x.test")
	want := []string{"3", "2", "1"}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Errorf("position %d: got id %s, want %s", i, msgs[i].ID, id)
		}
	}
}

func TestAddressOrderingNewMailFirst(t *testing.T) {
	e := newTestEngine(t)
	addTestAddress(t, e, "old@x.test", "guerrillamail")
	addTestAddress(t, e, "quiet@x.test", "mailtm")
	ctx := context.Background()

	e.StartCycle()
	if _, err := e.MergePoll(ctx, "old@x.test", summaries("1")); err != nil {
		t.Fatalf("MergePoll: %v", err)
	}

	addrs := e.Addresses()
	if len(addrs) != 2 {
		t.Fatalf("got %d addresses, want 2", len(addrs))
	}
	if addrs[0].Address != "old@x.test" {
		t.Errorf("address with new mail should sort first, got %s", addrs[0].Address)
	}

	// A new cycle clears the mark; ordering falls back to last update.
	e.StartCycle()
	addrs = e.Addresses()
	if addrs[0].Address != "old@x.test" {
		t.Errorf("most recently updated address should sort first, got %s", addrs[0].Address)
	}
	if e.HasNew("old@x.test") {
		t.Error("StartCycle did not clear the new-mail mark")
	}
}

func TestDeleteAddressPurgesMessages(t *testing.T) {
	st := testutil.NewTestStore(t)
	e := New(st)
	addTestAddress(t, e, "a@x.test", "dropmail")
	ctx := context.Background()

	if _, err := e.MergePoll(ctx, "a@x.test", summaries("1", "2")); err != nil {
		t.Fatalf("MergePoll: %v", err)
	}
	if err := e.DeleteAddress(ctx, "a@x.test"); err != nil {
		t.Fatalf("DeleteAddress: %v", err)
	}

	if _, ok := e.Address("a@x.test"); ok {
		t.Error("address still tracked after deletion")
	}
	if got := len(e.Messages("a@x.test")); got != 0 {
		t.Errorf("%d messages still cached after deletion", got)
	}

	// The cascade must also clear persisted rows.
	persisted, err := st.GetMessages(ctx, "a@x.test")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(persisted) != 0 {
		t.Errorf("%d messages still persisted after deletion", len(persisted))
	}
}

func TestLoadRestoresState(t *testing.T) {
	st := testutil.NewTestStore(t)
	e := New(st)
	addTestAddress(t, e, "a@x.test", "mailgw")
	ctx := context.Background()

	if _, err := e.MergePoll(ctx, "a@x.test", summaries("1", "2")); err != nil {
		t.Fatalf("MergePoll: %v", err)
	}

	restored := New(st)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, ok := restored.Address("a@x.test"); !ok {
		t.Fatal("address not restored")
	}
	msgs := restored.Messages("a@x.test")
	if len(msgs) != 2 {
		t.Fatalf("restored %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "2" || msgs[1].ID != "1" {
		t.Errorf("restored order wrong: %s, %s", msgs[0].ID, msgs[1].ID)
	}
}

func TestMergePollUnknownAddress(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.MergePoll(context.Background(), "ghost@x.test", summaries("1")); err == nil {
		t.Error("expected error for untracked address")
	}
}
