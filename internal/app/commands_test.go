package app

import (
	"context"
	"testing"
	"time"

	"github.com/mkral/tempmail/internal/inbox"
	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
	"github.com/mkral/tempmail/tests/testutil"
)

func TestFetchMessageUntrackedAddressFailsSoft(t *testing.T) {
	engine := inbox.New(testutil.NewTestStore(t))
	m := Model{engine: engine, registry: provider.NewRegistry(nil)}

	res, ok := m.fetchMessage("ghost@test.invalid", "m1")().(messageFetchedMsg)
	if !ok {
		t.Fatal("command did not return a messageFetchedMsg")
	}
	if res.message.ID != "m1" || res.message.Subject != "Message unavailable" {
		t.Errorf("placeholder = %+v", res.message)
	}
	if res.message.Body == "" {
		t.Error("placeholder has no body explaining the failure")
	}
	if res.message.FetchedFullContent {
		t.Error("placeholder marked as full content")
	}
}

func TestFetchMessageUnknownProviderFailsSoft(t *testing.T) {
	engine := inbox.New(testutil.NewTestStore(t))
	err := engine.AddAddress(context.Background(), model.Address{
		Address:       "a@test.invalid",
		Provider:      "nonexistent",
		CreatedAt:     time.Now(),
		LastUpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	m := Model{engine: engine, registry: provider.NewRegistry(nil)}

	res := m.fetchMessage("a@test.invalid", "m1")().(messageFetchedMsg)
	if res.message.Subject != "Message unavailable" || res.message.Body == "" {
		t.Errorf("placeholder = %+v", res.message)
	}
}

func TestFetchMessageServesCachedFullContent(t *testing.T) {
	engine := inbox.New(testutil.NewTestStore(t))
	ctx := context.Background()
	if err := engine.AddAddress(ctx, model.Address{
		Address:       "a@test.invalid",
		Provider:      "nonexistent",
		CreatedAt:     time.Now(),
		LastUpdatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	full := model.Message{ID: "m1", Subject: "Hi", Body: "cached body"}
	if err := engine.MergeFetch(ctx, "a@test.invalid", "m1", full); err != nil {
		t.Fatal(err)
	}

	// The registry knows nothing, so a provider call would fail soft;
	// the cached record must be served before any provider lookup.
	m := Model{engine: engine, registry: provider.NewRegistry(nil)}

	res := m.fetchMessage("a@test.invalid", "m1")().(messageFetchedMsg)
	if res.message.Body != "cached body" || !res.message.FetchedFullContent {
		t.Errorf("cached message not served: %+v", res.message)
	}
}
