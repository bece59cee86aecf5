package provider

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/mkral/tempmail/internal/model"
)

type stubProvider struct {
	key string
}

func (s *stubProvider) Key() string  { return s.key }
func (s *stubProvider) Name() string { return s.key }
func (s *stubProvider) CreateAddress(context.Context, string) (Identity, error) {
	return Identity{Address: "a@" + s.key + ".test", Token: "t"}, nil
}
func (s *stubProvider) ListMessages(context.Context, string) ([]model.Message, error) {
	return nil, nil
}
func (s *stubProvider) FetchMessage(_ context.Context, _, id string) model.Message {
	return model.Message{ID: id}
}
func (s *stubProvider) Domains() []string      { return nil }
func (s *stubProvider) ExpirationSeconds() int { return 60 }

func newStubRegistry(keys ...string) *Registry {
	factories := make(map[string]Factory, len(keys))
	for _, key := range keys {
		key := key
		factories[key] = func() Provider { return &stubProvider{key: key} }
	}
	return NewRegistry(factories)
}

func TestRegistryUnknownProvider(t *testing.T) {
	r := newStubRegistry("alpha")

	_, err := r.Provider("nope")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !IsUnknownProvider(err) {
		t.Errorf("IsUnknownProvider(%v) = false, want true", err)
	}

	var unknown *UnknownProviderError
	if !errors.As(err, &unknown) || unknown.Key != "nope" {
		t.Errorf("error does not carry the requested key: %v", err)
	}
}

func TestRegistryKeysSorted(t *testing.T) {
	r := newStubRegistry("zeta", "alpha", "mid")

	want := []string{"alpha", "mid", "zeta"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestRegistryMemoizesInstances(t *testing.T) {
	r := newStubRegistry("alpha")

	first, err := r.Provider("alpha")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	second, err := r.Provider("alpha")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	if first != second {
		t.Error("Provider returned a fresh instance on the second call")
	}
}

func TestFailureMessage(t *testing.T) {
	msg := FailureMessage("42", fmt.Errorf("boom"))

	if msg.ID != "42" {
		t.Errorf("ID = %q, want 42", msg.ID)
	}
	if msg.FetchedFullContent {
		t.Error("placeholder must not be marked as full content")
	}
	if msg.From != model.UnknownSender {
		t.Errorf("From = %q, want %q", msg.From, model.UnknownSender)
	}
	if msg.Size != int64(len(msg.Body)) {
		t.Errorf("Size = %d, want body length %d", msg.Size, len(msg.Body))
	}
}

func TestIsUnavailable(t *testing.T) {
	err := &UnavailableError{Provider: "alpha", Op: "list messages", Err: fmt.Errorf("503")}

	if !IsUnavailable(err) {
		t.Error("IsUnavailable = false for UnavailableError")
	}
	if IsUnavailable(fmt.Errorf("plain")) {
		t.Error("IsUnavailable = true for a plain error")
	}

	wrapped := fmt.Errorf("refresh: %w", err)
	if !IsUnavailable(wrapped) {
		t.Error("IsUnavailable = false for a wrapped UnavailableError")
	}
}
