package dropmail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkral/tempmail/internal/provider"
)

// newGraphQLServer answers every POST with a body chosen by respond,
// which receives the query document and the URL path (the API token is
// the path suffix).
func newGraphQLServer(t *testing.T, respond func(query, path string) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Write([]byte(respond(req.Query, r.URL.Path)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateAddressPacksToken(t *testing.T) {
	var tokenPath string
	srv := newGraphQLServer(t, func(query, path string) string {
		tokenPath = path
		return `{"data":{"introduceSession":{
			"id":"sess42","expiresAt":"2024-01-01T00:10:00Z",
			"addresses":[{"address":"abc@dropmail.me"}]}}}`
	})
	a := NewWithBaseURL(srv.URL + "/")

	id, err := a.CreateAddress(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateAddress: %v", err)
	}
	if id.Address != "abc@dropmail.me" {
		t.Errorf("Address = %q", id.Address)
	}

	apiToken, sessionID, err := splitToken(id.Token)
	if err != nil {
		t.Fatalf("stored token %q not splittable: %v", id.Token, err)
	}
	if sessionID != "sess42" {
		t.Errorf("session id = %q, want sess42", sessionID)
	}
	if "/"+apiToken != tokenPath {
		t.Errorf("mutation was posted to %q, token part is %q", tokenPath, apiToken)
	}
}

func TestCreateAddressMissingSession(t *testing.T) {
	srv := newGraphQLServer(t, func(query, path string) string {
		return `{"data":{"introduceSession":{"id":"","addresses":[]}}}`
	})
	a := NewWithBaseURL(srv.URL + "/")

	_, err := a.CreateAddress(context.Background(), "")
	if !provider.IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestListMessagesMapping(t *testing.T) {
	srv := newGraphQLServer(t, func(query, path string) string {
		if !strings.Contains(query, "session(id: $id)") {
			t.Errorf("unexpected query: %s", query)
		}
		return `{"data":{"session":{"mails":[
			{"id":"a1","fromAddr":"x@y.test","headerSubject":"Hi","receivedAt":"2024-01-02T10:00:00Z"},
			{"id":"a2"}
		]}}}`
	})
	a := NewWithBaseURL(srv.URL + "/")

	msgs, err := a.ListMessages(context.Background(), "tok|sess42")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "a1" || msgs[0].Subject != "Hi" || msgs[0].From != "x@y.test" {
		t.Errorf("first = %+v", msgs[0])
	}
	if msgs[1].Subject != "No Subject" || msgs[1].From != "Unknown" {
		t.Errorf("missing fields not defaulted: %+v", msgs[1])
	}
}

func TestListMessagesExpiredSession(t *testing.T) {
	srv := newGraphQLServer(t, func(query, path string) string {
		return `{"data":{"session":null}}`
	})
	a := NewWithBaseURL(srv.URL + "/")

	msgs, err := a.ListMessages(context.Background(), "tok|sess42")
	if err != nil {
		t.Fatalf("expired session should not error, got %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want none", len(msgs))
	}
}

func TestListMessagesMalformedToken(t *testing.T) {
	a := NewWithBaseURL("http://unused.invalid/")
	for _, token := range []string{"", "noseparator", "|sess", "tok|"} {
		if _, err := a.ListMessages(context.Background(), token); !provider.IsUnavailable(err) {
			t.Errorf("token %q: err = %v, want unavailable", token, err)
		}
	}
}

func TestListMessagesGraphQLError(t *testing.T) {
	srv := newGraphQLServer(t, func(query, path string) string {
		return `{"errors":[{"message":"rate limited"}]}`
	})
	a := NewWithBaseURL(srv.URL + "/")

	_, err := a.ListMessages(context.Background(), "tok|sess42")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v, want the graphql error message surfaced", err)
	}
}

func TestFetchMessageMatchesByID(t *testing.T) {
	srv := newGraphQLServer(t, func(query, path string) string {
		return `{"data":{"session":{"mails":[
			{"id":"a1","fromAddr":"x@y.test","headerSubject":"Hi","text":"hello there","receivedAt":"2024-01-02T10:00:00Z"},
			{"id":"a2","text":"other"}
		]}}}`
	})
	a := NewWithBaseURL(srv.URL + "/")

	msg := a.FetchMessage(context.Background(), "tok|sess42", "a1")
	if msg.Body != "hello there" || !msg.FetchedFullContent {
		t.Errorf("msg = %+v", msg)
	}
	if msg.Size != int64(len("hello there")) {
		t.Errorf("Size = %d", msg.Size)
	}
}

func TestFetchMessageFailSoft(t *testing.T) {
	srv := newGraphQLServer(t, func(query, path string) string {
		return `{"data":{"session":{"mails":[{"id":"a1","text":"hello"}]}}}`
	})
	a := NewWithBaseURL(srv.URL + "/")

	msg := a.FetchMessage(context.Background(), "tok|sess42", "missing")
	if msg.ID != "missing" || msg.FetchedFullContent {
		t.Errorf("placeholder = %+v", msg)
	}
	if msg.Subject != "Message unavailable" {
		t.Errorf("Subject = %q", msg.Subject)
	}
}
