package guerrilla

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
)

func TestCreateAddressSalted(t *testing.T) {
	var sawSalt bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("f") != "get_email_address" {
			t.Errorf("unexpected function %q", r.URL.Query().Get("f"))
		}
		sawSalt = r.URL.Query().Get("t") != ""
		w.Write([]byte(`{"email_addr":"abc@grr.la","sid_token":"sid123"}`))
	}))
	defer srv.Close()

	a := NewWithBaseURL(srv.URL)
	id, err := a.CreateAddress(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateAddress: %v", err)
	}
	if id.Address != "abc@grr.la" || id.Token != "sid123" {
		t.Errorf("got %+v", id)
	}
	if !sawSalt {
		t.Error("first attempt did not carry the salt parameter")
	}
}

func TestCreateAddressSaltFallback(t *testing.T) {
	// Salted requests get an empty payload; the salt-less retry succeeds.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != "" {
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`{"email_addr":"fb@sharklasers.com","sid_token":"sid456"}`))
	}))
	defer srv.Close()

	a := NewWithBaseURL(srv.URL)
	id, err := a.CreateAddress(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateAddress: %v", err)
	}
	if id.Address != "fb@sharklasers.com" {
		t.Errorf("Address = %q, fallback did not run", id.Address)
	}
}

func TestCreateAddressBothAttemptsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := NewWithBaseURL(srv.URL)
	_, err := a.CreateAddress(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty responses")
	}
	if !provider.IsUnavailable(err) {
		t.Errorf("IsUnavailable(%v) = false", err)
	}
}

func TestListMessagesMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sid_token") != "sid123" {
			t.Errorf("token not forwarded: %q", r.URL.Query().Get("sid_token"))
		}
		w.Write([]byte(`{"list":[
			{"mail_id":101,"mail_from":"a@b.test","mail_subject":"Hello","mail_timestamp":1700000000},
			{"mail_id":"102","mail_date":"2023-11-14 22:13:20"}
		]}`))
	}))
	defer srv.Close()

	a := NewWithBaseURL(srv.URL)
	msgs, err := a.ListMessages(context.Background(), "sid123")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	first := msgs[0]
	if first.ID != "101" || first.Subject != "Hello" || first.From != "a@b.test" {
		t.Errorf("first message = %+v", first)
	}
	if first.Date != "1700000000" {
		t.Errorf("Date = %q, want unix timestamp string", first.Date)
	}
	if first.FetchedFullContent {
		t.Error("summary must not claim full content")
	}

	second := msgs[1]
	if second.ID != "102" {
		t.Errorf("numeric-vs-string mail_id not normalized: %q", second.ID)
	}
	if second.Subject != model.NoSubject || second.From != model.UnknownSender {
		t.Errorf("missing fields not defaulted: %+v", second)
	}
	if second.Date != "2023-11-14 22:13:20" {
		t.Errorf("Date = %q, want the preformatted fallback", second.Date)
	}
}

func TestFetchMessageComputesSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mail_id":101,"mail_subject":"Hi","mail_from":"a@b.test","mail_body":"hello body"}`))
	}))
	defer srv.Close()

	a := NewWithBaseURL(srv.URL)
	msg := a.FetchMessage(context.Background(), "sid123", "101")

	if !msg.FetchedFullContent {
		t.Error("fetched message not marked full content")
	}
	if msg.Body != "hello body" {
		t.Errorf("Body = %q", msg.Body)
	}
	if msg.Size != int64(len("hello body")) {
		t.Errorf("Size = %d, want body length when the service omits mail_size", msg.Size)
	}
}

func TestFetchMessageFailSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewWithBaseURL(srv.URL)
	msg := a.FetchMessage(context.Background(), "sid123", "7")

	if msg.ID != "7" {
		t.Errorf("ID = %q, want the requested id", msg.ID)
	}
	if msg.FetchedFullContent {
		t.Error("placeholder must not be marked full content")
	}
	if msg.Subject != "Message unavailable" {
		t.Errorf("Subject = %q", msg.Subject)
	}
}
