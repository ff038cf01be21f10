package notify_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"podscribe/internal/logging"
	"podscribe/internal/notify"
)

func TestPublisherPostsEventJSON(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pub := notify.NewPublisher(server.URL, logging.NewNop())
	pub.Publish("ep-42", notify.TranscriptionText("a line"))

	if gotPath != "/events/ep-42" {
		t.Errorf("path = %q", gotPath)
	}
	var decoded notify.Event
	if err := json.Unmarshal([]byte(gotBody), &decoded); err != nil {
		t.Fatalf("decode posted body %q: %v", gotBody, err)
	}
	if decoded.Type != notify.TypeTranscriptionText || decoded.Text != "a line" {
		t.Errorf("posted event = %+v", decoded)
	}
}

func TestPublisherSwallowsDeliveryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	pub := notify.NewPublisher(server.URL, logging.NewNop())
	// Must not panic or propagate.
	pub.Publish("ep-42", notify.ErrorEvent("boom"))
}
