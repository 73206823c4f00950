package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWantsEventStream(t *testing.T) {
	cases := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"application/json", false},
		{"text/event-stream", true},
		{"application/json, text/event-stream;q=0.9", true},
		{"Text/Event-Stream", true},
	}
	for _, tc := range cases {
		accept, want := tc.accept, tc.want
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		if got := WantsEventStream(req); got != want {
			t.Fatalf("Accept %q: got %v want %v", accept, got, want)
		}
	}
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)
	SendSSEEvent(rec, rec, "segment", map[string]string{"text": "hi"})

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	want := "event: segment\ndata: {\"text\":\"hi\"}\n\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
