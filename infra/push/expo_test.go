package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ngworks1909/pulse-backend/core/notify"
)

func ticketBody(statuses ...string) string {
	type ticket struct {
		Status  string `json:"status"`
		Details struct {
			Error string `json:"error,omitempty"`
		} `json:"details"`
	}
	var out struct {
		Data []ticket `json:"data"`
	}
	for _, s := range statuses {
		var tk ticket
		if s == "ok" {
			tk.Status = "ok"
		} else {
			tk.Status = "error"
			tk.Details.Error = s
		}
		out.Data = append(out.Data, tk)
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func TestSendBuildsOneMessagePerToken(t *testing.T) {
	var got []pushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(ticketBody("ok", "ok")))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL}, nil)
	msg := notify.Message{Title: "🚌 New Bus Available", Body: "HYD ➝ BLR", Data: map[string]string{"type": "bus_alert"}}
	receipts, err := c.Send(context.Background(), []string{"ExponentPushToken[a]", "ExponentPushToken[b]"}, msg)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages got %d", len(got))
	}
	if got[0].To != "ExponentPushToken[a]" || got[0].Title != msg.Title || got[0].ChannelID != "bus_alerts" || got[0].Priority != "high" {
		t.Fatalf("unexpected message %+v", got[0])
	}
	if len(receipts) != 2 || receipts[0].Outcome != notify.Delivered || receipts[1].Outcome != notify.Delivered {
		t.Fatalf("unexpected receipts %+v", receipts)
	}
}

func TestSendChunksBatches(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var msgs []pushMessage
		_ = json.NewDecoder(r.Body).Decode(&msgs)
		statuses := make([]string, len(msgs))
		for i := range statuses {
			statuses[i] = "ok"
		}
		_, _ = w.Write([]byte(ticketBody(statuses...)))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, ChunkSize: 2}, nil)
	tokens := []string{"ExponentPushToken[a]", "ExponentPushToken[b]", "ExponentPushToken[c]"}
	receipts, err := c.Send(context.Background(), tokens, notify.Message{Title: "t"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 chunked requests got %d", calls)
	}
	if len(receipts) != 3 {
		t.Fatalf("expected 3 receipts got %d", len(receipts))
	}
}

func TestSendMapsPermanentRejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ticketBody("ok", "DeviceNotRegistered")))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL}, nil)
	receipts, err := c.Send(context.Background(), []string{"ExponentPushToken[a]", "ExponentPushToken[b]"}, notify.Message{})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipts[0].Outcome != notify.Delivered {
		t.Errorf("unexpected receipt %+v", receipts[0])
	}
	if receipts[1].Outcome != notify.RejectedPermanent || receipts[1].Reason != "DeviceNotRegistered" {
		t.Errorf("unexpected receipt %+v", receipts[1])
	}
}

func TestSendTransportErrorYieldsTransientReceipts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL}, nil)
	receipts, err := c.Send(context.Background(), []string{"ExponentPushToken[a]"}, notify.Message{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if len(receipts) != 1 || receipts[0].Outcome != notify.RejectedTransient {
		t.Fatalf("unexpected receipts %+v", receipts)
	}
}

func TestSendPartialChunkFailureContinues(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(ticketBody("ok")))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, ChunkSize: 1}, nil)
	receipts, err := c.Send(context.Background(), []string{"ExponentPushToken[a]", "ExponentPushToken[b]"}, notify.Message{})
	if err == nil {
		t.Fatal("expected error from failed chunk")
	}
	if len(receipts) != 2 {
		t.Fatalf("expected receipts for both chunks, got %+v", receipts)
	}
	if receipts[0].Outcome != notify.RejectedTransient || receipts[1].Outcome != notify.Delivered {
		t.Fatalf("unexpected receipts %+v", receipts)
	}
}
