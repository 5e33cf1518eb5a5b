package companion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// extensionStub plays the editor extension: it accepts one desktop client at
// a time and lets the test push raw messages to it.
type extensionStub struct {
	t        *testing.T
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	received chan []byte
	clientID chan string
}

func newExtensionStub(t *testing.T) (*extensionStub, *httptest.Server) {
	stub := &extensionStub{
		t:        t,
		conns:    make(chan *websocket.Conn, 4),
		received: make(chan []byte, 4),
		clientID: make(chan string, 4),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := stub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		stub.clientID <- r.Header.Get("X-GitGotchi-Client")
		stub.conns <- conn
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			stub.received <- msg
		}
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting")
	}
	var zero T
	return zero
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    EventType
		wantErr bool
	}{
		{"typing with language", `{"type":"typing","data":{"language":"go"}}`, EventTyping, false},
		{"git push", `{"type":"git_push"}`, EventGitPush, false},
		{"error count", `{"type":"error","data":{"errorCount":3}}`, EventError, false},
		{"unknown type", `{"type":"dance"}`, "", true},
		{"missing type", `{}`, "", true},
		{"not json", `hello`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && ev.Type != tt.want {
				t.Errorf("Type = %q, want %q", ev.Type, tt.want)
			}
		})
	}

	ev, _ := ParseEvent([]byte(`{"type":"error","data":{"errorCount":0}}`))
	if ev.Data == nil || ev.Data.ErrorCount == nil || *ev.Data.ErrorCount != 0 {
		t.Error("explicit errorCount 0 was lost")
	}
}

func TestClientReceivesEvents(t *testing.T) {
	stub, srv := newExtensionStub(t)

	client := NewClient(wsURL(srv), 50*time.Millisecond)
	events := make(chan Event, 4)
	client.SetEventHandler(func(ev Event) { events <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		waitFor(t, done)
	}()

	if id := waitFor(t, stub.clientID); id != client.Status().ClientID {
		t.Errorf("client id header = %q, want %q", id, client.Status().ClientID)
	}
	conn := waitFor(t, stub.conns)

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"saving","data":{"filename":"main.go"}}`))

	ev := waitFor(t, events)
	if ev.Type != EventSaving || ev.Data == nil || ev.Data.Filename != "main.go" {
		t.Errorf("event = %+v, want saving main.go", ev)
	}
	if ev.ReceivedAt.IsZero() {
		t.Error("ReceivedAt not stamped")
	}

	st := client.Status()
	if !st.Connected {
		t.Error("Status().Connected = false while connected")
	}
	if st.LastEvent == nil || st.LastEvent.Type != EventSaving {
		t.Errorf("Status().LastEvent = %+v", st.LastEvent)
	}
}

func TestClientSend(t *testing.T) {
	stub, srv := newExtensionStub(t)

	client := NewClient(wsURL(srv), 50*time.Millisecond)
	if err := client.Send(map[string]string{"type": "hello"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() before connect error = %v, want ErrNotConnected", err)
	}

	statuses := make(chan Status, 4)
	client.SetStatusHandler(func(s Status) { statuses <- s })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	waitFor(t, stub.conns)
	if s := waitFor(t, statuses); !s.Connected {
		t.Fatalf("first status = %+v, want connected", s)
	}

	if err := client.Send(map[string]string{"type": "hello"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg := waitFor(t, stub.received); !strings.Contains(string(msg), `"hello"`) {
		t.Errorf("extension received %s", msg)
	}
}

func TestClientReconnects(t *testing.T) {
	stub, srv := newExtensionStub(t)

	client := NewClient(wsURL(srv), 20*time.Millisecond)
	statuses := make(chan Status, 8)
	client.SetStatusHandler(func(s Status) { statuses <- s })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	first := waitFor(t, stub.conns)
	if s := waitFor(t, statuses); !s.Connected {
		t.Fatalf("status = %+v, want connected", s)
	}

	first.Close()
	if s := waitFor(t, statuses); s.Connected {
		t.Fatalf("status = %+v, want disconnected", s)
	}

	waitFor(t, stub.conns)
	s := waitFor(t, statuses)
	if !s.Connected {
		t.Fatalf("status = %+v, want reconnected", s)
	}
	if s.Reconnects < 1 {
		t.Errorf("Reconnects = %d, want >= 1", s.Reconnects)
	}
}

func TestClientStopsOnCancelWhileDisconnected(t *testing.T) {
	client := NewClient("ws://127.0.0.1:1", 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	waitFor(t, done)

	st := client.Status()
	if st.Connected {
		t.Error("Connected = true with nothing listening")
	}
	if st.LastError == "" {
		t.Error("LastError not recorded for failed dial")
	}
}

func TestClientReconnectSkipsInterval(t *testing.T) {
	stub, srv := newExtensionStub(t)

	// an interval this long would time the test out if Reconnect waited for it
	client := NewClient(wsURL(srv), time.Hour)
	statuses := make(chan Status, 8)
	client.SetStatusHandler(func(s Status) { statuses <- s })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		waitFor(t, done)
	}()

	waitFor(t, stub.conns)
	if st := waitFor(t, statuses); !st.Connected {
		t.Fatalf("first status = %+v, want connected", st)
	}

	client.Reconnect()

	if st := waitFor(t, statuses); st.Connected {
		t.Fatalf("status after Reconnect = %+v, want disconnected", st)
	}
	waitFor(t, stub.conns)
	st := waitFor(t, statuses)
	if !st.Connected || st.Reconnects != 1 {
		t.Errorf("status = %+v, want connected after 1 reconnect", st)
	}
}
