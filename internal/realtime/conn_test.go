package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSession struct {
	msgs      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{msgs: make(chan []byte, 4), closed: make(chan struct{})}
}

func (s *fakeSession) Next() ([]byte, error) {
	select {
	case m, ok := <-s.msgs:
		if !ok {
			return nil, errors.New("dropped")
		}
		return m, nil
	case <-s.closed:
		return nil, errSessionClosed
	}
}

func (s *fakeSession) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

type fakeDialer struct {
	mu       sync.Mutex
	sessions chan *fakeSession
	tokens   []string
	fail     error
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{sessions: make(chan *fakeSession, 4)}
}

func (d *fakeDialer) dial(ctx context.Context, url, token, dest string, hb time.Duration) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return nil, d.fail
	}
	d.tokens = append(d.tokens, token)
	s := newFakeSession()
	d.sessions <- s
	return s, nil
}

func (d *fakeDialer) next(t *testing.T) *fakeSession {
	t.Helper()
	select {
	case s := <-d.sessions:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no session dialed")
		return nil
	}
}

func recvEvent(t *testing.T, c *Conn) Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		if !ok {
			t.Fatal("events closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func testOptions(d *fakeDialer) Options {
	return Options{
		URL:            "ws://test/ws",
		ReconnectDelay: 10 * time.Millisecond,
		Dial:           d.dial,
		Token:          func(context.Context) (string, error) { return "tok", nil },
	}
}

func TestDial_DeliversEvents(t *testing.T) {
	d := newFakeDialer()
	c, err := Dial(context.Background(), testOptions(d))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	s := d.next(t)
	if !c.Connected() {
		t.Error("expected connected")
	}
	s.msgs <- []byte(`not json`)
	s.msgs <- []byte(`{"action":"update","task":{"id":7,"title":"Water plants","status":"COMPLETED","dueDate":"2025-03-05T09:00:00"}}`)

	ev := recvEvent(t, c)
	if ev.Action != ActionUpdate || ev.Task.ID != "7" || !ev.Task.Completed() || ev.Task.DueDate != "2025-03-05T09:00:00" {
		t.Errorf("event = %+v", ev)
	}
	if d.tokens[0] != "tok" {
		t.Errorf("token = %q", d.tokens[0])
	}
}

func TestDial_Reconnects(t *testing.T) {
	d := newFakeDialer()
	c, err := Dial(context.Background(), testOptions(d))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	first := d.next(t)
	close(first.msgs)

	second := d.next(t)
	second.msgs <- []byte(`{"action":"delete","task":{"id":3}}`)
	if ev := recvEvent(t, c); ev.Action != ActionDelete || ev.Task.ID != "3" {
		t.Errorf("event = %+v", ev)
	}
}

func TestDial_InitialFailure(t *testing.T) {
	d := newFakeDialer()
	d.fail = errors.New("refused")
	if _, err := Dial(context.Background(), testOptions(d)); err == nil {
		t.Fatal("expected error")
	}

	opts := testOptions(newFakeDialer())
	opts.URL = ""
	if _, err := Dial(context.Background(), opts); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestDial_TokenError(t *testing.T) {
	opts := testOptions(newFakeDialer())
	opts.Token = func(context.Context) (string, error) { return "", errors.New("no session") }
	if _, err := Dial(context.Background(), opts); err == nil {
		t.Fatal("expected error")
	}
}

func TestClose_EndsEvents(t *testing.T) {
	d := newFakeDialer()
	c, err := Dial(context.Background(), testOptions(d))
	if err != nil {
		t.Fatal(err)
	}
	s := d.next(t)

	c.Close()
	c.Close()

	select {
	case <-s.closed:
	default:
		t.Error("session not closed")
	}
	if _, ok := <-c.Events(); ok {
		t.Error("events channel still open")
	}
	if c.Connected() {
		t.Error("still connected after close")
	}
}

func TestContextCancelEndsConn(t *testing.T) {
	d := newFakeDialer()
	ctx, cancel := context.WithCancel(context.Background())
	c, err := Dial(ctx, testOptions(d))
	if err != nil {
		t.Fatal(err)
	}
	d.next(t)

	cancel()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("conn did not stop")
	}
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"action":"create","task":{"id":12,"title":"New","priority":"HIGH","taskListId":4,"taskListName":"Work"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Task.ID != "12" || ev.Task.TaskListID == nil || *ev.Task.TaskListID != 4 || ev.Task.TaskListName != "Work" {
		t.Errorf("event = %+v", ev)
	}
	if _, err := DecodeEvent([]byte(`{"task":{}}`)); err == nil {
		t.Error("expected error for missing action")
	}
}
