package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-stomp/stomp/v3"
	"github.com/google/uuid"
)

// Session is one live subscription.
type Session interface {
	// Next blocks until a message body arrives or the session ends.
	Next() ([]byte, error)
	Close() error
}

// DialFunc opens a session subscribed to destination.
type DialFunc func(ctx context.Context, url, token, destination string, heartbeat time.Duration) (Session, error)

var errSessionClosed = errors.New("session closed")

// connectTimeout bounds the websocket handshake plus the STOMP CONNECT.
const connectTimeout = 10 * time.Second

// DialSTOMP connects to a STOMP-over-WebSocket endpoint, authenticates the
// CONNECT frame with the bearer token and subscribes to destination.
func DialSTOMP(ctx context.Context, url, token, destination string, heartbeat time.Duration) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	ws, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{"v12.stomp", "v11.stomp", "v10.stomp"},
	})
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	nc := websocket.NetConn(context.Background(), ws, websocket.MessageText)

	deadline, _ := ctx.Deadline()
	_ = nc.SetDeadline(deadline)

	opts := []func(*stomp.Conn) error{
		stomp.ConnOpt.AcceptVersion(stomp.V12),
		stomp.ConnOpt.Host("/"),
		stomp.ConnOpt.HeartBeat(heartbeat, heartbeat),
	}
	if token != "" {
		opts = append(opts, stomp.ConnOpt.Header("Authorization", "Bearer "+token))
	}
	conn, err := stomp.Connect(nc, opts...)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("stomp connect: %w", err)
	}
	_ = nc.SetDeadline(time.Time{})

	sub, err := conn.Subscribe(destination, stomp.AckAuto, stomp.SubscribeOpt.Id(uuid.NewString()))
	if err != nil {
		_ = conn.MustDisconnect()
		nc.Close()
		return nil, fmt.Errorf("stomp subscribe %s: %w", destination, err)
	}
	return &stompSession{conn: conn, sub: sub, ws: ws}, nil
}

type stompSession struct {
	conn *stomp.Conn
	sub  *stomp.Subscription
	ws   *websocket.Conn
	once sync.Once
}

func (s *stompSession) Next() ([]byte, error) {
	msg, ok := <-s.sub.C
	if !ok {
		return nil, errSessionClosed
	}
	if msg.Err != nil {
		return nil, msg.Err
	}
	return msg.Body, nil
}

func (s *stompSession) Close() error {
	var err error
	s.once.Do(func() {
		err = s.conn.MustDisconnect()
		s.ws.Close(websocket.StatusNormalClosure, "")
	})
	return err
}
