// Package sse streams per-user status updates over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

const (
	clientBuffer = 64
	publishQueue = 256
)

type message struct {
	userID uuid.UUID
	raw    []byte
}

type subscription struct {
	userID uuid.UUID
	ch     chan []byte
}

// Broker fans out events to the SSE connections of their owner.
//
// A single loop goroutine owns the subscriber table; public methods talk to
// it over channels.
type Broker struct {
	log       *slog.Logger
	keepAlive time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan subscription
	publishCh     chan message
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. keepAlive is the interval of comment frames that
// hold idle connections open through proxies; zero uses 25s.
func NewBroker(logger *slog.Logger, keepAlive time.Duration) *Broker {
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}

	b := &Broker{
		log:           logger.With("component", "sse"),
		keepAlive:     keepAlive,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan subscription),
		publishCh:     make(chan message, publishQueue),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[uuid.UUID]map[chan []byte]struct{})

	for {
		select {
		case <-b.stopCh:
			for _, set := range clients {
				for ch := range set {
					close(ch)
				}
			}
			return

		case sub := <-b.subscribeCh:
			set, ok := clients[sub.userID]
			if !ok {
				set = make(map[chan []byte]struct{})
				clients[sub.userID] = set
			}
			set[sub.ch] = struct{}{}

		case sub := <-b.unsubscribeCh:
			set := clients[sub.userID]
			if _, ok := set[sub.ch]; ok {
				delete(set, sub.ch)
				close(sub.ch)
				if len(set) == 0 {
					delete(clients, sub.userID)
				}
			}

		case msg := <-b.publishCh:
			for ch := range clients[msg.userID] {
				select {
				case ch <- msg.raw:
				default:
					// Slow client: drop rather than block the loop.
				}
			}

		case resp := <-b.countReqCh:
			n := 0
			for _, set := range clients {
				n += len(set)
			}
			resp <- n
		}
	}
}

// Close stops the loop and ends every open stream.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a stream for userID. The channel is closed on
// Unsubscribe or Close.
func (b *Broker) Subscribe(userID uuid.UUID) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{userID: userID, ch: ch}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a stream and closes its channel.
func (b *Broker) Unsubscribe(userID uuid.UUID, ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- subscription{userID: userID, ch: ch}:
	case <-b.stopped:
	}
}

// ClientCount returns the number of open streams across all users.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends event with a JSON payload to every stream of userID.
func (b *Broker) Publish(userID uuid.UUID, event string, payload any) {
	if b.closed.Load() {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.log.Error("encode sse payload", slog.String("event", event), slog.String("error", err.Error()))
		return
	}
	raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data))

	select {
	case b.publishCh <- message{userID: userID, raw: raw}:
	case <-b.stopped:
	}
}

// ServeHTTP streams the caller's events. Anonymous requests get 401.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	// Subscribed before the headers go out, so a client that has seen the
	// response cannot miss a later publish.
	ch := b.Subscribe(userID)
	defer b.Unsubscribe(userID, ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		b.log.WarnContext(r.Context(), "streaming unsupported", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			_ = rc.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}
