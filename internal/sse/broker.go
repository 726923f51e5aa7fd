// Package sse streams vault changes to HTTP clients as Server-Sent Events.
//
// Every change is numbered and the number is sent as the event id. The
// broker keeps the latest frames, so a client reconnecting with a
// Last-Event-ID header first receives the changes it missed.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/starford/nnote/internal/watch"
)

const (
	// clientBuffer is the number of frames queued per client. A client
	// that falls further behind misses frames.
	clientBuffer = 64
	// backlog is the number of frames kept for replay.
	backlog = clientBuffer
)

var heartbeatFrame = []byte(": heartbeat\n\n")

// NoteData is the payload of note.* events.
type NoteData struct {
	ID   string `json:"id"`
	Ext  string `json:"ext,omitempty"`
	Path string `json:"path"`
}

type frame struct {
	seq uint64
	raw []byte
}

type joinReq struct {
	out   chan []byte
	after uint64
}

// Broker fans vault changes out to subscribed clients. One goroutine owns
// the subscriber set and the replay backlog; methods reach it through
// channels and become no-ops once the broker is closed.
type Broker struct {
	heartbeat time.Duration

	join  chan joinReq
	leave chan chan []byte
	notes chan watch.Event
	count chan chan int

	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// NewBroker starts a broker that writes a comment frame to every client
// each heartbeat. A non-positive heartbeat means 30s.
func NewBroker(heartbeat time.Duration) *Broker {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	b := &Broker{
		heartbeat: heartbeat,
		join:      make(chan joinReq),
		leave:     make(chan chan []byte),
		notes:     make(chan watch.Event),
		count:     make(chan chan int),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go b.loop()
	return b
}

// deliver hands v to the broker loop, or reports false if it has stopped.
func deliver[T any](b *Broker, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-b.done:
		return false
	}
}

// offer queues raw for a client without waiting.
func offer(out chan []byte, raw []byte) {
	select {
	case out <- raw:
	default:
	}
}

func (b *Broker) loop() {
	defer close(b.done)

	subs := make(map[chan []byte]struct{})
	var (
		seq    uint64
		recent []frame
	)
	beat := time.NewTicker(b.heartbeat)
	defer beat.Stop()

	for {
		select {
		case <-b.quit:
			for out := range subs {
				close(out)
			}
			return

		case req := <-b.join:
			if req.after > 0 {
				for _, f := range recent {
					if f.seq > req.after {
						offer(req.out, f.raw)
					}
				}
			}
			subs[req.out] = struct{}{}

		case out := <-b.leave:
			if _, ok := subs[out]; ok {
				delete(subs, out)
				close(out)
			}

		case ev := <-b.notes:
			raw, err := encode(seq+1, ev)
			if err != nil {
				continue
			}
			seq++
			recent = append(recent, frame{seq: seq, raw: raw})
			if len(recent) > backlog {
				recent = recent[len(recent)-backlog:]
			}
			for out := range subs {
				offer(out, raw)
			}

		case <-beat.C:
			for out := range subs {
				offer(out, heartbeatFrame)
			}

		case reply := <-b.count:
			reply <- len(subs)
		}
	}
}

// encode renders a change as a note.created, note.updated or note.deleted
// frame. A sidecar change is an update of its note.
func encode(seq uint64, ev watch.Event) ([]byte, error) {
	kind := ev.Kind
	if ev.Ext == "" {
		kind = watch.KindUpdated
	}
	data, err := json.Marshal(NoteData{ID: ev.ID.String(), Ext: ev.Ext, Path: ev.Path})
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %d\nevent: note.%s\ndata: %s\n\n", seq, kind, data), nil
}

// Close stops the broker and closes every client channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	b.quitOnce.Do(func() { close(b.quit) })
	<-b.done
}

// Subscribe registers a client. When after is non-zero, the kept frames
// numbered above it are queued first. The channel is closed by
// Unsubscribe or Close.
func (b *Broker) Subscribe(after uint64) chan []byte {
	out := make(chan []byte, clientBuffer)
	if !deliver(b, b.join, joinReq{out: out, after: after}) {
		close(out)
	}
	return out
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(out chan []byte) {
	deliver(b, b.leave, out)
}

// ClientCount returns the number of subscribed clients.
func (b *Broker) ClientCount() int {
	reply := make(chan int, 1)
	if !deliver(b, b.count, reply) {
		return 0
	}
	return <-reply
}

// Publish broadcasts a vault change and returns once the broker has taken
// it, so later subscribers see it in their replay. It matches the watch
// callback signature.
func (b *Broker) Publish(ev watch.Event) {
	deliver(b, b.notes, ev)
}

// ServeHTTP streams events to one client until it disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return
	}

	last, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	out := b.Subscribe(last)
	defer b.Unsubscribe(out)

	for {
		select {
		case <-r.Context().Done():
			return
		case raw, ok := <-out:
			if !ok {
				return
			}
			if _, err := w.Write(raw); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
