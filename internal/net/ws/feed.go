package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"salvo/server/internal/net/proto"
	"salvo/server/internal/sim"
	"salvo/server/internal/telemetry"
	"salvo/server/logging"
	loggingnetwork "salvo/server/logging/network"
)

const (
	writeWait        = 10 * time.Second
	defaultQueueSize = 16
)

// subscriberConn is the subset of *websocket.Conn the feed writes through.
type subscriberConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(deadline time.Time) error
	Close() error
}

type outbound struct {
	kind int
	data []byte
}

// Subscriber is one feed connection. Writes go through a bounded queue
// drained by a dedicated goroutine so a slow client never stalls the tick.
type Subscriber struct {
	id      uint64
	remote  string
	conn    subscriberConn
	out     chan outbound
	done    chan struct{}
	once    sync.Once
	frames  atomic.Uint64
	dropped atomic.Uint64
}

func (s *Subscriber) Remote() string { return s.remote }

// Frames reports how many messages were written to the socket.
func (s *Subscriber) Frames() uint64 { return s.frames.Load() }

// Dropped reports how many messages were discarded on a full queue.
func (s *Subscriber) Dropped() uint64 { return s.dropped.Load() }

// Send queues a message without blocking. It returns false when the queue is
// full or the subscriber is gone.
func (s *Subscriber) Send(kind int, data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.out <- outbound{kind: kind, data: data}:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

type FeedConfig struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	QueueSize int
	Clock     logging.Clock
}

// Feed streams msgpack snapshot frames to every connected subscriber.
type Feed struct {
	cfg    FeedConfig
	mu     sync.Mutex
	subs   map[uint64]*Subscriber
	nextID uint64
	tick   atomic.Uint64
}

func NewFeed(cfg FeedConfig) *Feed {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NopMetrics()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.SystemClock{}
	}
	return &Feed{cfg: cfg, subs: make(map[uint64]*Subscriber)}
}

// Add registers conn and starts its writer.
func (f *Feed) Add(remote string, conn subscriberConn) *Subscriber {
	f.mu.Lock()
	f.nextID++
	sub := &Subscriber{
		id:     f.nextID,
		remote: remote,
		conn:   conn,
		out:    make(chan outbound, f.cfg.QueueSize),
		done:   make(chan struct{}),
	}
	f.subs[sub.id] = sub
	count := len(f.subs)
	f.mu.Unlock()

	f.cfg.Metrics.Store(telemetry.MetricFeedSubscribed, uint64(count))
	loggingnetwork.SubscriberConnected(context.Background(), f.cfg.Publisher, f.tick.Load(), loggingnetwork.SubscriberPayload{Remote: remote}, nil)
	go f.writeLoop(sub)
	return sub
}

func (f *Feed) writeLoop(sub *Subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case msg := <-sub.out:
			sub.conn.SetWriteDeadline(f.cfg.Clock.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(msg.kind, msg.data); err != nil {
				f.cfg.Logger.Printf("[feed] write to %s failed: %v", sub.remote, err)
				f.Remove(sub, "write failed")
				return
			}
			sub.frames.Add(1)
		}
	}
}

// Remove closes the subscriber. Repeated calls are no-ops.
func (f *Feed) Remove(sub *Subscriber, reason string) {
	if sub == nil {
		return
	}
	sub.once.Do(func() {
		f.mu.Lock()
		delete(f.subs, sub.id)
		count := len(f.subs)
		f.mu.Unlock()

		close(sub.done)
		sub.conn.Close()
		f.cfg.Metrics.Store(telemetry.MetricFeedSubscribed, uint64(count))
		loggingnetwork.SubscriberDisconnected(context.Background(), f.cfg.Publisher, f.tick.Load(), loggingnetwork.SubscriberPayload{
			Remote: sub.remote,
			Reason: reason,
			Frames: sub.frames.Load(),
		}, nil)
	})
}

// Broadcast encodes snapshot once and queues it for every subscriber. A
// subscriber whose queue is full skips this frame.
func (f *Feed) Broadcast(snapshot sim.Snapshot) error {
	f.tick.Store(snapshot.Tick)
	subs := f.snapshotSubscribers()
	if len(subs) == 0 {
		return nil
	}
	data, err := proto.EncodeSnapshotFrame(f.cfg.Clock.Now().UnixMilli(), snapshot)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		sub.Send(websocket.BinaryMessage, data)
	}
	return nil
}

// SendSnapshot queues a single frame for one subscriber.
func (f *Feed) SendSnapshot(sub *Subscriber, snapshot sim.Snapshot) error {
	data, err := proto.EncodeSnapshotFrame(f.cfg.Clock.Now().UnixMilli(), snapshot)
	if err != nil {
		return err
	}
	sub.Send(websocket.BinaryMessage, data)
	return nil
}

func (f *Feed) snapshotSubscribers() []*Subscriber {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := make([]*Subscriber, 0, len(f.subs))
	for _, sub := range f.subs {
		subs = append(subs, sub)
	}
	return subs
}

// Count reports the connected subscribers.
func (f *Feed) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close disconnects every subscriber.
func (f *Feed) Close() {
	for _, sub := range f.snapshotSubscribers() {
		f.Remove(sub, "shutdown")
	}
}
