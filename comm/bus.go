package comm

import (
	"sort"
	"sync"
	"time"

	"github.com/sarchlab/keithnet/hooking"
)

// TopicStats counts what happened to the messages published on one topic.
type TopicStats struct {
	Published uint64 `json:"published"`
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
}

// Bus connects ports without latency. A message sent on a topic is delivered,
// on the sender's goroutine, to every port subscribed to that topic except
// the sender itself. Delivered messages are shared and must be treated as
// read-only by the receivers.
type Bus struct {
	hooking.HookableBase

	lock        sync.RWMutex
	name        string
	now         func() time.Time
	ports       map[RemotePort]Port
	subscribers map[string][]Port
	stats       map[string]*TopicStats
}

// Name returns the name of the bus.
func (b *Bus) Name() string {
	return b.name
}

// PlugIn marks the port connects to this Bus.
func (b *Bus) PlugIn(port Port) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if _, found := b.ports[port.AsRemote()]; found {
		panic("port " + port.Name() + " already plugged in")
	}

	b.ports[port.AsRemote()] = port
	port.SetConnection(b)
}

// Unplug disconnects the port and removes all of its subscriptions.
func (b *Bus) Unplug(port Port) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if _, found := b.ports[port.AsRemote()]; !found {
		return
	}

	delete(b.ports, port.AsRemote())

	for topic := range b.subscribers {
		b.removeSubscriber(topic, port)
	}

	port.SetConnection(nil)
}

// Subscribe makes the port receive every message published on the topic.
func (b *Bus) Subscribe(topic string, port Port) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.portMustBeConnected(port.AsRemote())

	for _, p := range b.subscribers[topic] {
		if p == port {
			return
		}
	}

	b.subscribers[topic] = append(b.subscribers[topic], port)
}

// Unsubscribe stops delivering the topic to the port.
func (b *Bus) Unsubscribe(topic string, port Port) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.removeSubscriber(topic, port)
}

func (b *Bus) removeSubscriber(topic string, port Port) {
	subs := b.subscribers[topic]
	for i, p := range subs {
		if p == port {
			b.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}

	if len(b.subscribers[topic]) == 0 {
		delete(b.subscribers, topic)
	}
}

// Send delivers the message to the subscribers of its topic. It returns a
// SendError if at least one subscriber refused the message. Messages evicted
// from a drop-oldest subscriber are counted as dropped without an error.
func (b *Bus) Send(msg Msg) *SendError {
	meta := msg.Meta()
	meta.SendTime = b.now()

	b.lock.Lock()
	b.portMustBeConnected(meta.Src)
	subs := append([]Port(nil), b.subscribers[meta.Topic]...)
	stats := b.topicStats(meta.Topic)
	stats.Published++
	b.lock.Unlock()

	var sendErr *SendError
	delivered, dropped := uint64(0), uint64(0)

	for _, port := range subs {
		if port.AsRemote() == meta.Src {
			continue
		}

		hookCtx := hooking.HookCtx{
			Domain: b,
			Pos:    HookPosConnDeliver,
			Item:   msg,
			Detail: port,
		}

		evicted, err := port.Deliver(msg)
		if err != nil {
			sendErr = err
			dropped++
			hookCtx.Pos = HookPosConnDrop
		} else {
			delivered++
		}

		b.InvokeHook(hookCtx)

		if evicted != nil {
			dropped++
			b.InvokeHook(hooking.HookCtx{
				Domain: b,
				Pos:    HookPosConnDrop,
				Item:   evicted,
				Detail: port,
			})
		}
	}

	b.lock.Lock()
	stats.Delivered += delivered
	stats.Dropped += dropped
	b.lock.Unlock()

	return sendErr
}

// Stats returns a copy of the counters of the topic.
func (b *Bus) Stats(topic string) TopicStats {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if s, found := b.stats[topic]; found {
		return *s
	}

	return TopicStats{}
}

// Topics returns the sorted list of topics that have seen traffic or have
// subscribers.
func (b *Bus) Topics() []string {
	b.lock.RLock()
	defer b.lock.RUnlock()

	seen := make(map[string]bool)
	for t := range b.stats {
		seen[t] = true
	}

	for t := range b.subscribers {
		seen[t] = true
	}

	topics := make([]string, 0, len(seen))
	for t := range seen {
		topics = append(topics, t)
	}

	sort.Strings(topics)

	return topics
}

func (b *Bus) topicStats(topic string) *TopicStats {
	s, found := b.stats[topic]
	if !found {
		s = &TopicStats{}
		b.stats[topic] = s
	}

	return s
}

func (b *Bus) portMustBeConnected(port RemotePort) {
	if _, connected := b.ports[port]; !connected {
		panic("port " + string(port) + " is not connected")
	}
}
