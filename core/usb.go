package core

import (
	"context"
	"sync"
	"time"
)

// USBStatus is a USB connection status event.
type USBStatus uint8

const (
	USBOther        USBStatus = 0 // Reset, error, resume and anything else
	USBConnected    USBStatus = 1 // VBUS present
	USBConfigured   USBStatus = 2 // Host selected a configuration
	USBDisconnected USBStatus = 3 // VBUS removed
	USBSuspended    USBStatus = 4 // Bus suspended by the host
)

func (s USBStatus) String() string {
	switch s {
	case USBConnected:
		return "connected"
	case USBConfigured:
		return "configured"
	case USBDisconnected:
		return "disconnected"
	case USBSuspended:
		return "suspended"
	default:
		return "other"
	}
}

// StatusSource delivers USB status events to subscribers.
// Subscriptions live as long as the source.
type StatusSource interface {
	Subscribe(handler func(USBStatus))
}

// StatusFeed is a StatusSource fed by Publish. Handlers run synchronously in
// the publisher's context, in subscription order.
type StatusFeed struct {
	mu       sync.RWMutex
	handlers []func(USBStatus)
}

// Subscribe registers handler for all future events.
func (f *StatusFeed) Subscribe(handler func(USBStatus)) {
	if handler == nil {
		return
	}
	f.mu.Lock()
	f.handlers = append(f.handlers, handler)
	f.mu.Unlock()
}

// Publish delivers status to every subscriber.
func (f *StatusFeed) Publish(status USBStatus) {
	f.mu.RLock()
	handlers := f.handlers
	f.mu.RUnlock()

	for _, h := range handlers {
		h(status)
	}
}

// VBUSProbe reports whether USB bus power is present.
type VBUSProbe func() (bool, error)

// StatusPoller turns a VBUS probe into a StatusSource. It publishes the first
// sample, then Connected or Disconnected on every edge.
type StatusPoller struct {
	StatusFeed

	probe    VBUSProbe
	interval time.Duration

	mu      sync.Mutex
	sampled bool
	present bool
}

// DefaultPollInterval is used when NewStatusPoller is given a non-positive interval.
const DefaultPollInterval = 50 * time.Millisecond

// NewStatusPoller creates a poller sampling probe every interval.
func NewStatusPoller(probe VBUSProbe, interval time.Duration) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatusPoller{probe: probe, interval: interval}
}

// Poll takes one sample and publishes it if it differs from the previous one.
func (p *StatusPoller) Poll() {
	present, err := p.probe()
	if err != nil {
		logWarn(ComponentTrigger, "vbus probe failed", "error", err)
		return
	}

	p.mu.Lock()
	changed := !p.sampled || present != p.present
	p.sampled = true
	p.present = present
	p.mu.Unlock()

	if !changed {
		return
	}
	if present {
		p.Publish(USBConnected)
	} else {
		p.Publish(USBDisconnected)
	}
}

// Run polls until ctx is done.
func (p *StatusPoller) Run(ctx context.Context) {
	p.Poll()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}
