package client

import (
	"context"
	"log"
	"sync"
	"time"
)

const DefaultPollInterval = 30 * time.Second

// Snapshot is one poll of the inbox. Badge counts unread notifications
// plus pending invitations.
type Snapshot struct {
	Notifications []Notification
	Invitations   []Invitation
	Unread        int
	Badge         int
	FetchedAt     time.Time
}

// Poller keeps a Snapshot current. It never patches the snapshot locally:
// after acting on an invitation callers ask for a Refresh.
type Poller struct {
	client   *Client
	interval time.Duration

	mu       sync.RWMutex
	snapshot Snapshot
	updates  chan Snapshot
}

func NewPoller(c *Client, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:   c,
		interval: interval,
		updates:  make(chan Snapshot, 1),
	}
}

// Updates delivers the latest snapshot. A slow reader only sees the most
// recent one.
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Refresh polls immediately and publishes the result.
func (p *Poller) Refresh(ctx context.Context) (Snapshot, error) {
	notifications, err := p.client.Notifications(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	unread, err := p.client.UnreadCount(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	invitations, err := p.client.PendingInvitations(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Notifications: notifications,
		Invitations:   invitations,
		Unread:        unread,
		Badge:         unread + len(invitations),
		FetchedAt:     time.Now(),
	}
	p.mu.Lock()
	p.snapshot = snap
	p.mu.Unlock()
	p.publish(snap)
	return snap, nil
}

func (p *Poller) publish(snap Snapshot) {
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- snap:
	default:
	}
}

// Run polls until ctx is cancelled. Failed polls are logged and retried on
// the next tick.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		if _, err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
			log.Printf("poll inbox: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
