package client

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const DefaultRotation = 5 * time.Second

// Carousel tracks the visible banner. Next and Prev wrap around at both
// ends.
type Carousel struct {
	mu      sync.Mutex
	banners []Banner
	index   int
}

func NewCarousel(banners []Banner) *Carousel {
	return &Carousel{banners: append([]Banner(nil), banners...)}
}

func (c *Carousel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.banners)
}

func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Carousel) Current() (Banner, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.banners) == 0 {
		return Banner{}, false
	}
	return c.banners[c.index], true
}

func (c *Carousel) Next() int {
	return c.step(1)
}

func (c *Carousel) Prev() int {
	return c.step(-1)
}

func (c *Carousel) step(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.banners)
	if n == 0 {
		return 0
	}
	c.index = ((c.index+delta)%n + n) % n
	return c.index
}

// Go jumps to banner i.
func (c *Carousel) Go(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.banners) {
		return fmt.Errorf("banner %d out of range [0,%d)", i, len(c.banners))
	}
	c.index = i
	return nil
}

// Run advances every interval until ctx is cancelled. onChange, when set,
// receives each new index.
func (c *Carousel) Run(ctx context.Context, interval time.Duration, onChange func(int)) {
	if interval <= 0 {
		interval = DefaultRotation
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Len() < 2 {
				continue
			}
			index := c.Next()
			if onChange != nil {
				onChange(index)
			}
		}
	}
}
