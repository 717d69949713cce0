package client

import (
	"context"
	"testing"
	"time"
)

func TestCarouselWraps(t *testing.T) {
	c := NewCarousel([]Banner{{ImageURL: "a"}, {ImageURL: "b"}, {ImageURL: "c"}})

	steps := []struct {
		name string
		move func() int
		want int
	}{
		{"prev from first wraps to last", c.Prev, 2},
		{"next from last wraps to first", c.Next, 0},
		{"next", c.Next, 1},
		{"prev", c.Prev, 0},
	}
	for _, step := range steps {
		if got := step.move(); got != step.want {
			t.Fatalf("%s: index = %d, want %d", step.name, got, step.want)
		}
	}

	if err := c.Go(2); err != nil {
		t.Fatalf("go: %v", err)
	}
	if banner, _ := c.Current(); banner.ImageURL != "c" {
		t.Fatalf("current = %v", banner)
	}
	if err := c.Go(3); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestEmptyCarousel(t *testing.T) {
	c := NewCarousel(nil)
	if _, ok := c.Current(); ok {
		t.Fatalf("empty carousel has no current banner")
	}
	if c.Next() != 0 || c.Prev() != 0 {
		t.Fatalf("empty carousel should stay at 0")
	}
}

func TestCarouselRunAdvances(t *testing.T) {
	c := NewCarousel([]Banner{{ImageURL: "a"}, {ImageURL: "b"}})
	ctx, cancel := context.WithCancel(context.Background())
	seen := make(chan int, 4)
	done := make(chan struct{})
	go func() {
		c.Run(ctx, 10*time.Millisecond, func(i int) {
			select {
			case seen <- i:
			default:
			}
		})
		close(done)
	}()

	select {
	case i := <-seen:
		if i != 1 {
			t.Fatalf("first advance = %d", i)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("carousel did not advance")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
