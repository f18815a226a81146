package tiling

import (
	"sync"
	"testing"
)

func TestPartitionWidth(t *testing.T) {
	tests := []struct {
		name string
		area Rect
		n    int
	}{
		{name: "single", area: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, n: 1},
		{name: "even", area: Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}, n: 4},
		{name: "remainder", area: Rect{X: 10, Y: 20, Width: 1000, Height: 300}, n: 3},
		{name: "more windows than pixels", area: Rect{Width: 2, Height: 10}, n: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := PartitionWidth(tt.area, tt.n)
			if len(positions) != tt.n {
				t.Fatalf("expected %d positions, got %d", tt.n, len(positions))
			}
			want := tt.area.Width / tt.n
			for i, p := range positions {
				if p.Width != want {
					t.Fatalf("position %d: expected width %d, got %d", i, want, p.Width)
				}
				if p.X != tt.area.X+i*want {
					t.Fatalf("position %d: expected X %d, got %d", i, tt.area.X+i*want, p.X)
				}
				if p.Y != tt.area.Y || p.Height != tt.area.Height {
					t.Fatalf("position %d: expected full height, got %+v", i, p)
				}
			}
			last := positions[len(positions)-1]
			if last.X+last.Width > tt.area.X+tt.area.Width {
				t.Fatalf("partition exceeds area right edge")
			}
		})
	}

	if PartitionWidth(Rect{Width: 100}, 0) != nil {
		t.Fatalf("expected nil for zero windows")
	}
}

func TestSplitAreaCoversArea(t *testing.T) {
	area := Rect{X: 5, Y: 7, Width: 1001, Height: 777}

	h := SplitArea(area, Horizontal, 3)
	if h[0].Width != 333 || h[2].Width != 335 || h[2].X+h[2].Width != area.X+area.Width {
		t.Fatalf("unexpected horizontal split %+v", h)
	}

	v := SplitArea(area, Vertical, 2)
	if v[0].Height != 388 || v[1].Y != area.Y+388 || v[1].Height != 389 {
		t.Fatalf("unexpected vertical split %+v", v)
	}
}

func TestApplyPadding(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	got, err := ApplyPadding(area, Padding{Top: 30, Bottom: 10, Left: 5, Right: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := (Rect{X: 5, Y: 30, Width: 1910, Height: 1040}); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if _, err := ApplyPadding(Rect{Width: 10, Height: 10}, Padding{Left: 6, Right: 6}); err == nil {
		t.Fatalf("expected error when padding leaves no space")
	}
}

func TestNameCounterReusesSmallest(t *testing.T) {
	c := NewNameCounter()
	if got := c.Next(); got != "1" {
		t.Fatalf("expected 1, got %s", got)
	}
	c.Reserve("3")
	c.Reserve("web")
	if got := c.Next(); got != "2" {
		t.Fatalf("expected 2, got %s", got)
	}
	if got := c.Next(); got != "4" {
		t.Fatalf("expected 4, got %s", got)
	}
	c.Release("2")
	if got := c.Next(); got != "2" {
		t.Fatalf("expected released 2 to be reused, got %s", got)
	}
}

func TestNameCounterIgnoresNonCanonicalNumbers(t *testing.T) {
	c := NewNameCounter()
	c.Reserve("1")
	c.Reserve("01")
	c.Release("01")
	if got := c.Next(); got != "2" {
		t.Fatalf("releasing 01 freed the slot of 1: got %s", got)
	}
	c.Reserve("+3")
	if got := c.Next(); got != "3" {
		t.Fatalf("expected +3 not to reserve 3, got %s", got)
	}
	if !LessName("9", "01") {
		t.Fatalf("expected 01 to order as a plain name")
	}
}

func TestLessName(t *testing.T) {
	if !LessName("2", "10") {
		t.Fatalf("expected numeric ordering")
	}
	if !LessName("9", "mail") || LessName("mail", "9") {
		t.Fatalf("expected numeric names before named ones")
	}
	if !LessName("chat", "mail") {
		t.Fatalf("expected lexical ordering for names")
	}
}

func TestRegistryConvergesOnOneInstance(t *testing.T) {
	r := NewRegistry()
	const workers = 16
	results := make([]*Window, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Get(77)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("expected one canonical window instance")
		}
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 registered window, got %d", r.Len())
	}
	r.Forget(77)
	if _, ok := r.Lookup(77); ok {
		t.Fatalf("expected window forgotten")
	}
}
