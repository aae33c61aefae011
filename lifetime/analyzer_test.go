package lifetime_test

import (
	"testing"

	"github.com/gogpu/rendergraph/lifetime"
)

func TestAnalyzeComputesDeathFromLastRead(t *testing.T) {
	a := lifetime.NewAnalyzer()
	out := a.Analyze([]lifetime.Declaration{
		{ID: 1, ProducedAt: 0, ReadAt: []int{2, 5}},
		{ID: 2, ProducedAt: 1, ReadAt: nil},
		{ID: 3, ProducedAt: 3, Persistent: true},
	})

	if out[1] != (lifetime.Interval{Birth: 0, Death: 6}) {
		t.Fatalf("want birth=0 death=6, got %+v", out[1])
	}
	if out[2] != (lifetime.Interval{Birth: 1, Death: 2}) {
		t.Fatalf("want unread resource to die one index after birth, got %+v", out[2])
	}
	if out[3].Death != lifetime.Infinite {
		t.Fatalf("want persistent resource to have infinite death, got %+v", out[3])
	}
}

func TestOverlapsDetectsSharedRange(t *testing.T) {
	a := lifetime.Interval{Birth: 0, Death: 4}
	b := lifetime.Interval{Birth: 3, Death: 6}
	c := lifetime.Interval{Birth: 4, Death: 6}

	if !a.Overlaps(b) {
		t.Fatal("expected a and b to overlap at index 3")
	}
	if a.Overlaps(c) {
		t.Fatal("expected a and c not to overlap (death is exclusive)")
	}
}
