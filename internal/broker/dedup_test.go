package broker

import (
	"fmt"
	"sync"
	"testing"
)

func TestDedupSeen(t *testing.T) {
	d := NewDedupSet(10)
	if d.Seen("t1_1.2.3.1.1") {
		t.Fatal("fresh key reported as seen")
	}
	if !d.Seen("t1_1.2.3.1.1") {
		t.Fatal("repeated key not reported as seen")
	}
	if d.Seen("t2_1.2.3.1.1") {
		t.Fatal("tenant must be part of the key")
	}
}

func TestDedupEvictsOldest(t *testing.T) {
	d := NewDedupSet(3)
	for i := 0; i < 4; i++ {
		d.Seen(fmt.Sprintf("t1_%d", i))
	}
	if d.Len() != 3 {
		t.Fatalf("size %d exceeds bound", d.Len())
	}
	if d.Seen("t1_0") {
		t.Fatal("evicted key still reported as seen")
	}
	if !d.Seen("t1_3") {
		t.Fatal("recent key was evicted")
	}
}

func TestDedupConcurrentAccess(t *testing.T) {
	d := NewDedupSet(1000)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				d.Seen(fmt.Sprintf("t%d_%d", g, i))
			}
		}(g)
	}
	wg.Wait()
	if d.Len() != 1000 {
		t.Fatalf("expected the LRU to sit at its bound, got %d", d.Len())
	}
}
