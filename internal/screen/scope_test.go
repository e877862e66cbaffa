package screen

import (
	"sync"
	"testing"
)

func TestScopeApplyUntilClosed(t *testing.T) {
	s := New()
	ran := 0
	if !s.Apply(func() { ran++ }) {
		t.Fatalf("expected apply on live scope")
	}
	s.Close()
	s.Close()
	if s.Apply(func() { ran++ }) {
		t.Fatalf("closed scope should discard")
	}
	if ran != 1 || s.Live() {
		t.Fatalf("unexpected state ran=%d live=%v", ran, s.Live())
	}
}

func TestNilScopeIsLive(t *testing.T) {
	var s *Scope
	if !s.Live() {
		t.Fatalf("nil scope should be live")
	}
	s.Close()
	if !s.Apply(func() {}) {
		t.Fatalf("nil scope should apply")
	}
}

func TestScopeConcurrentClose(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Apply(func() {})
		}()
		go func() {
			defer wg.Done()
			_ = s.Live()
		}()
	}
	s.Close()
	wg.Wait()
	if s.Live() {
		t.Fatalf("expected closed")
	}
}
