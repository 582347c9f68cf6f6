package services

import (
	"sync"
	"testing"
)

func TestDocumentLocksSerializePerID(t *testing.T) {
	locks := newDocumentLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("doc")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if n := locks.size(); n != 0 {
		t.Fatalf("%d lock entries left behind", n)
	}
}

func TestDocumentLocksIndependentIDs(t *testing.T) {
	locks := newDocumentLocks()
	unlockA := locks.lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.lock("b")
		unlock()
		close(done)
	}()
	<-done
}
