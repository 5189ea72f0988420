package conversation

import (
	"sync"
	"testing"
)

func TestKeyedLocksSerializes(t *testing.T) {
	locks := newKeyedLocks()

	const workers = 8
	const iterations = 200

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unlock := locks.lock("conv_a")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	if counter != workers*iterations {
		t.Errorf("counter = %d, want %d", counter, workers*iterations)
	}
}

func TestKeyedLocksReleasesEntries(t *testing.T) {
	locks := newKeyedLocks()

	unlockA := locks.lock("conv_a")
	unlockB := locks.lock("conv_b")
	unlockA()
	unlockB()

	locks.mu.Lock()
	remaining := len(locks.entries)
	locks.mu.Unlock()

	if remaining != 0 {
		t.Errorf("entries remaining after release = %d, want 0", remaining)
	}
}

func TestKeyedLocksIndependentKeys(t *testing.T) {
	locks := newKeyedLocks()

	unlockA := locks.lock("conv_a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.lock("conv_b")
		unlockB()
		close(done)
	}()

	<-done
}
