package gamelock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithGameSerializesSameNumber(t *testing.T) {
	manager := NewManager()

	// A plain int is only safe if the critical section really is exclusive.
	counter := 0
	const workers = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.WithGame(123456, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestWithGameIndependentNumbers(t *testing.T) {
	manager := NewManager()

	release := make(chan struct{})
	holding := make(chan struct{})
	go manager.WithGame(111111, func() error {
		close(holding)
		<-release
		return nil
	})
	<-holding

	// A different number must not wait on the held section.
	ran := false
	err := manager.WithGame(222222, func() error {
		ran = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, ran)
	close(release)
}

func TestWithGameReleasesEntries(t *testing.T) {
	manager := NewManager()

	for i := 0; i < 10; i++ {
		manager.WithGame(333333, func() error { return nil })
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()
	assert.Empty(t, manager.locks)
}
