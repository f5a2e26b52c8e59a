package param

import (
	"sync"
	"testing"
)

func TestValueStoreLoad(t *testing.T) {
	v := NewValue(-10.5)
	if got := v.Load(); got != -10.5 {
		t.Fatalf("Load() = %v, want -10.5", got)
	}

	v.Store(3.25)
	if got := v.Load(); got != 3.25 {
		t.Fatalf("Load() = %v, want 3.25", got)
	}
}

func TestValueConcurrentReaderWriter(t *testing.T) {
	v := NewValue(0)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			v.Store(float64(i))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			got := v.Load()
			// Every observed value must be one that was actually stored;
			// torn reads would produce garbage in between.
			if got != float64(int(got)) || got < 0 || got > 9999 {
				t.Errorf("torn read: %v", got)
				return
			}
		}
	}()

	wg.Wait()
}

func TestChoiceStoreLoad(t *testing.T) {
	c := NewChoice(1)
	if got := c.Load(); got != 1 {
		t.Fatalf("Load() = %d, want 1", got)
	}

	c.Store(0)
	if got := c.Load(); got != 0 {
		t.Fatalf("Load() = %d, want 0", got)
	}
}
