package database

import (
	"sync"
	"testing"

	"shopstack/internal/database/models"
)

func TestNextSequenceStartsAtOne(t *testing.T) {
	db := OpenTestDB(t)

	for want := int64(1); want <= 5; want++ {
		got, err := NextSequence(db, models.SequenceProductCode)
		if err != nil {
			t.Fatalf("next sequence: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestNextSequenceIndependentTypes(t *testing.T) {
	db := OpenTestDB(t)

	if _, err := NextSequence(db, "invoice"); err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if _, err := NextSequence(db, "invoice"); err != nil {
		t.Fatalf("next sequence: %v", err)
	}

	got, err := NextSequence(db, models.SequenceProductCode)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected fresh counter to start at 1, got %d", got)
	}
}

func TestNextSequenceConcurrent(t *testing.T) {
	db := OpenTestDB(t)

	const workers = 20
	results := make(chan int64, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := NextSequence(db, models.SequenceProductCode)
			if err != nil {
				errs <- err
				return
			}
			results <- n
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("next sequence: %v", err)
	}

	seen := make(map[int64]bool, workers)
	for n := range results {
		if seen[n] {
			t.Fatalf("duplicate sequence value %d", n)
		}
		seen[n] = true
	}
	for want := int64(1); want <= workers; want++ {
		if !seen[want] {
			t.Fatalf("missing sequence value %d", want)
		}
	}
}
