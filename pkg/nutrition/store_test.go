package nutrition

import (
	"sync"
	"testing"
)

func TestStoreSwap(t *testing.T) {
	first := mustLoad(t, appleCatalog)
	second := mustLoad(t, `{"rice": {"calories_per_100g": 130, "protein_per_100g": 2.7, "carbs_per_100g": 28, "fats_per_100g": 0.3, "standard_serving_grams": 180}}`)

	store := NewStore(first)
	if store.Catalog() != first {
		t.Fatalf("expected initial catalog")
	}

	if old := store.Swap(second); old != first {
		t.Fatalf("expected previous catalog to be returned")
	}
	if store.Catalog() != second {
		t.Fatalf("expected swapped catalog")
	}

	store.Swap(nil)
	if store.Catalog() != second {
		t.Fatalf("nil swap must keep the current catalog")
	}
}

func TestConcurrentAnalyzeDuringSwap(t *testing.T) {
	first := mustLoad(t, appleCatalog)
	store := NewStore(first)
	in := detections("apple", "apple")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				totals, summaries := Analyze(in, store.Catalog())
				if !approx(totals.Calories, 156) || summaries[0] != "2xapple" {
					t.Errorf("unexpected result %+v %v", totals, summaries)
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		store.Swap(mustLoad(t, appleCatalog))
	}
	wg.Wait()
}
