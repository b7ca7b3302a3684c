package expansion

import (
	"math/rand"
	"sync"
	"testing"
)

func TestController_Select(t *testing.T) {
	c := New()

	if got := c.Select("ana"); got != "ana" {
		t.Fatalf("Select(ana) = %q", got)
	}
	if got := c.Select("bruno"); got != "bruno" {
		t.Fatalf("Select(bruno) = %q", got)
	}
	if c.IsExpanded("ana") {
		t.Error("ana should have collapsed when bruno expanded")
	}
	if got := c.Select("bruno"); got != "" {
		t.Errorf("selecting the open card should collapse it, got %q", got)
	}
	if c.Expanded() != "" {
		t.Errorf("Expanded() = %q, want none", c.Expanded())
	}
}

func TestController_Collapse(t *testing.T) {
	var changes [][2]string
	c := New(WithOnChange(func(prev, next string) {
		changes = append(changes, [2]string{prev, next})
	}))

	c.Select("ana")
	c.Collapse()
	c.Collapse()

	want := [][2]string{{"", "ana"}, {"ana", ""}}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}
}

func TestController_IsExpandedIgnoresEmptyID(t *testing.T) {
	c := New()
	if c.IsExpanded("") {
		t.Error("empty id is never expanded")
	}
}

// Any sequence of selections leaves at most one card open, and the open
// card is always the one a model toggle predicts.
func TestController_NeverTwoExpanded(t *testing.T) {
	cards := []string{"ana", "bruno", "carla", "davi"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		c := New()
		model := ""
		for i := 0; i < 30; i++ {
			card := cards[rng.Intn(len(cards))]
			if model == card {
				model = ""
			} else {
				model = card
			}
			c.Select(card)

			open := 0
			for _, id := range cards {
				if c.IsExpanded(id) {
					open++
				}
			}
			if open > 1 {
				t.Fatalf("run %d step %d: %d cards expanded", run, i, open)
			}
			if c.Expanded() != model {
				t.Fatalf("run %d step %d: expanded %q, want %q", run, i, c.Expanded(), model)
			}
		}
	}
}

// Run with -race: selections from many goroutines must stay consistent.
func TestController_ConcurrentSelections(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Select([]string{"ana", "bruno"}[(i+j)%2])
				if c.IsExpanded("ana") && c.IsExpanded("bruno") {
					t.Error("two cards expanded")
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if e := c.Expanded(); e != "" && e != "ana" && e != "bruno" {
		t.Errorf("unexpected expanded card %q", e)
	}
}
