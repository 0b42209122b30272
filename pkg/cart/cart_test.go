package cart

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	soup   = Product{ID: "p1", Name: "Soup", Price: decimal.RequireFromString("10.00"), Image: "soup.png"}
	burger = Product{ID: "p2", Name: "Burger", Price: decimal.RequireFromString("8.50")}
)

func TestAddMergesSameProduct(t *testing.T) {
	s := NewStore()

	first := s.Add(soup, 2)
	second := s.Add(soup, 1)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, first.EntryID, second.EntryID)
	assert.Equal(t, 3, s.Quantity("p1"))
	assert.True(t, decimal.RequireFromString("30").Equal(s.Total()))
}

func TestAddManyTimesSumsQuantities(t *testing.T) {
	s := NewStore()
	rng := rand.New(rand.NewPCG(1, 2))

	want := 0
	for range 50 {
		q := rng.IntN(5) + 1
		want += q
		s.Add(soup, q)
	}

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, want, items[0].Quantity)
}

func TestAddIgnoresNonPositiveQuantity(t *testing.T) {
	s := NewStore()
	s.Add(soup, 0)
	assert.True(t, s.IsEmpty())

	s.Add(soup, 1)
	s.Add(soup, -3)
	assert.Equal(t, 1, s.Quantity("p1"))
}

func TestEntryIDsAreDistinctFromProductIDs(t *testing.T) {
	s := NewStore()
	a := s.Add(soup, 1)
	b := s.Add(burger, 1)

	assert.NotEqual(t, a.EntryID, b.EntryID)
	assert.NotEqual(t, a.ProductID, a.EntryID)
	assert.NotEmpty(t, a.EntryID)
}

func TestDecreaseFloorsAtOne(t *testing.T) {
	s := NewStore()
	item := s.Add(soup, 1)

	s.Decrease(item.EntryID)
	s.Decrease(item.EntryID)

	assert.Equal(t, 1, s.Quantity("p1"))
}

func TestIncreaseAndDecrease(t *testing.T) {
	s := NewStore()
	item := s.Add(burger, 1)

	s.Increase(item.EntryID)
	s.Increase(item.EntryID)
	assert.Equal(t, 3, s.Quantity("p2"))

	s.Decrease(item.EntryID)
	assert.Equal(t, 2, s.Quantity("p2"))

	s.Increase("missing")
	s.Decrease("missing")
	assert.Equal(t, 2, s.Quantity("p2"))
}

func TestRemoveAndClear(t *testing.T) {
	s := NewStore()
	a := s.Add(soup, 5)
	s.Add(burger, 1)

	s.Remove(a.EntryID)
	assert.Equal(t, 0, s.Quantity("p1"))
	assert.Equal(t, 1, s.Len())

	s.Remove("missing")
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.True(t, decimal.Zero.Equal(s.Total()))
}

func TestSubtractKeepsLaterAdditions(t *testing.T) {
	s := NewStore()
	s.Add(soup, 2)
	s.Add(burger, 1)
	snapshot := s.Items()

	s.Add(soup, 1)
	s.Add(Product{ID: "p3", Name: "Tea", Price: decimal.RequireFromString("1")}, 1)

	s.Subtract(snapshot)
	assert.Equal(t, 1, s.Quantity("p1"))
	assert.Equal(t, 0, s.Quantity("p2"))
	assert.Equal(t, 1, s.Quantity("p3"))
	assert.Equal(t, 2, s.Len())

	s.Subtract(snapshot)
	assert.Equal(t, 0, s.Quantity("p1"))
	assert.Equal(t, 1, s.Len())
}

func TestTotalIsRecomputed(t *testing.T) {
	s := NewStore()
	a := s.Add(soup, 1)
	b := s.Add(burger, 2)

	assert.Equal(t, "27.00", s.Total().StringFixed(2))

	s.Increase(a.EntryID)
	assert.Equal(t, "37.00", s.Total().StringFixed(2))

	s.Remove(b.EntryID)
	assert.Equal(t, "20.00", s.Total().StringFixed(2))
}

func TestItemsReturnsSnapshot(t *testing.T) {
	s := NewStore()
	s.Add(soup, 1)

	items := s.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, s.Quantity("p1"))
}

func TestCustomEntryIDs(t *testing.T) {
	n := 0
	s := NewStore(WithEntryIDs(func() string {
		n++
		return "entry-" + string(rune('0'+n))
	}))

	assert.Equal(t, "entry-1", s.Add(soup, 1).EntryID)
	assert.Equal(t, "entry-2", s.Add(burger, 1).EntryID)
}

func TestConcurrentAdds(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				s.Add(soup, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, s.Quantity("p1"))
	assert.Equal(t, 1, s.Len())
}
