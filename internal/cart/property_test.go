package cart

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func propertyEngine() *Engine {
	engine, err := New(context.Background(), newShopCatalog(), NewMemoryStore().Session("p"), Options{Pricing: DefaultPricing()})
	if err != nil {
		panic(err)
	}
	return engine
}

func TestAddItemMergesQuantitiesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated adds keep one line with the summed quantity", prop.ForAll(
		func(quantities []int) bool {
			ctx := context.Background()
			engine := propertyEngine()
			sum := 0
			for _, qty := range quantities {
				if _, err := engine.AddItem(ctx, "A", qty, nil); err != nil {
					return false
				}
				sum += qty
			}
			lines := engine.Lines()
			if len(quantities) == 0 {
				return len(lines) == 0
			}
			return len(lines) == 1 && lines[0].Quantity == sum && engine.ItemCount() == sum
		},
		gen.SliceOf(gen.IntRange(1, 50)),
	))

	properties.TestingRun(t)
}

func TestDecrementNeverBelowOneProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("decrement floors at one", prop.ForAll(
		func(initial, decrements int) bool {
			ctx := context.Background()
			engine := propertyEngine()
			if _, err := engine.AddItem(ctx, "B", initial, nil); err != nil {
				return false
			}
			for i := 0; i < decrements; i++ {
				if err := engine.DecrementQuantity(ctx, "B"); err != nil {
					return false
				}
			}
			line, ok := engine.Line("B")
			want := initial - decrements
			if want < 1 {
				want = 1
			}
			return ok && line.Quantity == want
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

func TestRandomOperationSequencesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	productIDs := []string{"A", "B", "missing"}

	properties.Property("cart invariants hold after any operation sequence", prop.ForAll(
		func(ops []int, targets []int) bool {
			ctx := context.Background()
			engine := propertyEngine()
			for i, op := range ops {
				id := productIDs[targets[i%len(targets)]]
				switch op {
				case 0:
					_, _ = engine.AddItem(ctx, id, i%3+1, nil)
				case 1:
					_ = engine.RemoveItem(ctx, id)
				case 2:
					_ = engine.IncrementQuantity(ctx, id)
				case 3:
					_ = engine.DecrementQuantity(ctx, id)
				case 4:
					_ = engine.Clear(ctx)
				}
			}

			seen := map[string]bool{}
			sum := 0
			for _, line := range engine.Lines() {
				if seen[line.ProductID] || line.Quantity < 1 || line.ProductID == "missing" {
					return false
				}
				seen[line.ProductID] = true
				sum += line.Quantity
			}
			if engine.ItemCount() != sum {
				return false
			}

			first, err := engine.ComputeSummary(ctx)
			if err != nil {
				return false
			}
			second, err := engine.ComputeSummary(ctx)
			if err != nil || !first.Equal(second) {
				return false
			}
			for _, amount := range []decimal.Decimal{first.Subtotal, first.Shipping, first.Tax, first.Total} {
				if amount.IsNegative() {
					return false
				}
			}
			return first.Total.Equal(first.Subtotal.Add(first.Shipping).Add(first.Tax))
		},
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.SliceOfN(4, gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}

func TestPersistedCartRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("a reloaded engine sees the same lines", prop.ForAll(
		func(qtyA, qtyB int) bool {
			ctx := context.Background()
			store := NewMemoryStore()
			catalog := newShopCatalog()
			engine, _ := New(ctx, catalog, store.Session("rt"), Options{Pricing: DefaultPricing()})
			_, _ = engine.AddItem(ctx, "A", qtyA, &Variant{Color: "Red"})
			_, _ = engine.AddItem(ctx, "B", qtyB, nil)

			reloaded, err := New(ctx, catalog, store.Session("rt"), Options{Pricing: DefaultPricing()})
			if err != nil {
				return false
			}
			before, after := engine.Lines(), reloaded.Lines()
			if len(before) != len(after) {
				return false
			}
			for i := range before {
				if before[i].ProductID != after[i].ProductID || before[i].Quantity != after[i].Quantity {
					return false
				}
			}
			return after[0].Variant != nil && after[0].Variant.Color == "Red"
		},
		gen.IntRange(1, 100),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}
