//go:build unit

package cart_test

import (
	"testing"

	"storefront/internal/domain/cart"
	"storefront/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItem(t *testing.T) {
	t.Run("adds a new line", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := cart.New()

		require.NoError(t, c.AddItem(lb.BuildIdentity(), 3, lb.BuildPriceInfo()))

		line, ok := c.Find(lb.BuildIdentity())
		require.True(t, ok)
		assert.Equal(t, 3, line.Quantity())
		assert.Equal(t, lb.DisplayName, line.DisplayName())
	})

	t.Run("same identity accumulates quantity on one line", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := cart.New()

		require.NoError(t, c.AddItem(lb.BuildIdentity(), 2, lb.BuildPriceInfo()))
		require.NoError(t, c.AddItem(lb.BuildIdentity(), 5, lb.BuildPriceInfo()))

		require.Len(t, c.Lines(), 1)
		line, _ := c.Find(lb.BuildIdentity())
		assert.Equal(t, 7, line.Quantity())
	})

	t.Run("same product with different variant keys gets separate lines", func(t *testing.T) {
		productID := uuid.New()
		small := builder.NewCartLineBuilder().With(func(b *builder.CartLineBuilder) {
			b.ProductID = productID
			b.VariantKey = "size:S"
		})
		large := builder.NewCartLineBuilder().With(func(b *builder.CartLineBuilder) {
			b.ProductID = productID
			b.VariantKey = "size:L"
		})

		c := cart.New()
		require.NoError(t, c.AddItem(small.BuildIdentity(), 1, small.BuildPriceInfo()))
		require.NoError(t, c.AddItem(large.BuildIdentity(), 1, large.BuildPriceInfo()))

		assert.Len(t, c.Lines(), 2)
	})

	t.Run("accumulated quantity clamps at the ceiling", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := cart.New()

		require.NoError(t, c.AddItem(lb.BuildIdentity(), 60, lb.BuildPriceInfo()))
		require.NoError(t, c.AddItem(lb.BuildIdentity(), 60, lb.BuildPriceInfo()))

		line, _ := c.Find(lb.BuildIdentity())
		assert.Equal(t, cart.MaxQuantity, line.Quantity())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := cart.New()

		require.ErrorIs(t, c.AddItem(lb.BuildIdentity(), 0, lb.BuildPriceInfo()), cart.ErrInvalidQuantity)
		require.ErrorIs(t, c.AddItem(lb.BuildIdentity(), -1, lb.BuildPriceInfo()), cart.ErrInvalidQuantity)
		assert.True(t, c.IsEmpty())
	})
}

func TestCartSetQuantity(t *testing.T) {
	t.Run("overwrites quantity", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := builder.BuildCart(lb)

		c.SetQuantity(lb.BuildIdentity(), 9)

		line, _ := c.Find(lb.BuildIdentity())
		assert.Equal(t, 9, line.Quantity())
	})

	t.Run("zero removes the line", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := builder.BuildCart(lb)

		c.SetQuantity(lb.BuildIdentity(), 0)

		assert.True(t, c.IsEmpty())
	})

	t.Run("clamps above the ceiling", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := builder.BuildCart(lb)

		c.SetQuantity(lb.BuildIdentity(), 500)

		line, _ := c.Find(lb.BuildIdentity())
		assert.Equal(t, cart.MaxQuantity, line.Quantity())
	})

	t.Run("absent identity is a no-op", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := builder.BuildCart(lb)

		other := builder.NewCartLineBuilder()
		c.SetQuantity(other.BuildIdentity(), 5)

		assert.Len(t, c.Lines(), 1)
	})
}

func TestCartRemoveItem(t *testing.T) {
	t.Run("removes the line", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := builder.BuildCart(lb)

		c.RemoveItem(lb.BuildIdentity())

		assert.True(t, c.IsEmpty())
	})

	t.Run("removing twice is idempotent", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		c := builder.BuildCart(lb)

		c.RemoveItem(lb.BuildIdentity())
		c.RemoveItem(lb.BuildIdentity())

		assert.True(t, c.IsEmpty())
	})
}

func TestCartMerge(t *testing.T) {
	t.Run("shared identities sum, receiver lines keep position", func(t *testing.T) {
		shared := builder.NewCartLineBuilder()
		receiverOnly := builder.NewCartLineBuilder()
		sourceOnly := builder.NewCartLineBuilder()

		receiver := builder.BuildCart(receiverOnly, shared)
		source := builder.BuildCart(shared, sourceOnly)

		merged := receiver.Merge(source)

		lines := merged.Lines()
		require.Len(t, lines, 3)
		assert.Equal(t, receiverOnly.BuildIdentity(), lines[0].Identity())
		assert.Equal(t, shared.BuildIdentity(), lines[1].Identity())
		assert.Equal(t, sourceOnly.BuildIdentity(), lines[2].Identity())
		assert.Equal(t, shared.Quantity*2, lines[1].Quantity())
	})

	t.Run("merge builds a fresh cart and leaves inputs untouched", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		receiver := builder.BuildCart(lb)
		source := builder.BuildCart(lb)

		merged := receiver.Merge(source)

		receiverLine, _ := receiver.Find(lb.BuildIdentity())
		assert.Equal(t, lb.Quantity, receiverLine.Quantity())
		mergedLine, _ := merged.Find(lb.BuildIdentity())
		assert.Equal(t, lb.Quantity*2, mergedLine.Quantity())
	})

	t.Run("summed quantities clamp", func(t *testing.T) {
		lb := builder.NewCartLineBuilder().With(func(b *builder.CartLineBuilder) { b.Quantity = 80 })
		merged := builder.BuildCart(lb).Merge(builder.BuildCart(lb))

		line, _ := merged.Find(lb.BuildIdentity())
		assert.Equal(t, cart.MaxQuantity, line.Quantity())
	})

	t.Run("receiver promotion wins over source promotion", func(t *testing.T) {
		receiver := builder.BuildCart(builder.NewCartLineBuilder())
		receiverPromo := cart.NewAppliedPromotion(uuid.New(), "KEEPME10")
		receiver.ApplyPromotion(receiverPromo)

		source := builder.BuildCart(builder.NewCartLineBuilder())
		source.ApplyPromotion(cart.NewAppliedPromotion(uuid.New(), "DROPME20"))

		merged := receiver.Merge(source)

		require.NotNil(t, merged.Promotion())
		assert.Equal(t, "KEEPME10", merged.Promotion().Code())
	})

	t.Run("source promotion carries when receiver has none", func(t *testing.T) {
		receiver := builder.BuildCart(builder.NewCartLineBuilder())
		source := builder.BuildCart(builder.NewCartLineBuilder())
		source.ApplyPromotion(cart.NewAppliedPromotion(uuid.New(), "GUEST15"))

		merged := receiver.Merge(source)

		require.NotNil(t, merged.Promotion())
		assert.Equal(t, "GUEST15", merged.Promotion().Code())
	})

	t.Run("nil source merges to a copy of the receiver", func(t *testing.T) {
		lb := builder.NewCartLineBuilder()
		receiver := builder.BuildCart(lb)

		merged := receiver.Merge(nil)

		assert.Len(t, merged.Lines(), 1)
	})
}

func TestCartPromotion(t *testing.T) {
	t.Run("applying a second code replaces the first", func(t *testing.T) {
		c := builder.BuildCart(builder.NewCartLineBuilder())

		c.ApplyPromotion(cart.NewAppliedPromotion(uuid.New(), "FIRST10"))
		c.ApplyPromotion(cart.NewAppliedPromotion(uuid.New(), "SECOND20"))

		require.NotNil(t, c.Promotion())
		assert.Equal(t, "SECOND20", c.Promotion().Code())
	})

	t.Run("clear promotion is idempotent", func(t *testing.T) {
		c := builder.BuildCart(builder.NewCartLineBuilder())
		c.ApplyPromotion(cart.NewAppliedPromotion(uuid.New(), "GONE10"))

		c.ClearPromotion()
		c.ClearPromotion()

		assert.Nil(t, c.Promotion())
	})

	t.Run("clearing the cart drops the promotion too", func(t *testing.T) {
		c := builder.BuildCart(builder.NewCartLineBuilder())
		c.ApplyPromotion(cart.NewAppliedPromotion(uuid.New(), "GONE10"))

		c.Clear()

		assert.True(t, c.IsEmpty())
		assert.Nil(t, c.Promotion())
	})
}

func TestCartTotals(t *testing.T) {
	t.Run("item count sums quantities", func(t *testing.T) {
		a := builder.NewCartLineBuilder().With(func(b *builder.CartLineBuilder) { b.Quantity = 2 })
		c := builder.NewCartLineBuilder().With(func(b *builder.CartLineBuilder) { b.Quantity = 3 })

		assert.Equal(t, 5, builder.BuildCart(a, c).ItemCount())
	})

	t.Run("snapshot subtotal multiplies snapshot prices", func(t *testing.T) {
		lb := builder.NewCartLineBuilder().With(func(b *builder.CartLineBuilder) {
			b.UnitPrice = "19.99"
			b.Quantity = 3
		})

		assert.Equal(t, "59.97", builder.BuildCart(lb).SnapshotSubtotal().String())
	})
}
