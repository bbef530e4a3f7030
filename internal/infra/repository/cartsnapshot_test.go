//go:build unit

package repository

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/cart"
	"storefront/internal/pkg/money"
)

func snapshotLineFixture(t *testing.T) snapshotLine {
	t.Helper()
	price, err := money.FromString("19.99")
	require.NoError(t, err)
	return snapshotLine{
		ProductID:   uuid.New(),
		VariantKey:  "size:M|color:black",
		Quantity:    2,
		UnitPrice:   price,
		DisplayName: "Classic Tee",
		ImageRef:    "img/classic-tee.jpg",
	}
}

func TestCartSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	first := snapshotLineFixture(t)
	second := snapshotLineFixture(t)
	second.VariantKey = "size:L|color:white"
	second.Quantity = 1
	third := snapshotLineFixture(t)
	third.VariantKey = ""
	promoID := uuid.New()
	snap := cartSnapshot{
		Lines:     []snapshotLine{first, second, third},
		Promotion: &snapshotPromotion{ID: promoID, Code: "SPRING10"},
	}

	c := decodeSnapshot(userID, snap)

	require.Len(t, c.Lines(), 3)
	for i, want := range []snapshotLine{first, second, third} {
		line := c.Lines()[i]
		assert.Equal(t, want.ProductID, line.Identity().ProductID())
		assert.Equal(t, want.VariantKey, line.Identity().VariantKey())
		assert.Equal(t, want.Quantity, line.Quantity())
	}
	assert.Equal(t, "19.99", c.Lines()[0].UnitPrice().String())
	require.NotNil(t, c.Promotion())
	assert.Equal(t, "SPRING10", c.Promotion().Code())

	// encode must land on the same document
	back := encodeSnapshot(c)
	if diff := cmp.Diff(snap, back); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSnapshotFiltersMalformedLines(t *testing.T) {
	t.Parallel()

	good := snapshotLineFixture(t)
	noProduct := snapshotLineFixture(t)
	noProduct.ProductID = uuid.Nil
	zeroQuantity := snapshotLineFixture(t)
	zeroQuantity.ProductID = uuid.New()
	zeroQuantity.Quantity = 0

	c := decodeSnapshot(uuid.New(), cartSnapshot{
		Lines: []snapshotLine{noProduct, good, zeroQuantity},
	})

	require.Len(t, c.Lines(), 1, "only the valid line survives")
	assert.Equal(t, good.ProductID, c.Lines()[0].Identity().ProductID())
	assert.Nil(t, c.Promotion())
}

func TestDecodeSnapshotIgnoresEmptyPromotionCode(t *testing.T) {
	t.Parallel()

	c := decodeSnapshot(uuid.New(), cartSnapshot{
		Lines:     []snapshotLine{snapshotLineFixture(t)},
		Promotion: &snapshotPromotion{ID: uuid.New(), Code: ""},
	})

	assert.Nil(t, c.Promotion())
}

func TestEncodeSnapshotEmptyCart(t *testing.T) {
	t.Parallel()

	snap := encodeSnapshot(cart.New())

	assert.Empty(t, snap.Lines)
	assert.Nil(t, snap.Promotion)
}
