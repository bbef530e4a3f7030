package cart

import (
	"storefront/internal/pkg/money"
)

// MaxQuantity is the per-line quantity ceiling. Adds pushing a line past
// it clamp rather than fail.
const MaxQuantity = 99

// Line is one cart entry. Quantity is always in [1, MaxQuantity]; a
// quantity driven to zero removes the line from the cart instead.
type Line struct {
	identity    Identity
	quantity    int
	unitPrice   money.Money // add-time snapshot, possibly stale
	displayName string
	imageRef    string
}

func NewLine(identity Identity, quantity int, price PriceInfo) (Line, error) {
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	return Line{
		identity:    identity,
		quantity:    clampQuantity(quantity),
		unitPrice:   price.UnitPrice,
		displayName: price.DisplayName,
		imageRef:    price.ImageRef,
	}, nil
}

func (l Line) Identity() Identity      { return l.identity }
func (l Line) Quantity() int           { return l.quantity }
func (l Line) UnitPrice() money.Money  { return l.unitPrice }
func (l Line) DisplayName() string     { return l.displayName }
func (l Line) ImageRef() string        { return l.imageRef }
func (l Line) LineTotal() money.Money  { return l.unitPrice.MulInt(int64(l.quantity)) }

// Cart is an ordered sequence of lines (insertion order, display only)
// plus at most one applied promotion. No two lines share an identity.
type Cart struct {
	lines     []Line
	promotion *AppliedPromotion
}

func New() *Cart {
	return &Cart{}
}

// Reconstruct rebuilds a cart from persisted state without revalidation;
// the snapshot store filters malformed lines before calling this.
func Reconstruct(lines []Line, promotion *AppliedPromotion) *Cart {
	c := &Cart{lines: make([]Line, len(lines)), promotion: promotion}
	copy(c.lines, lines)
	return c
}

// AddItem appends a new line, or sums quantity onto an existing line with
// the same identity. The resulting quantity clamps at MaxQuantity.
func (c *Cart) AddItem(identity Identity, quantity int, price PriceInfo) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.lines {
		if c.lines[i].identity == identity {
			c.lines[i].quantity = clampQuantity(c.lines[i].quantity + quantity)
			return nil
		}
	}
	line, err := NewLine(identity, quantity, price)
	if err != nil {
		return err
	}
	c.lines = append(c.lines, line)
	return nil
}

// SetQuantity overwrites a line's quantity. Zero or negative removes the
// line; values above MaxQuantity clamp. Absent identities are a no-op.
func (c *Cart) SetQuantity(identity Identity, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(identity)
		return
	}
	for i := range c.lines {
		if c.lines[i].identity == identity {
			c.lines[i].quantity = clampQuantity(quantity)
			return
		}
	}
}

// RemoveItem is idempotent: removing an absent identity leaves the cart
// unchanged.
func (c *Cart) RemoveItem(identity Identity) {
	for i := range c.lines {
		if c.lines[i].identity == identity {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = nil
	c.promotion = nil
}

// Merge combines two carts into a fresh accumulator: shared identities
// sum (clamped), the rest carry over, receiver lines keep their position.
// Building a new cart rather than incrementally adding into the receiver
// keeps the operation safe to repeat with the same source.
func (c *Cart) Merge(other *Cart) *Cart {
	merged := &Cart{}
	merged.lines = make([]Line, len(c.lines))
	copy(merged.lines, c.lines)

	if other != nil {
		for _, line := range other.lines {
			found := false
			for i := range merged.lines {
				if merged.lines[i].identity == line.identity {
					merged.lines[i].quantity = clampQuantity(merged.lines[i].quantity + line.quantity)
					found = true
					break
				}
			}
			if !found {
				merged.lines = append(merged.lines, line)
			}
		}
	}

	if c.promotion != nil {
		p := *c.promotion
		merged.promotion = &p
	} else if other != nil && other.promotion != nil {
		p := *other.promotion
		merged.promotion = &p
	}
	return merged
}

// ApplyPromotion replaces any previously applied promotion; promotions
// never stack.
func (c *Cart) ApplyPromotion(p AppliedPromotion) {
	c.promotion = &p
}

// ClearPromotion is always allowed and idempotent.
func (c *Cart) ClearPromotion() {
	c.promotion = nil
}

func (c *Cart) Promotion() *AppliedPromotion {
	if c.promotion == nil {
		return nil
	}
	p := *c.promotion
	return &p
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Find(identity Identity) (Line, bool) {
	for _, l := range c.lines {
		if l.identity == identity {
			return l, true
		}
	}
	return Line{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ItemCount is the total item count: the sum of line quantities.
func (c *Cart) ItemCount() int {
	total := 0
	for _, l := range c.lines {
		total += l.quantity
	}
	return total
}

// SnapshotSubtotal sums line totals using the add-time price snapshots.
// Preview use only; checkout pricing re-fetches authoritative prices.
func (c *Cart) SnapshotSubtotal() money.Money {
	subtotal := money.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	return subtotal
}

func clampQuantity(q int) int {
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
