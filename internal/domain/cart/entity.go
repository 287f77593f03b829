// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCart     = errors.New("cart: invalid")
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
	ErrVersionConflict = errors.New("cart: version conflict")
)

// CartLine is one product in the cart. Name, Price and ImageURL are a
// snapshot taken when the line was added; they are not kept in sync with
// the catalog.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
}

// Subtotal is Price x Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the cart document of one user.
//   - docId = userId
//   - Lines are unique by ProductID and sorted by ProductID
//   - Version increases on every write; 0 means "never written"
type Cart struct {
	UserID    string     `json:"userId"`
	Lines     []CartLine `json:"items"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewCart builds a cart from arbitrary input lines.
// Duplicate product ids are merged (quantities summed, first snapshot wins),
// zero-quantity lines are dropped and negative quantities are rejected.
func NewCart(userID string, lines []CartLine, now time.Time) (*Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrInvalidCart
	}
	normalized, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}
	return &Cart{
		UserID:    uid,
		Lines:     normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Empty is the cart of a user with no stored document.
func Empty(userID string) *Cart {
	return &Cart{UserID: strings.TrimSpace(userID), Lines: []CartLine{}}
}

// Total is the sum of price * quantity. Never stored.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Line returns the line for productID.
func (c *Cart) Line(productID string) (CartLine, bool) {
	if c == nil {
		return CartLine{}, false
	}
	pid := strings.TrimSpace(productID)
	for _, l := range c.Lines {
		if l.ProductID == pid {
			return l, true
		}
	}
	return CartLine{}, false
}

// SetQuantity sets the quantity of an existing line; qty 0 removes it.
// When the product is not in the cart, snapshot is appended with qty
// (snapshot.ProductID is forced to productID).
func (c *Cart) SetQuantity(productID string, qty int, snapshot CartLine, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidCart
	}
	if qty < 0 {
		return ErrInvalidQuantity
	}

	idx := c.indexOf(pid)
	switch {
	case qty == 0:
		if idx >= 0 {
			c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
		}
	case idx >= 0:
		c.Lines[idx].Quantity = qty
	default:
		snapshot.ProductID = pid
		snapshot.Quantity = qty
		c.Lines = append(c.Lines, snapshot)
	}

	c.touch(now)
	return c.normalize()
}

// Add increases the quantity of productID by qty (qty >= 1).
func (c *Cart) Add(productID string, qty int, snapshot CartLine, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	cur := 0
	if l, ok := c.Line(productID); ok {
		cur = l.Quantity
	}
	return c.SetQuantity(productID, cur+qty, snapshot, now)
}

// Remove drops the line for productID. Absent lines are ignored.
func (c *Cart) Remove(productID string, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	return c.SetQuantity(productID, 0, CartLine{}, now)
}

// Clear empties the cart but keeps it.
func (c *Cart) Clear(now time.Time) {
	if c == nil {
		return
	}
	c.Lines = []CartLine{}
	c.touch(now)
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func (c *Cart) normalize() error {
	lines, err := normalizeLines(c.Lines)
	if err != nil {
		return err
	}
	c.Lines = lines
	return nil
}

func normalizeLines(in []CartLine) ([]CartLine, error) {
	out := make([]CartLine, 0, len(in))
	index := make(map[string]int, len(in))

	for _, l := range in {
		pid := strings.TrimSpace(l.ProductID)
		if pid == "" {
			return nil, ErrInvalidCart
		}
		if l.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		if l.Price < 0 {
			return nil, ErrInvalidCart
		}
		l.ProductID = pid
		l.Name = strings.TrimSpace(l.Name)
		l.ImageURL = strings.TrimSpace(l.ImageURL)

		if i, ok := index[pid]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[pid] = len(out)
		out = append(out, l)
	}

	kept := out[:0]
	for _, l := range out {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ProductID < kept[j].ProductID })
	return kept, nil
}
