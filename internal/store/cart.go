package store

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/shopspring/decimal"
)

// CartVersion is the version of the persisted cart record
const CartVersion = 1

// Cart holds the line items of one shopper and the drawer's open flag.
// Only the items are persisted.
type Cart struct {
	items   []domain.CartItem
	isOpen  bool
	persist Persister[[]domain.CartItem]
	log     hclog.Logger
	mutex   sync.RWMutex
}

// NewCart loads the persisted items. A failed load starts an empty cart.
func NewCart(persist Persister[[]domain.CartItem], log hclog.Logger) *Cart {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	c := &Cart{persist: persist, log: log}
	c.Init()
	return c
}

// Init replaces the in-memory state with the persisted items, closed
func (c *Cart) Init() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.isOpen = false
	c.items = nil

	items, err := c.persist.Load()
	if err != nil {
		c.log.Error("Unable to load cart", "error", err)
		return
	}
	for _, it := range items {
		if it.Quantity > 0 {
			c.items = append(c.items, it)
		}
	}
}

// Reset empties the cart and closes it
func (c *Cart) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = nil
	c.isOpen = false
	c.save()
}

// AddItem adds quantity units of the product in the given size. A line for
// the same product and size is merged. Quantities below one count as one.
// The cart is opened.
func (c *Cart) AddItem(product *domain.Product, dimension domain.ProductDimension, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if i := c.index(product.ID, dimension.ID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, domain.CartItem{
			ProductID:   product.ID,
			Product:     *product.Clone(),
			DimensionID: dimension.ID,
			Dimension:   dimension,
			Quantity:    quantity,
		})
	}
	c.isOpen = true
	c.save()
}

// RemoveItem drops the line if present
func (c *Cart) RemoveItem(productID, dimensionID string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.remove(productID, dimensionID)
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (c *Cart) UpdateQuantity(productID, dimensionID string, quantity int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if quantity <= 0 {
		c.remove(productID, dimensionID)
		return
	}
	if i := c.index(productID, dimensionID); i >= 0 {
		c.items[i].Quantity = quantity
		c.save()
	}
}

// ClearCart empties the item list. The open flag is kept.
func (c *Cart) ClearCart() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = nil
	c.save()
}

func (c *Cart) Toggle() {
	c.mutex.Lock()
	c.isOpen = !c.isOpen
	c.mutex.Unlock()
}

func (c *Cart) Open() {
	c.mutex.Lock()
	c.isOpen = true
	c.mutex.Unlock()
}

func (c *Cart) Close() {
	c.mutex.Lock()
	c.isOpen = false
	c.mutex.Unlock()
}

func (c *Cart) IsOpen() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.isOpen
}

// Items returns a copy of the line items in insertion order
func (c *Cart) Items() []domain.CartItem {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return append([]domain.CartItem{}, c.items...)
}

// Total is the sum of unit price times quantity over every line
func (c *Cart) Total() decimal.Decimal {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := decimal.Zero
	for _, it := range c.items {
		line := decimal.NewFromFloat(it.UnitPrice()).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total
}

// ItemCount is the number of units in the cart
func (c *Cart) ItemCount() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) index(productID, dimensionID string) int {
	for i, it := range c.items {
		if it.ProductID == productID && it.DimensionID == dimensionID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(productID, dimensionID string) {
	i := c.index(productID, dimensionID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.save()
}

// deleter is implemented by persisters that can drop their record
type deleter interface {
	Delete() error
}

// save must be called with the lock held. An empty cart drops its record
// when the persister supports it.
func (c *Cart) save() {
	if d, ok := c.persist.(deleter); ok && len(c.items) == 0 {
		if err := d.Delete(); err != nil {
			c.log.Error("Unable to delete cart record", "error", err)
		}
		return
	}

	items := append([]domain.CartItem{}, c.items...)
	if err := c.persist.Save(items); err != nil {
		c.log.Error("Unable to persist cart", "error", err)
	}
}
