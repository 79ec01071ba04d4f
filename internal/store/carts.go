package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/kahvecikaan/probagno/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// DefaultMaxCarts bounds the carts held in memory. The least recently used
// cart is dropped first; bolt-backed carts reload from their record.
const DefaultMaxCarts = 10000

// Carts hands out one Cart per cart id
type Carts struct {
	carts   *lru.Cache
	persist func(id string) Persister[[]domain.CartItem]
	log     hclog.Logger
	mutex   sync.Mutex
}

// NewCarts keeps carts in memory only
func NewCarts(log hclog.Logger) *Carts {
	return newCarts(log, DefaultMaxCarts, func(string) Persister[[]domain.CartItem] {
		return NewMemoryPersister[[]domain.CartItem](nil)
	})
}

// NewBoltCarts persists each cart as record cart:<id> of db
func NewBoltCarts(db *bolt.DB, log hclog.Logger) *Carts {
	return newCarts(log, DefaultMaxCarts, func(id string) Persister[[]domain.CartItem] {
		return NewBoltPersister[[]domain.CartItem](db, "cart:"+id, CartVersion)
	})
}

func newCarts(log hclog.Logger, size int, persist func(string) Persister[[]domain.CartItem]) *Carts {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	c := &Carts{persist: persist, log: log}

	cache, err := lru.NewWithEvict(size, func(key, _ interface{}) {
		c.log.Debug("Evicted cart", "cart", key)
	})
	if err != nil {
		// only a non-positive size fails
		panic(err)
	}
	c.carts = cache
	return c
}

// NewID returns a fresh cart id
func NewID() string {
	return uuid.New().String()
}

// ValidID reports whether id can name a cart
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the cart for id, loading it from its persisted record on first
// use
func (c *Carts) Get(id string) *Cart {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if v, ok := c.carts.Get(id); ok {
		return v.(*Cart)
	}
	cart := NewCart(c.persist(id), c.log.With("cart", id))
	c.carts.Add(id, cart)
	return cart
}

// Lookup returns the cart for id when it is loaded or has persisted items.
// Unknown ids are not registered.
func (c *Carts) Lookup(id string) (*Cart, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if v, ok := c.carts.Get(id); ok {
		return v.(*Cart), true
	}
	cart := NewCart(c.persist(id), c.log.With("cart", id))
	if cart.ItemCount() == 0 {
		return nil, false
	}
	c.carts.Add(id, cart)
	return cart, true
}

// Len is the number of carts loaded in memory
func (c *Carts) Len() int {
	return c.carts.Len()
}
