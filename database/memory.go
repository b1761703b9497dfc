package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

// MemoryStore keeps every collection in process memory. It backs tests and
// STORAGE=memory; a transaction holds the write lock for its whole run and
// restores a snapshot if fn fails.
type MemoryStore struct {
	mu        sync.RWMutex
	products  map[primitive.ObjectID]models.Product
	orders    map[primitive.ObjectID]models.Order
	carts     map[primitive.ObjectID]models.Cart
	wishlists map[primitive.ObjectID]models.Wishlist
	users     map[primitive.ObjectID]models.User
	revoked   map[string]time.Time
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[primitive.ObjectID]models.Product),
		orders:    make(map[primitive.ObjectID]models.Order),
		carts:     make(map[primitive.ObjectID]models.Cart),
		wishlists: make(map[primitive.ObjectID]models.Wishlist),
		users:     make(map[primitive.ObjectID]models.User),
		revoked:   make(map[string]time.Time),
		now:       time.Now,
	}
}

// Store exposes the memory collections through the repository interfaces.
func (m *MemoryStore) Store() *Store {
	return &Store{
		Products:  memProducts{m},
		Orders:    memOrders{m},
		Carts:     memCarts{m},
		Wishlists: memWishlists{m},
		Users:     memUsers{m},
		Tokens:    memBlacklist{m},
		Tx:        memTx{m},
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.RLock()
	}
}

func (m *MemoryStore) runlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *MemoryStore) wlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.Lock()
	}
}

func (m *MemoryStore) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.Unlock()
	}
}

type memSnapshot struct {
	products  map[primitive.ObjectID]models.Product
	orders    map[primitive.ObjectID]models.Order
	carts     map[primitive.ObjectID]models.Cart
	wishlists map[primitive.ObjectID]models.Wishlist
	users     map[primitive.ObjectID]models.User
	revoked   map[string]time.Time
}

// snapshot must be called with the write lock held.
func (m *MemoryStore) snapshot() memSnapshot {
	s := memSnapshot{
		products:  make(map[primitive.ObjectID]models.Product, len(m.products)),
		orders:    make(map[primitive.ObjectID]models.Order, len(m.orders)),
		carts:     make(map[primitive.ObjectID]models.Cart, len(m.carts)),
		wishlists: make(map[primitive.ObjectID]models.Wishlist, len(m.wishlists)),
		users:     make(map[primitive.ObjectID]models.User, len(m.users)),
		revoked:   make(map[string]time.Time, len(m.revoked)),
	}
	for k, v := range m.products {
		s.products[k] = copyProduct(v)
	}
	for k, v := range m.orders {
		s.orders[k] = copyOrder(v)
	}
	for k, v := range m.carts {
		s.carts[k] = copyCart(v)
	}
	for k, v := range m.wishlists {
		s.wishlists[k] = copyWishlist(v)
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.revoked {
		s.revoked[k] = v
	}
	return s
}

func (m *MemoryStore) restore(s memSnapshot) {
	m.products = s.products
	m.orders = s.orders
	m.carts = s.carts
	m.wishlists = s.wishlists
	m.users = s.users
	m.revoked = s.revoked
}

type memTx struct{ m *MemoryStore }

func (t memTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	snap := t.m.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.m.restore(snap)
		return err
	}
	return nil
}

func copyProduct(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		o.DeliveryDate = &d
	}
	return o
}

func copyCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return c
}

func copyWishlist(w models.Wishlist) models.Wishlist {
	w.Products = append([]primitive.ObjectID{}, w.Products...)
	return w
}

type memProducts struct{ m *MemoryStore }

func (r memProducts) Create(ctx context.Context, p *models.Product) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, ok := r.m.products[p.ID]; ok {
		return ErrDuplicate
	}
	r.m.products[p.ID] = copyProduct(*p)
	return nil
}

func (r memProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	p, ok := r.m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyProduct(p)
	return &cp, nil
}

func (r memProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.m.products[id]; ok {
			out[id] = copyProduct(p)
		}
	}
	return out, nil
}

func (r memProducts) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	out := []models.Product{}
	for _, p := range r.m.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r memProducts) Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (*models.Product, error) {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	p, ok := r.m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = copyProduct(p)
	u.Apply(&p)
	p.UpdatedAt = r.m.now()
	r.m.products[id] = p
	cp := copyProduct(p)
	return &cp, nil
}

func (r memProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.products, id)
	return nil
}

func (r memProducts) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int, floor bool) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	p, ok := r.m.products[id]
	if !ok {
		return ErrNotFound
	}
	if floor && p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = r.m.now()
	r.m.products[id] = p
	return nil
}

func (r memProducts) Count(ctx context.Context) (int64, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	return int64(len(r.m.products)), nil
}

type memOrders struct{ m *MemoryStore }

func (r memOrders) Create(ctx context.Context, o *models.Order) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if _, ok := r.m.orders[o.ID]; ok {
		return ErrDuplicate
	}
	r.m.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r memOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	o, ok := r.m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (r memOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	out := []models.Order{}
	for _, o := range r.m.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, deliveryDate *time.Time) (*models.Order, error) {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	o, ok := r.m.orders[id]
	if !ok || (from != "" && o.Status != from) {
		return nil, ErrNotFound
	}
	o = copyOrder(o)
	o.Status = to
	if deliveryDate != nil {
		d := *deliveryDate
		o.DeliveryDate = &d
	}
	r.m.orders[id] = o
	cp := copyOrder(o)
	return &cp, nil
}

func (r memOrders) Count(ctx context.Context, status models.OrderStatus) (int64, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	var n int64
	for _, o := range r.m.orders {
		if status == "" || o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r memOrders) Revenue(ctx context.Context) (float64, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	var total float64
	for _, o := range r.m.orders {
		if o.Status != models.StatusCancelled {
			total += o.TotalAmount
		}
	}
	return total, nil
}

type memCarts struct{ m *MemoryStore }

func (r memCarts) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	c, ok := r.m.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyCart(c)
	return &cp, nil
}

// cart must be called with the write lock held.
func (r memCarts) cart(userID primitive.ObjectID) models.Cart {
	c, ok := r.m.carts[userID]
	if !ok {
		c = models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []models.CartItem{}, UpdatedAt: r.m.now()}
		r.m.carts[userID] = c
	}
	return copyCart(c)
}

func (r memCarts) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	c := r.cart(userID)
	return &c, nil
}

func (r memCarts) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	c := r.cart(userID)
	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		c.Items = append(c.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	c.UpdatedAt = r.m.now()
	r.m.carts[userID] = c
	return nil
}

func (r memCarts) SetItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	c, ok := r.m.carts[userID]
	if !ok {
		return ErrNotFound
	}
	c = copyCart(c)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = r.m.now()
			r.m.carts[userID] = c
			return nil
		}
	}
	return ErrNotFound
}

func (r memCarts) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	c, ok := r.m.carts[userID]
	if !ok {
		return nil
	}
	items := make([]models.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	c.Items = items
	c.UpdatedAt = r.m.now()
	r.m.carts[userID] = c
	return nil
}

func (r memCarts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	c, ok := r.m.carts[userID]
	if !ok {
		return nil
	}
	c.Items = []models.CartItem{}
	c.UpdatedAt = r.m.now()
	r.m.carts[userID] = c
	return nil
}

type memWishlists struct{ m *MemoryStore }

func (r memWishlists) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	w, ok := r.m.wishlists[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyWishlist(w)
	return &cp, nil
}

// wishlist must be called with the write lock held.
func (r memWishlists) wishlist(userID primitive.ObjectID) models.Wishlist {
	w, ok := r.m.wishlists[userID]
	if !ok {
		w = models.Wishlist{ID: primitive.NewObjectID(), UserID: userID, Products: []primitive.ObjectID{}, UpdatedAt: r.m.now()}
		r.m.wishlists[userID] = w
	}
	return copyWishlist(w)
}

func (r memWishlists) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	w := r.wishlist(userID)
	return &w, nil
}

func (r memWishlists) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	w := r.wishlist(userID)
	for _, id := range w.Products {
		if id == productID {
			return nil
		}
	}
	w.Products = append(w.Products, productID)
	w.UpdatedAt = r.m.now()
	r.m.wishlists[userID] = w
	return nil
}

func (r memWishlists) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	w, ok := r.m.wishlists[userID]
	if !ok {
		return nil
	}
	products := make([]primitive.ObjectID, 0, len(w.Products))
	for _, id := range w.Products {
		if id != productID {
			products = append(products, id)
		}
	}
	w.Products = products
	w.UpdatedAt = r.m.now()
	r.m.wishlists[userID] = w
	return nil
}

type memUsers struct{ m *MemoryStore }

func (r memUsers) Create(ctx context.Context, u *models.User) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.m.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	email = strings.ToLower(email)
	for _, u := range r.m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r memUsers) List(ctx context.Context) ([]models.User, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	out := make([]models.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		u.Password = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r memUsers) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error) {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.IsBlocked = blocked
	r.m.users[id] = u
	u.Password = ""
	return &u, nil
}

func (r memUsers) CountByRole(ctx context.Context, role string) (int64, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	var n int64
	for _, u := range r.m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type memBlacklist struct{ m *MemoryStore }

func (r memBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	r.m.revoked[token] = expiresAt
	return nil
}

func (r memBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	exp, ok := r.m.revoked[token]
	if !ok {
		return false, nil
	}
	return r.m.now().Before(exp), nil
}
