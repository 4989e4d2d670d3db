package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/app/controllers"
	"eshop/app/models"
	"eshop/app/routes"
	"eshop/app/services"
	"eshop/pkg/router"
	"eshop/pkg/workerpool"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

// testAPI wires the full route table over in-memory stores so the
// tests exercise the real binding, routing, and rendering paths.
type testAPI struct {
	handler http.Handler
	orders  *memOrders
	items   *memItems
	users   *memUsers
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	orders := &memOrders{data: map[primitive.ObjectID]models.Order{}}
	items := &memItems{
		data:     map[primitive.ObjectID]models.OrderItem{},
		products: map[primitive.ObjectID]models.Product{},
	}
	users := &memUsers{data: map[primitive.ObjectID]models.User{}}

	pool := workerpool.New(4)
	t.Cleanup(pool.Shutdown)

	r := router.New()
	routes.RegisterAPI(r,
		controllers.NewOrderController(services.NewOrderService(orders, items, pool)),
		controllers.NewUserController(services.NewUserService(users)),
	)

	return &testAPI{handler: r.Handler(), orders: orders, items: items, users: users}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) doWithAuth(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) addProduct(name string, price float64) models.Product {
	p := models.Product{ID: primitive.NewObjectID(), Name: name, Price: price}
	a.items.mu.Lock()
	a.items.products[p.ID] = p
	a.items.mu.Unlock()
	return p
}

func (a *testAPI) addUser(t *testing.T, name, email, passwordHash string) models.User {
	t.Helper()
	u, err := a.users.Insert(context.Background(), models.User{
		Name: name, Email: email, PasswordHash: passwordHash,
	})
	require.NoError(t, err)
	return u
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ─── In-memory stores ─────────────────────────────────────────────────────────

type memOrders struct {
	mu         sync.Mutex
	data       map[primitive.ObjectID]models.Order
	failInsert bool
}

func (s *memOrders) FindAll(ctx context.Context) ([]models.OrderSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OrderSummary, 0, len(s.data))
	for _, o := range s.data {
		out = append(out, models.OrderSummary{
			ID: o.ID, Status: o.Status, TotalPrice: o.TotalPrice, DateOrdered: o.DateOrdered,
		})
	}
	return out, nil
}

func (s *memOrders) FindByID(ctx context.Context, id primitive.ObjectID) (models.OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data[id]
	if !ok {
		return models.OrderDetail{}, models.ErrNotFound
	}
	return models.OrderDetail{ID: o.ID, Status: o.Status, TotalPrice: o.TotalPrice}, nil
}

func (s *memOrders) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.OrderDetail{}
	for _, o := range s.data {
		if o.User == userID {
			out = append(out, models.OrderDetail{ID: o.ID, Status: o.Status, TotalPrice: o.TotalPrice})
		}
	}
	return out, nil
}

func (s *memOrders) Insert(ctx context.Context, order models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert {
		return models.Order{}, context.DeadlineExceeded
	}
	order.ID = primitive.NewObjectID()
	s.data[order.ID] = order
	return order, nil
}

func (s *memOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	o.Status = status
	s.data[id] = o
	return o, nil
}

func (s *memOrders) Delete(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	delete(s.data, id)
	return o, nil
}

func (s *memOrders) TotalSales(ctx context.Context) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) == 0 {
		return 0, false, nil
	}
	var total float64
	for _, o := range s.data {
		total += o.TotalPrice
	}
	return total, true, nil
}

func (s *memOrders) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data)), nil
}

type memItems struct {
	mu       sync.Mutex
	data     map[primitive.ObjectID]models.OrderItem
	products map[primitive.ObjectID]models.Product
}

func (s *memItems) Insert(ctx context.Context, item models.OrderItem) (models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = primitive.NewObjectID()
	s.data[item.ID] = item
	return item, nil
}

func (s *memItems) FindWithProduct(ctx context.Context, id primitive.ObjectID) (models.PopulatedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.data[id]
	if !ok {
		return models.PopulatedItem{}, models.ErrNotFound
	}
	p, ok := s.products[item.Product]
	if !ok {
		return models.PopulatedItem{}, models.ErrNotFound
	}
	return models.PopulatedItem{ID: item.ID, Quantity: item.Quantity, Product: p}, nil
}

func (s *memItems) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	data map[primitive.ObjectID]models.User
}

func (s *memUsers) FindAll(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.data))
	for _, u := range s.data {
		out = append(out, u)
	}
	return out, nil
}

func (s *memUsers) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (s *memUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (s *memUsers) Insert(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	s.data[user.ID] = user
	return user, nil
}

func (s *memUsers) Update(ctx context.Context, id primitive.ObjectID, name, email, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	u.Name = name
	u.Email = email
	u.PasswordHash = passwordHash
	s.data[id] = u
	return u, nil
}

func (s *memUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *memUsers) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data)), nil
}
