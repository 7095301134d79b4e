package backend

import (
	"context"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"sort"
	"sync"
)

// Memory is an in-process Backend. Rows are kept ordered by id and ids are
// never reused.
type Memory struct {
	products []domain.Product
	nextID   int
	failures []error
	calls    map[string]int
	mutex    sync.RWMutex
}

func NewMemory(seed ...domain.Product) *Memory {
	m := &Memory{
		nextID: 1,
		calls:  make(map[string]int),
	}
	for _, p := range seed {
		m.products = append(m.products, p)
		if p.ID >= m.nextID {
			m.nextID = p.ID + 1
		}
	}
	sort.Slice(m.products, func(i, j int) bool { return m.products[i].ID < m.products[j].ID })
	return m
}

// FailNext makes the next call, whatever the operation, return err
func (m *Memory) FailNext(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failures = append(m.failures, err)
}

// Calls returns how many times op ("list", "insert", "update", "delete") was called
func (m *Memory) Calls(op string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[op]
}

// begin records the call and pops an injected failure. Callers hold the lock.
func (m *Memory) begin(op string) error {
	m.calls[op]++
	if len(m.failures) == 0 {
		return nil
	}
	err := m.failures[0]
	m.failures = m.failures[1:]
	return err
}

func (m *Memory) List(ctx context.Context) ([]domain.Product, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.begin("list"); err != nil {
		return nil, err
	}

	out := make([]domain.Product, len(m.products))
	for i, p := range m.products {
		out[i] = clone(p)
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, fields domain.Fields) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.begin("insert"); err != nil {
		return 0, err
	}

	p := domain.Product{ID: m.nextID}
	p.Apply(fields)
	m.nextID++
	m.products = append(m.products, p)
	return p.ID, nil
}

func (m *Memory) Update(ctx context.Context, id int, fields domain.Fields) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.begin("update"); err != nil {
		return err
	}

	for i := range m.products {
		if m.products[i].ID == id {
			m.products[i].Apply(fields)
			return nil
		}
	}

	// like the hosted service, no matching row is not an error
	return nil
}

func (m *Memory) Delete(ctx context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.begin("delete"); err != nil {
		return err
	}

	for i, product := range m.products {
		if product.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}

	return nil
}

func clone(p domain.Product) domain.Product {
	if p.ImageURL != nil {
		u := *p.ImageURL
		p.ImageURL = &u
	}
	return p
}
