package catalog

import (
	"context"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/backend"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/kahvecikaan/catalog-admin/internal/events"
	"github.com/kahvecikaan/catalog-admin/internal/notify"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of backend.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *MockBackend) Insert(ctx context.Context, fields domain.Fields) (int, error) {
	args := m.Called(ctx, fields)
	return args.Int(0), args.Error(1)
}

func (m *MockBackend) Update(ctx context.Context, id int, fields domain.Fields) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockBackend) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockObjectStore is a mock implementation of backend.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, key string, body io.Reader, opts backend.UploadOptions) (string, error) {
	args := m.Called(ctx, key, body, opts)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) PublicURL(path string) string {
	args := m.Called(path)
	return args.String(0)
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

// newTestToaster never dismisses on its own, so tests can read the last toast
func newTestToaster() *notify.Toaster {
	return notify.NewToaster(nil, notify.WithAfterFunc(func(time.Duration, func()) notify.Timer {
		return noopTimer{}
	}))
}

func newTestWorkflow(b backend.Backend, objects backend.ObjectStore, opts ...Option) (*Workflow, *notify.Toaster) {
	toaster := newTestToaster()
	opts = append([]Option{
		WithBus(events.NewEventBus[any]()),
		WithKeyFunc(func(filename string) string { return "product-test-" + filename }),
	}, opts...)
	return NewWorkflow(b, objects, toaster, hclog.NewNullLogger(), opts...), toaster
}

func ptr(s string) *string { return &s }
