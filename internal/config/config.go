// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"github.com/kahvecikaan/catalog-admin/internal/backend"
	"github.com/kahvecikaan/catalog-admin/internal/catalog"
	"github.com/nicholasjackson/env"
	"strconv"
	"strings"
)

// Backend kinds
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Storage kinds
const (
	StorageREST  = "rest"
	StorageLocal = "local"
)

// Environment variables
var (
	bindAddress = env.String("BIND_ADDRESS", false,
		":9090", "Bind address for the server")
	logLevel = env.String("LOG_LEVEL", false,
		"debug", "Log output level for the server [debug, info, trace]")

	backendKind = env.String("BACKEND", false,
		BackendMemory, "Where products are stored [rest, postgres, sqlite, memory]")
	backendURL = env.String("BACKEND_URL", false,
		"", "Base URL of the hosted backend, e.g. https://project.example.co")
	backendKey = env.String("BACKEND_KEY", false,
		"", "API key of the hosted backend")
	databaseDSN = env.String("DATABASE_DSN", false,
		"", "Connection string for the postgres and sqlite backends")
	productsTable = env.String("PRODUCTS_TABLE", false,
		backend.DefaultTable, "Name of the products collection")

	storageKind = env.String("STORAGE", false,
		StorageLocal, "Where product images are stored [rest, local]")
	storageBucket = env.String("STORAGE_BUCKET", false,
		backend.DefaultBucket, "Bucket of the hosted object storage")
	storagePath = env.String("STORAGE_PATH", false,
		"./imagestore", "Base path for locally stored images")
	publicBaseURL = env.String("PUBLIC_BASE_URL", false,
		"http://localhost:9090/images", "URL prefix locally stored images are served from")
	maxImageSize = env.String("MAX_IMAGE_SIZE", false,
		"5242880", "Maximum size of an uploaded image in bytes")

	editStrategy = env.String("EDIT_STRATEGY", false,
		string(catalog.EditForm), "How products are edited [form, prompt]")
	confirmStrategy = env.String("CONFIRM_STRATEGY", false,
		string(catalog.ConfirmModal), "How deletes are confirmed [modal, native]")
	reconcile = env.String("RECONCILE", false,
		string(catalog.ReconcileMixed), "How the list is refreshed after a change [mixed, refetch]")

	amqpURL = env.String("AMQP_URL", false,
		"", "RabbitMQ URL product events are forwarded to, disabled when empty")
	amqpExchange = env.String("AMQP_EXCHANGE", false,
		"catalog.events", "Exchange product events are published on")

	corsOrigins = env.String("CORS_ORIGINS", false,
		"http://localhost:3000", "Comma separated list of allowed origins")
)

// Config is the validated server configuration
type Config struct {
	BindAddress string
	LogLevel    string

	Backend       string
	BackendURL    string
	BackendKey    string
	DatabaseDSN   string
	ProductsTable string

	Storage       string
	StorageBucket string
	StoragePath   string
	PublicBaseURL string
	MaxImageSize  int64

	EditStrategy    catalog.EditStrategy
	ConfirmStrategy catalog.ConfirmStrategy
	Reconcile       catalog.Reconcile

	AMQPURL      string
	AMQPExchange string

	CORSOrigins []string
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	if err := env.Parse(); err != nil {
		return nil, fmt.Errorf("unable to parse environment: %w", err)
	}

	size, err := strconv.ParseInt(strings.TrimSpace(*maxImageSize), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("MAX_IMAGE_SIZE: %w", err)
	}

	c := &Config{
		BindAddress:     *bindAddress,
		LogLevel:        *logLevel,
		Backend:         strings.ToLower(*backendKind),
		BackendURL:      strings.TrimRight(*backendURL, "/"),
		BackendKey:      *backendKey,
		DatabaseDSN:     *databaseDSN,
		ProductsTable:   *productsTable,
		Storage:         strings.ToLower(*storageKind),
		StorageBucket:   *storageBucket,
		StoragePath:     *storagePath,
		PublicBaseURL:   strings.TrimRight(*publicBaseURL, "/"),
		MaxImageSize:    size,
		EditStrategy:    catalog.EditStrategy(strings.ToLower(*editStrategy)),
		ConfirmStrategy: catalog.ConfirmStrategy(strings.ToLower(*confirmStrategy)),
		Reconcile:       catalog.Reconcile(strings.ToLower(*reconcile)),
		AMQPURL:         *amqpURL,
		AMQPExchange:    *amqpExchange,
		CORSOrigins:     splitList(*corsOrigins),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the selected backends have what they need
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendREST:
		if c.BackendURL == "" || c.BackendKey == "" {
			errs = append(errs, errors.New("BACKEND=rest needs BACKEND_URL and BACKEND_KEY"))
		}
	case BackendPostgres, BackendSQLite:
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("BACKEND=%s needs DATABASE_DSN", c.Backend))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown BACKEND %q", c.Backend))
	}

	switch c.Storage {
	case StorageREST:
		if c.BackendURL == "" || c.BackendKey == "" {
			errs = append(errs, errors.New("STORAGE=rest needs BACKEND_URL and BACKEND_KEY"))
		}
	case StorageLocal:
		if c.StoragePath == "" {
			errs = append(errs, errors.New("STORAGE=local needs STORAGE_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE %q", c.Storage))
	}

	if c.MaxImageSize <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_SIZE must be positive"))
	}

	switch c.EditStrategy {
	case catalog.EditForm, catalog.EditPrompt:
	default:
		errs = append(errs, fmt.Errorf("unknown EDIT_STRATEGY %q", c.EditStrategy))
	}
	switch c.ConfirmStrategy {
	case catalog.ConfirmModal, catalog.ConfirmNative:
	default:
		errs = append(errs, fmt.Errorf("unknown CONFIRM_STRATEGY %q", c.ConfirmStrategy))
	}
	switch c.Reconcile {
	case catalog.ReconcileMixed, catalog.ReconcileRefetch:
	default:
		errs = append(errs, fmt.Errorf("unknown RECONCILE %q", c.Reconcile))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
