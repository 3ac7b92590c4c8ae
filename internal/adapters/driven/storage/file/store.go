package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
	"github.com/custodia-labs/stockwatch/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.LedgerStore   = (*Store)(nil)
	_ driven.LedgerLocker  = (*Store)(nil)
	_ driven.LedgerWatcher = (*Store)(nil)
)

// DefaultStaleLockAge is how old a lock file must be before it is broken.
const DefaultStaleLockAge = 2 * time.Hour

// Store is a JSON file ledger store.
type Store struct {
	path         string
	baseURL      string
	staleLockAge time.Duration
	now          func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBaseURL resolves host-less product URLs against base when deriving keys.
func WithBaseURL(base string) Option {
	return func(s *Store) { s.baseURL = base }
}

// WithStaleLockAge overrides DefaultStaleLockAge. Zero never breaks a lock.
func WithStaleLockAge(age time.Duration) Option {
	return func(s *Store) { s.staleLockAge = age }
}

// NewStore creates a store for the ledger at path.
// The parent directory is created if it does not exist.
func NewStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: ledger path is empty", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	s := &Store{
		path:         path,
		staleLockAge: DefaultStaleLockAge,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the ledger.
func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrStoreUnavailable, domain.ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read ledger: %w", domain.ErrStoreUnavailable, err)
	}

	products, err := decodeLedger(data)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt ledger %s: %w", domain.ErrStoreUnavailable, s.path, err)
	}

	// Duplicate keys make the ledger unusable for reconciliation.
	if _, err := domain.NewLedger(products, s.Normalize); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	logger.Debug("ledger: loaded %d products from %s", len(products), s.path)
	return products, nil
}

// Save publishes products as the new ledger.
// The document is written to a temp file in the ledger directory, synced,
// then renamed over the ledger.
func (s *Store) Save(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	data, err := encodeLedger(products)
	if err != nil {
		return fmt.Errorf("%w: encode ledger: %w", domain.ErrStoreUnavailable, err)
	}

	if err := s.publish(data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	logger.Debug("ledger: saved %d products to %s", len(products), s.path)
	return nil
}

func (s *Store) publish(data []byte) (err error) {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp ledger: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("publish ledger: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir flushes the rename to disk where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		logger.Debug("ledger: directory sync skipped: %v", err)
	}
}

// Normalize derives the ledger key for rawURL.
func (s *Store) Normalize(rawURL string) string {
	if s.baseURL != "" {
		return domain.NormalizeURL(domain.ResolveURL(s.baseURL, rawURL))
	}
	return domain.NormalizeURL(rawURL)
}
