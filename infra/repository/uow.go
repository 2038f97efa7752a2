package repository

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	conversionrepo "github.com/amirasaad/convlog/infra/repository/conversion"
	"github.com/amirasaad/convlog/pkg/domain"
	"github.com/amirasaad/convlog/pkg/repository"
	"github.com/amirasaad/convlog/pkg/repository/conversion"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// All repositories handed out inside Do share the transaction session.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	schema       *schemaGuard
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB. Tables are created on
// the first call to Do.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db:     db,
		schema: &schemaGuard{models: []any{&conversionrepo.Conversion{}}},
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			reflect.TypeOf((*conversion.Repository)(nil)).Elem(): func(db *gorm.DB) any {
				return conversionrepo.New(db)
			},
		},
	}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
// Errors that are not domain errors are reported as storage faults.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := u.schema.ensure(ctx, u.db); err != nil {
		return fmt.Errorf("%w: prepare schema: %w", domain.ErrStorage, err)
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, schema: u.schema, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
	return ToStorageError(err)
}

// GetRepository provides generic, type-safe access to repositories using the transaction session.
// Outside Do the repository uses the plain connection.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

// ConversionRepository returns the conversion repository bound to the current session.
func (u *UoW) ConversionRepository() (conversion.Repository, error) {
	repoAny, err := u.GetRepository(reflect.TypeOf((*conversion.Repository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	repo, ok := repoAny.(conversion.Repository)
	if !ok {
		return nil, fmt.Errorf("unexpected repository type %T", repoAny)
	}
	return repo, nil
}

// Migrate creates missing tables immediately instead of waiting for the first Do.
func (u *UoW) Migrate(ctx context.Context) error {
	return WrapError(func() error {
		return u.schema.ensure(ctx, u.db)
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// schemaGuard runs AutoMigrate once. A failed attempt is retried by the next caller.
type schemaGuard struct {
	mu     sync.Mutex
	ready  bool
	models []any
}

func (g *schemaGuard) ensure(ctx context.Context, db *gorm.DB) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ready {
		return nil
	}
	if err := db.WithContext(ctx).AutoMigrate(g.models...); err != nil {
		return err
	}
	g.ready = true
	return nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
