package repository_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/convlog/infra"
	infrarepo "github.com/amirasaad/convlog/infra/repository"
	"github.com/amirasaad/convlog/pkg/domain"
	"github.com/amirasaad/convlog/pkg/repository"
	"github.com/amirasaad/convlog/pkg/repository/conversion"
	"github.com/amirasaad/convlog/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUoW_DoAndGetRepository(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testutils.NewSQLiteDB(t))

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		repoAny, err := txUow.GetRepository(reflect.TypeOf((*conversion.Repository)(nil)).Elem())
		require.NoError(t, err)
		_, ok := repoAny.(conversion.Repository)
		assert.True(t, ok)

		repo, err := txUow.ConversionRepository()
		require.NoError(t, err)
		assert.NotNil(t, repo)
		return nil
	})
	require.NoError(t, err)
}

func TestUoW_GetRepository_Unsupported(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testutils.NewSQLiteDB(t))

	_, err := uow.GetRepository(reflect.TypeOf(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported repository type")
}

func TestUoW_CreatesTableLazily(t *testing.T) {
	t.Parallel()
	db := testutils.NewSQLiteDB(t)
	uow := infrarepo.NewUoW(db)

	assert.False(t, db.Migrator().HasTable("conversions"))

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		repo, err := txUow.ConversionRepository()
		if err != nil {
			return err
		}
		_, err = repo.Count(context.Background())
		return err
	})
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("conversions"))
}

func TestUoW_RollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uow := infrarepo.NewUoW(testutils.NewSQLiteDB(t))
	boom := errors.New("boom")

	err := uow.Do(ctx, func(txUow repository.UnitOfWork) error {
		repo, err := txUow.ConversionRepository()
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, testutils.NewRecord(t, "rolled-back", fixedTime(0)))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, domain.ErrStorage)

	repo, err := uow.ConversionRepository()
	require.NoError(t, err)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUoW_DomainErrorsAreNotStorageFaults(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testutils.NewSQLiteDB(t))

	err := uow.Do(context.Background(), func(repository.UnitOfWork) error {
		return domain.ErrValidation
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrStorage)
}

func TestUoW_ClosedDatabaseIsStorageFault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewSQLiteDB(t)
	uow := infrarepo.NewUoW(db)
	require.NoError(t, uow.Migrate(ctx))
	require.NoError(t, infra.CloseDB(db))

	err := uow.Do(ctx, func(repository.UnitOfWork) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestUoW_SchemaFailureIsStorageFault(t *testing.T) {
	t.Parallel()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDb.Close() //nolint:errcheck

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectQuery(".+").WillReturnError(errors.New("connection refused"))

	uow := infrarepo.NewUoW(db)
	err = uow.Do(context.Background(), func(repository.UnitOfWork) error {
		t.Fatal("callback must not run without a schema")
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "prepare schema")
}

func fixedTime(offsetSeconds int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offsetSeconds) * time.Second)
}
