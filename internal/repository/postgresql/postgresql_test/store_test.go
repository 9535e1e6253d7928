package postgresql_test

import (
	"testing"

	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository/storetest"
)

func TestStore(t *testing.T) {
	db := newTestDatabase(t)
	store := postgresql.NewStore(db)

	storetest.Run(t, func(t *testing.T) repository.Store {
		truncateAll(t, db)
		return store
	})
}
