package repo

import (
	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/infra"
)

// PostgresStore bundles the Postgres repositories into a domain.Store.
type PostgresStore struct {
	*UserRepositoryPG
	*SettingsRepositoryPG
	*ImageRepositoryPG
}

func NewPostgresStore(sql infra.SQLExecutor) *PostgresStore {
	return &PostgresStore{
		UserRepositoryPG:     NewUserRepository(sql),
		SettingsRepositoryPG: NewSettingsRepository(sql),
		ImageRepositoryPG:    NewImageRepository(sql),
	}
}

var _ domain.Store = (*PostgresStore)(nil)
