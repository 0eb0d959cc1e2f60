package engine

import (
	"database/sql"

	"github.com/robert-crandall/journal-app-sub006/internal/storage"
)

type Service struct {
	db     *sql.DB
	stats  *storage.StatRepo
	grants *storage.GrantRepo
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:     db,
		stats:  storage.NewStatRepo(db),
		grants: storage.NewGrantRepo(db),
	}
}

func (s *Service) StatRepo() *storage.StatRepo   { return s.stats }
func (s *Service) GrantRepo() *storage.GrantRepo { return s.grants }
