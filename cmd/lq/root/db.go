package root

import (
	"context"

	"github.com/robert-crandall/journal-app-sub006/internal/config"
	"github.com/robert-crandall/journal-app-sub006/internal/engine"
	"github.com/robert-crandall/journal-app-sub006/internal/storage"
)

func openService(ctx context.Context) (*engine.Service, string, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", nil, err
	}
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, "", nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return engine.NewService(db), cfg.UserID, cleanup, nil
}
