package app

import (
	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	"github.com/yungbote/tutor-backend/internal/data/repos"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// Repos pairs the store set with the transaction boundary it supports.
type Repos struct {
	Set    repos.Set
	Runner aggregates.TxRunner
}

func wireRepos(log *logger.Logger, clients Clients) Repos {
	log.Info("Wiring repos...")
	if clients.Mongo != nil {
		return Repos{
			Set:    repos.NewMongoSet(clients.Mongo.Database(), log),
			Runner: aggregates.NoopTxRunner{},
		}
	}
	gdb := clients.DB.DB()
	return Repos{
		Set:    repos.NewGormSet(gdb, log),
		Runner: aggregates.NewGormTxRunner(gdb),
	}
}
