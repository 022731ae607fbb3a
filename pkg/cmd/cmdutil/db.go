package cmdutil

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/c9s/pythia/pkg/config"
	"github.com/c9s/pythia/pkg/service"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ConnectDatabase opens the price history database and creates its tables.
func ConnectDatabase(ctx context.Context, conf *config.Database) (*service.DatabaseService, error) {
	db := service.NewDatabaseService(conf.Driver, conf.DSN)
	if err := db.Connect(); err != nil {
		return nil, err
	}

	if err := db.Upgrade(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Infof("connected to the %s price history database", conf.Driver)
	return db, nil
}
