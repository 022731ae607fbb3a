package service

import (
	"context"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type DatabaseService struct {
	Driver string
	DSN    string
	DB     *sqlx.DB
}

func NewDatabaseService(driver, dsn string) *DatabaseService {
	if driver == "mysql" {
		var err error
		dsn, err = ReformatMysqlDSN(dsn)
		if err != nil {
			// incorrect mysql dsn is logical exception
			panic(err)
		}
	}

	return &DatabaseService{
		Driver: driver,
		DSN:    dsn,
	}
}

func (s *DatabaseService) Connect() error {
	var err error
	s.DB, err = sqlx.Connect(s.Driver, s.DSN)
	if err != nil {
		return errors.Wrapf(err, "unable to connect %s database", s.Driver)
	}

	if s.Driver == "sqlite3" {
		// sqlite allows a single writer, and every connection of an in-memory database is a new database
		s.DB.SetMaxOpenConns(1)
		_, _ = s.DB.Exec("PRAGMA journal_mode = WAL")
		_, _ = s.DB.Exec("PRAGMA synchronous = NORMAL")
	}

	return nil
}

func (s *DatabaseService) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Upgrade creates the missing tables.
func (s *DatabaseService) Upgrade(ctx context.Context) error {
	return (&PriceService{DB: s.DB}).Migrate(ctx)
}

func ReformatMysqlDSN(dsn string) (string, error) {
	config, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}

	config.ParseTime = true
	dsn = config.FormatDSN()
	return dsn, nil
}
