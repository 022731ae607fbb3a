package service

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// DatabaseDialect provides database-specific SQL syntax
type DatabaseDialect interface {
	// InsertIgnoreSQL skips the rows that collide with an existing primary key
	InsertIgnoreSQL(tableName, insertClause, valuesClause string) string

	PriceBarsSchema(tableName string) string

	EscapeColumnName(name string) string

	ConfigurePlaceholder(builder sq.SelectBuilder) sq.SelectBuilder
}

// GetDialect returns the appropriate dialect for the given driver name
func GetDialect(driverName string) DatabaseDialect {
	switch driverName {
	case "mysql":
		return &MySQLDialect{}
	case "postgres":
		return &PostgreSQLDialect{}
	case "sqlite3":
		return &SQLiteDialect{}
	default:
		return &SQLiteDialect{} // default fallback
	}
}

// MySQLDialect implements MySQL-specific SQL syntax
type MySQLDialect struct{}

func (d *MySQLDialect) InsertIgnoreSQL(tableName, insertClause, valuesClause string) string {
	return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)", tableName, insertClause, valuesClause)
}

func (d *MySQLDialect) PriceBarsSchema(tableName string) string {
	return "CREATE TABLE IF NOT EXISTS `" + tableName + "` (" +
		"`symbol` VARCHAR(16) NOT NULL, " +
		"`time` DATETIME NOT NULL, " +
		"`open` DOUBLE NOT NULL, " +
		"`high` DOUBLE NOT NULL, " +
		"`low` DOUBLE NOT NULL, " +
		"`close` DOUBLE NOT NULL, " +
		"`volume` DOUBLE NOT NULL DEFAULT 0, " +
		"PRIMARY KEY (`symbol`, `time`))"
}

func (d *MySQLDialect) EscapeColumnName(name string) string {
	return "`" + name + "`"
}

func (d *MySQLDialect) ConfigurePlaceholder(builder sq.SelectBuilder) sq.SelectBuilder {
	// MySQL uses default placeholder format (?)
	return builder
}

// PostgreSQLDialect implements PostgreSQL-specific SQL syntax
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) InsertIgnoreSQL(tableName, insertClause, valuesClause string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING", tableName, insertClause, valuesClause)
}

func (d *PostgreSQLDialect) PriceBarsSchema(tableName string) string {
	return `CREATE TABLE IF NOT EXISTS "` + tableName + `" (` +
		`"symbol" VARCHAR(16) NOT NULL, ` +
		`"time" TIMESTAMP NOT NULL, ` +
		`"open" DOUBLE PRECISION NOT NULL, ` +
		`"high" DOUBLE PRECISION NOT NULL, ` +
		`"low" DOUBLE PRECISION NOT NULL, ` +
		`"close" DOUBLE PRECISION NOT NULL, ` +
		`"volume" DOUBLE PRECISION NOT NULL DEFAULT 0, ` +
		`PRIMARY KEY ("symbol", "time"))`
}

func (d *PostgreSQLDialect) EscapeColumnName(name string) string {
	return `"` + name + `"`
}

func (d *PostgreSQLDialect) ConfigurePlaceholder(builder sq.SelectBuilder) sq.SelectBuilder {
	// PostgreSQL uses dollar placeholder format ($1, $2, etc.)
	return builder.PlaceholderFormat(sq.Dollar)
}

// SQLiteDialect implements SQLite-specific SQL syntax
type SQLiteDialect struct{}

func (d *SQLiteDialect) InsertIgnoreSQL(tableName, insertClause, valuesClause string) string {
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", tableName, insertClause, valuesClause)
}

func (d *SQLiteDialect) PriceBarsSchema(tableName string) string {
	return "CREATE TABLE IF NOT EXISTS `" + tableName + "` (" +
		"`symbol` VARCHAR(16) NOT NULL, " +
		"`time` DATETIME NOT NULL, " +
		"`open` REAL NOT NULL, " +
		"`high` REAL NOT NULL, " +
		"`low` REAL NOT NULL, " +
		"`close` REAL NOT NULL, " +
		"`volume` REAL NOT NULL DEFAULT 0, " +
		"PRIMARY KEY (`symbol`, `time`))"
}

func (d *SQLiteDialect) EscapeColumnName(name string) string {
	return "`" + name + "`"
}

func (d *SQLiteDialect) ConfigurePlaceholder(builder sq.SelectBuilder) sq.SelectBuilder {
	// SQLite uses default placeholder format (?)
	return builder
}
