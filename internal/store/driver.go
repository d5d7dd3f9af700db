package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteMemoryDSN = ":memory:"

type dialect struct {
	open func(dsn string) gorm.Dialector
	// tune adjusts the connection pool after the database is opened.
	tune func(db *gorm.DB, dsn string) error
}

var dialects = map[string]dialect{
	"sqlite":   {open: sqlite.Open, tune: tuneSQLite},
	"postgres": {open: postgres.Open},
}

// GetDialector returns a GORM dialector for driver ("sqlite" or "postgres").
func GetDialector(driver, dsn string) (gorm.Dialector, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return d.open(dsn), nil
}

func openDB(driver, dsn string) (*gorm.DB, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if tune := dialects[driver].tune; tune != nil {
		if err := tune(db, dsn); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// tuneSQLite pins :memory: databases to one connection; every new connection
// would otherwise see an empty database.
func tuneSQLite(db *gorm.DB, dsn string) error {
	if dsn != sqliteMemoryDSN {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}
