// Statestore holds the last known good reading per device so a process
// restart can seed the coordinator cache before the first poll completes.
// One row per device, overwritten on every successful refresh.
package statestore

import (
	"database/sql"
	"embed"
	"sync"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/pathing"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

var (
	db   *sql.DB
	once sync.Once
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// InitializeDatabase must be called manually on startup
func InitializeDatabase() {
	// Create DB before migrations
	db := GetDB()
	_, err := db.Exec("SELECT 1;")
	if err != nil {
		log.Warn().Err(err).Msg("Could not create state DB")
	}

	// Apply migrations
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)
}

func GetDB() *sql.DB {
	once.Do(func() {
		var err error
		db, err = sql.Open("sqlite", pathing.GetStateDbPath())
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open state DB")
		}
		// Verify connection
		if err = db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("Could not reach state DB")
		}
	})
	return db
}
