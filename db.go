// db.go
package main

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"absopds/abs"
)

// openCacheDB открывает базу кэша записей и создает ее схему
func openCacheDB(rootPath string) (*sql.DB, error) {
	dbPath := filepath.Join(rootPath, "absopds.db")

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД %s: %w", dbPath, err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД %s: %w", dbPath, err)
	}

	if err = abs.EnsureCacheSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("База данных кэша открыта", "path", dbPath)
	return db, nil
}
