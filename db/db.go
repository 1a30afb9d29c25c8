package db

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

const connectAttempts = 3

// Connect opens the postgres pool and verifies it with a ping, retrying a
// few times so a restarting database does not kill the service on boot.
func Connect(databaseURL string) (*sql.DB, error) {
	var (
		database *sql.DB
		err      error
	)

	for i := 0; i < connectAttempts; i++ {
		log.Printf("🔄 Database connection attempt %d/%d...", i+1, connectAttempts)
		if database, err = open(databaseURL); err == nil {
			log.Printf("✅ Successfully connected to database!")
			return database, nil
		}
		log.Printf("❌ Connection attempt %d failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}

	return nil, err
}

func open(databaseURL string) (*sql.DB, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	if err = database.Ping(); err != nil {
		return nil, err
	}

	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(25)
	database.SetConnMaxLifetime(5 * time.Minute)

	log.Printf("⚙️ Database connection pool configured (max: 25 connections)")
	return database, nil
}
