package postgres

import (
	"testing"

	"github.com/andresuchdata/bookstock-insights/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDriverName(t *testing.T) {
	assert.Equal(t, "pgx", driverName("pgx"))
	assert.Equal(t, "postgres", driverName("postgres"))
	assert.Equal(t, "postgres", driverName(""))
}

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "db",
		Port:     "5433",
		User:     "app",
		Password: "secret",
		DBName:   "bookstock",
		SSLMode:  "require",
	}

	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=bookstock sslmode=require", dsn(cfg))
}

func TestMaxConcurrent(t *testing.T) {
	assert.EqualValues(t, 10, maxConcurrent(0))
	assert.EqualValues(t, 3, maxConcurrent(3))
}

func TestSchemaCoversAuditTables(t *testing.T) {
	joined := ""
	for _, stmt := range schema {
		joined += stmt
	}
	assert.Contains(t, joined, "order_approvals")
	assert.Contains(t, joined, "quantity_changes")
}
