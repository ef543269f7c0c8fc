// Package testdb provides a throwaway PostgreSQL database for package tests.
package testdb

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Simonwafula/personal-finance-app/models"
)

var (
	once    sync.Once
	shared  *gorm.DB
	openErr error
)

// Open returns a migrated, empty database. The container is started once per test binary;
// tests are skipped when Docker is not available. Setting TEST_DB_DSN uses an existing server instead.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	once.Do(func() {
		dsn := os.Getenv("TEST_DB_DSN")
		if dsn == "" {
			dsn, openErr = startContainer()
			if openErr != nil {
				return
			}
		}
		shared, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if openErr != nil {
			return
		}
		openErr = shared.AutoMigrate(models.All()...)
	})

	if openErr != nil {
		t.Skipf("postgres not available: %v", openErr)
	}
	truncate(t, shared)
	return shared
}

func startContainer() (string, error) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "finance",
			"POSTGRES_PASSWORD": "finance",
			"POSTGRES_DB":       "finance",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return "", fmt.Errorf("get postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		container.Terminate(ctx)
		return "", fmt.Errorf("get postgres port: %w", err)
	}
	return fmt.Sprintf("host=%s port=%s user=finance password=finance dbname=finance sslmode=disable", host, port.Port()), nil
}

func truncate(t *testing.T, db *gorm.DB) {
	t.Helper()
	var tables []string
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			t.Fatalf("parse model: %v", err)
		}
		tables = append(tables, stmt.Schema.Table)
	}
	if err := db.Exec("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// User inserts a user with password "secret".
func User(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Username: username, HashedPassword: hash}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Account inserts an active account with a zero opening balance.
func Account(t *testing.T, db *gorm.DB, userID uint, name string) models.Account {
	t.Helper()
	a := models.Account{UserID: userID, Name: name, Status: models.AccountActive, OpeningBalance: decimal.Zero}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

// Category inserts an expense or income category.
func Category(t *testing.T, db *gorm.DB, userID uint, name, kind string) models.Category {
	t.Helper()
	c := models.Category{UserID: userID, Name: name, Kind: kind}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}
