package services

import (
	"testing"

	"claims_crm_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with every table and the
// default statuses.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(models.All()...))
	require.NoError(t, SeedStatuses(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func createTestClient(t *testing.T, db *gorm.DB, number int, name string) *models.Client {
	t.Helper()
	client, err := CreateClient(db, ClientInput{ClientNumber: FlexInt(number), FullName: name})
	require.NoError(t, err)
	return client
}

func createTestPractice(t *testing.T, db *gorm.DB, clientID, contract string) *models.Practice {
	t.Helper()
	practice, err := CreatePractice(db, PracticeInput{ClientID: clientID, ContractNumber: contract})
	require.NoError(t, err)
	return practice
}

func createTestBank(t *testing.T, db *gorm.DB, name string) *models.Bank {
	t.Helper()
	bank := &models.Bank{Name: name}
	require.NoError(t, db.Create(bank).Error)
	return bank
}

func statusByName(t *testing.T, db *gorm.DB, name string) *models.Status {
	t.Helper()
	var status models.Status
	require.NoError(t, db.Where("name = ?", name).First(&status).Error)
	return &status
}

// provisionTestClient creates a client with a tax code and portal password
func provisionTestClient(t *testing.T, db *gorm.DB, number int, name, taxCode string) (*models.Client, string) {
	t.Helper()
	client, err := CreateClient(db, ClientInput{ClientNumber: FlexInt(number), FullName: name, TaxCode: &taxCode})
	require.NoError(t, err)
	client, password, err := ProvisionClientAccess(db, client.ID)
	require.NoError(t, err)
	return client, password
}

func strPtr(s string) *string {
	return &s
}
