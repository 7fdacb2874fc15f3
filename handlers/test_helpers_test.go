package handlers

import (
	"testing"

	"obit_pipeline_go/db"
	"obit_pipeline_go/models"
	"obit_pipeline_go/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared-memory name isolates tests from each other
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(
		&models.Case{},
		&models.Contact{},
		&models.Relationship{},
	))

	// Set globals the handlers depend on
	db.DB = testDB

	engine, err := services.NewPipelineEngine(testDB)
	require.NoError(t, err)
	Engine = engine

	services.Storage = services.NewLocalStorage(t.TempDir())

	return testDB
}

func linkContact(t *testing.T, database *gorm.DB, caseID, name, stage, relation string) *models.Contact {
	contact := &models.Contact{Name: name, Status: stage}
	require.NoError(t, database.Create(contact).Error)
	require.NoError(t, database.Create(&models.Relationship{
		CaseID:       caseID,
		ContactID:    contact.ID,
		RelationType: relation,
	}).Error)
	return contact
}
