package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskhub/backend/internal/audit"
	"taskhub/backend/internal/models"
)

type AuditTestSuite struct {
	suite.Suite
	db     *gorm.DB
	writer *audit.Writer
	reader *audit.Reader
}

func (suite *AuditTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(&models.AuditLog{}))

	suite.db = db
	suite.writer = audit.NewWriter()
	suite.reader = audit.NewReader(db)
}

func (suite *AuditTestSuite) TestRecordCommitsWithTransaction() {
	entityID := uuid.Must(uuid.NewV4())
	actorID := uuid.Must(uuid.NewV4())

	err := suite.db.Transaction(func(tx *gorm.DB) error {
		return suite.writer.Record(tx, models.EntityTask, entityID, models.AuditCreate, actorID, map[string]interface{}{
			"title": "write docs",
		})
	})
	suite.Require().NoError(err)

	var entry models.AuditLog
	suite.Require().NoError(suite.db.First(&entry, "entity_id = ?", entityID).Error)
	suite.Equal(models.EntityTask, entry.EntityType)
	suite.Equal(models.AuditCreate, entry.Action)
	suite.Equal(actorID, entry.ActorID)

	var details map[string]interface{}
	suite.Require().NoError(json.Unmarshal(entry.Details, &details))
	suite.Equal("write docs", details["title"])
}

func (suite *AuditTestSuite) TestRecordRollsBackWithTransaction() {
	entityID := uuid.Must(uuid.NewV4())
	actorID := uuid.Must(uuid.NewV4())

	boom := suite.db.Transaction(func(tx *gorm.DB) error {
		if err := suite.writer.Record(tx, models.EntityTask, entityID, models.AuditCreate, actorID, map[string]string{"title": "x"}); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	suite.Error(boom)

	var count int64
	suite.db.Model(&models.AuditLog{}).Where("entity_id = ?", entityID).Count(&count)
	suite.EqualValues(0, count)
}

func (suite *AuditTestSuite) TestEntityHistoryNewestFirstAndPaged() {
	entityID := uuid.Must(uuid.NewV4())
	actorID := uuid.Must(uuid.NewV4())

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		entry := models.AuditLog{
			ID:         uuid.Must(uuid.NewV4()),
			EntityType: models.EntityTask,
			EntityID:   entityID,
			Action:     models.AuditUpdate,
			ActorID:    actorID,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Details:    []byte(`{}`),
		}
		suite.Require().NoError(suite.db.Create(&entry).Error)
	}

	// Noise for another entity must not leak in.
	other := models.AuditLog{
		ID:         uuid.Must(uuid.NewV4()),
		EntityType: models.EntityProject,
		EntityID:   uuid.Must(uuid.NewV4()),
		Action:     models.AuditCreate,
		ActorID:    actorID,
		Timestamp:  base,
		Details:    []byte(`{}`),
	}
	suite.Require().NoError(suite.db.Create(&other).Error)

	entries, total, err := suite.reader.EntityHistory(context.Background(), models.EntityTask, entityID, 1, 3)
	suite.Require().NoError(err)
	suite.EqualValues(5, total)
	suite.Require().Len(entries, 3)

	for i := 1; i < len(entries); i++ {
		suite.True(entries[i-1].Timestamp.After(entries[i].Timestamp) ||
			entries[i-1].Timestamp.Equal(entries[i].Timestamp))
	}

	page2, _, err := suite.reader.EntityHistory(context.Background(), models.EntityTask, entityID, 2, 3)
	suite.Require().NoError(err)
	suite.Len(page2, 2)
}

func TestAuditTestSuite(t *testing.T) {
	suite.Run(t, new(AuditTestSuite))
}
