package services_test

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskhub/backend/internal/models"
)

type requirer interface {
	Require() *require.Assertions
}

func openTestDB(t requirer) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	t.Require().NoError(err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.AuditLog{},
	)
	t.Require().NoError(err)

	return db
}

func createUser(t requirer, db *gorm.DB, role models.GlobalRole) models.User {
	id := uuid.Must(uuid.NewV4())
	user := models.User{
		ID:           id,
		Email:        id.String() + "@example.com",
		Name:         "User " + id.String()[:8],
		PasswordHash: "x",
		Role:         role,
	}
	t.Require().NoError(db.Create(&user).Error)
	return user
}

func createProject(t requirer, db *gorm.DB, name string) models.Project {
	project := models.Project{
		ID:          uuid.Must(uuid.NewV4()),
		Name:        name,
		Description: "test project",
	}
	t.Require().NoError(db.Create(&project).Error)
	return project
}

func addMember(t requirer, db *gorm.DB, projectID, userID uuid.UUID, role models.ProjectRole) models.ProjectMember {
	member := models.ProjectMember{
		ID:          uuid.Must(uuid.NewV4()),
		ProjectID:   projectID,
		UserID:      userID,
		ProjectRole: role,
		JoinedAt:    time.Now().UTC(),
	}
	t.Require().NoError(db.Create(&member).Error)
	return member
}

func createTask(t requirer, db *gorm.DB, projectID uuid.UUID, title string, status models.TaskStatus) models.Task {
	task := models.Task{
		ID:         uuid.Must(uuid.NewV4()),
		ProjectID:  projectID,
		Title:      title,
		Status:     status,
		ReporterID: uuid.Must(uuid.NewV4()),
	}
	t.Require().NoError(db.Create(&task).Error)
	return task
}

func auditCount(t requirer, db *gorm.DB, entityID uuid.UUID) int64 {
	var count int64
	t.Require().NoError(db.Model(&models.AuditLog{}).Where("entity_id = ?", entityID).Count(&count).Error)
	return count
}

func latestAudit(t requirer, db *gorm.DB, entityID uuid.UUID) models.AuditLog {
	var entry models.AuditLog
	t.Require().NoError(db.Where("entity_id = ?", entityID).Order("timestamp DESC").First(&entry).Error)
	return entry
}
