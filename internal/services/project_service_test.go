package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskflow/project-management-api/internal/audit"
	"github.com/taskflow/project-management-api/internal/models"
	"github.com/taskflow/project-management-api/internal/repository"
)

// ProjectServiceTestSuite defines the test suite for ProjectService
type ProjectServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProjectService
	actor   audit.Actor
}

// SetupTest runs before each test
func (suite *ProjectServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.ActivityLog{},
	)
	suite.Require().NoError(err)

	projectRepo := repository.NewProjectRepository(suite.db)
	activityRepo := repository.NewActivityLogRepository(suite.db)
	recorder := audit.NewRecorder(activityRepo, zap.NewNop())

	suite.service = NewProjectService(projectRepo, recorder)

	userID := uint64(1)
	suite.actor = audit.Actor{UserID: &userID, IPAddress: "127.0.0.1", UserAgent: "test"}

	suite.db.Create(&models.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hashed",
		Role:         models.RoleProjectManager,
	})
}

// TearDownTest runs after each test
func (suite *ProjectServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectServiceTestSuite) auditEntries() []models.ActivityLog {
	var entries []models.ActivityLog
	suite.db.Order("id").Find(&entries)
	return entries
}

func (suite *ProjectServiceTestSuite) createProject(name string) *models.Project {
	project, err := suite.service.CreateProject(CreateProjectInput{
		Name:      name,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: 1,
	}, suite.actor)
	suite.Require().NoError(err)
	return project
}

func (suite *ProjectServiceTestSuite) TestCreateProject_DefaultsAndAudit() {
	project := suite.createProject("Alpha")

	suite.Equal(models.ProjectStatusActive, project.Status)
	suite.Equal(uint64(1), project.CreatedBy)

	entries := suite.auditEntries()
	suite.Require().Len(entries, 1)
	suite.Equal(models.EventCreated, entries[0].EventType)
	suite.Equal("Project", entries[0].LoggableType)
	suite.Equal(project.ID, entries[0].LoggableID)
	suite.Equal("Created Project: Alpha", entries[0].Description)
	suite.Nil(entries[0].OldValues)
	suite.Nil(entries[0].NewValues)
	suite.Require().NotNil(entries[0].UserID)
	suite.Equal(uint64(1), *entries[0].UserID)
	suite.Equal("127.0.0.1", entries[0].IPAddress)
}

func (suite *ProjectServiceTestSuite) TestCreateProject_Validation() {
	_, err := suite.service.CreateProject(CreateProjectInput{
		StartDate: time.Now(),
		CreatedBy: 1,
	}, suite.actor)
	suite.ErrorIs(err, ErrProjectNameRequired)

	_, err = suite.service.CreateProject(CreateProjectInput{
		Name:      "Alpha",
		CreatedBy: 1,
	}, suite.actor)
	suite.ErrorIs(err, ErrStartDateRequired)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	_, err = suite.service.CreateProject(CreateProjectInput{
		Name:      "Alpha",
		StartDate: start,
		EndDate:   &end,
		CreatedBy: 1,
	}, suite.actor)
	suite.ErrorIs(err, ErrEndDateBeforeStart)

	// Failed creations must not leave audit entries behind.
	suite.Empty(suite.auditEntries())
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_RecordsChangeSet() {
	project := suite.createProject("Alpha")

	status := models.ProjectStatusOnHold
	updated, err := suite.service.UpdateProject(project.ID, UpdateProjectInput{Status: &status}, suite.actor)
	suite.Require().NoError(err)
	suite.Equal(models.ProjectStatusOnHold, updated.Status)

	entries := suite.auditEntries()
	suite.Require().Len(entries, 2)

	entry := entries[1]
	suite.Equal(models.EventUpdated, entry.EventType)
	suite.Equal("Updated Project: Alpha", entry.Description)

	// New values hold exactly the changed attributes, never the update timestamp.
	suite.Require().Len(map[string]any(entry.NewValues), 1)
	suite.Equal("on_hold", entry.NewValues["status"])

	// Old values hold the full prior attribute set.
	suite.Equal("active", entry.OldValues["status"])
	suite.Equal("Alpha", entry.OldValues["name"])
	suite.Contains(map[string]any(entry.OldValues), "created_by")
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_NoChangeNoEntry() {
	project := suite.createProject("Alpha")

	sameName := "Alpha"
	_, err := suite.service.UpdateProject(project.ID, UpdateProjectInput{Name: &sameName}, suite.actor)
	suite.Require().NoError(err)

	// Only the creation entry exists.
	suite.Len(suite.auditEntries(), 1)
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_EndDateValidation() {
	project := suite.createProject("Alpha")

	end := project.StartDate.AddDate(0, 0, -1)
	_, err := suite.service.UpdateProject(project.ID, UpdateProjectInput{EndDate: &end}, suite.actor)
	suite.ErrorIs(err, ErrEndDateBeforeStart)
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_NotFound() {
	status := models.ProjectStatusCompleted
	_, err := suite.service.UpdateProject(999, UpdateProjectInput{Status: &status}, suite.actor)
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestDeleteProject_CascadesAndAudits() {
	project := suite.createProject("Alpha")

	suite.db.Create(&models.Task{Title: "Task One", ProjectID: project.ID, CreatedBy: 1})
	suite.db.Create(&models.Task{Title: "Task Two", ProjectID: project.ID, CreatedBy: 1})

	err := suite.service.DeleteProject(project.ID, suite.actor)
	suite.Require().NoError(err)

	var taskCount int64
	suite.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&taskCount)
	suite.Zero(taskCount)

	_, err = suite.service.GetProject(project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)

	// One created + two task deletions + one project deletion.
	entries := suite.auditEntries()
	suite.Require().Len(entries, 4)

	deleted := map[string]int{}
	for _, entry := range entries[1:] {
		suite.Equal(models.EventDeleted, entry.EventType)
		deleted[entry.LoggableType]++
	}
	suite.Equal(2, deleted["Task"])
	suite.Equal(1, deleted["Project"])
}

func (suite *ProjectServiceTestSuite) TestProjectsByStatusAndSearch() {
	suite.createProject("Website Redesign")
	project := suite.createProject("Mobile App")

	status := models.ProjectStatusCompleted
	_, err := suite.service.UpdateProject(project.ID, UpdateProjectInput{Status: &status}, suite.actor)
	suite.Require().NoError(err)

	active, err := suite.service.ActiveProjects()
	suite.Require().NoError(err)
	suite.Require().Len(active, 1)
	suite.Equal("Website Redesign", active[0].Name)

	completed, err := suite.service.CompletedProjects()
	suite.Require().NoError(err)
	suite.Require().Len(completed, 1)
	suite.Equal("Mobile App", completed[0].Name)

	found, err := suite.service.SearchProjects("Redesign")
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal("Website Redesign", found[0].Name)

	none, err := suite.service.SearchProjects("Nonexistent")
	suite.Require().NoError(err)
	suite.Empty(none)
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
