package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskflow/project-management-api/internal/audit"
	"github.com/taskflow/project-management-api/internal/constants"
	"github.com/taskflow/project-management-api/internal/database"
	"github.com/taskflow/project-management-api/internal/models"
	"github.com/taskflow/project-management-api/internal/repository"
	"github.com/taskflow/project-management-api/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
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

	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	activityRepo := repository.NewActivityLogRepository(suite.db)
	recorder := audit.NewRecorder(activityRepo, zap.NewNop())
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, recorder)
	suite.handler = NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         models.RoleDeveloper,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestProject(name string, creatorID uint64) *models.Project {
	project := &models.Project{
		Name:      name,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.ProjectStatusActive,
		CreatedBy: creatorID,
	}
	suite.db.Create(project)
	return project
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, projectID, creatorID uint64) *models.Task {
	task := &models.Task{
		Title:     title,
		Priority:  models.TaskPriorityMedium,
		Status:    models.TaskStatusPending,
		ProjectID: projectID,
		CreatedBy: creatorID,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("test@example.com")
	project := suite.createTestProject("Alpha", user.ID)

	payload := map[string]any{
		"title":      "Write docs",
		"project_id": project.ID,
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Write docs", response["title"])
	assert.Equal(suite.T(), "medium", response["priority"])
	assert.Equal(suite.T(), "pending", response["status"])
}

// TestCreateTask_UnknownProject tests creation against a missing project
func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownProject() {
	user := suite.createTestUser("test@example.com")

	payload := map[string]any{
		"title":      "Orphan",
		"project_id": 999,
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

// TestCreateTask_PastDueDate tests due date validation on creation
func (suite *TaskHandlerTestSuite) TestCreateTask_PastDueDate() {
	user := suite.createTestUser("test@example.com")
	project := suite.createTestProject("Alpha", user.ID)

	payload := map[string]any{
		"title":      "Too late",
		"project_id": project.ID,
		"due_date":   "2020-01-01",
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

// TestUpdateTask_ClearAssignee tests that an explicit null unassigns
func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearAssignee() {
	user := suite.createTestUser("test@example.com")
	project := suite.createTestProject("Alpha", user.ID)
	task := suite.createTestTask("Write docs", project.ID, user.ID)
	suite.db.Model(task).Update("assigned_to", user.ID)

	body := []byte(`{"assigned_to": null}`)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	assert.Nil(suite.T(), reloaded.AssignedTo)
}

// TestUpdateTask_StatusChange tests a partial status update
func (suite *TaskHandlerTestSuite) TestUpdateTask_StatusChange() {
	user := suite.createTestUser("test@example.com")
	project := suite.createTestProject("Alpha", user.ID)
	suite.createTestTask("Write docs", project.ID, user.ID)

	payload := map[string]any{"status": "completed"}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "completed", response["status"])
	assert.Equal(suite.T(), "Write docs", response["title"])
}

// TestDeleteTask_NotFound tests deletion of a missing task
func (suite *TaskHandlerTestSuite) TestDeleteTask_NotFound() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("DELETE", "/api/tasks/999", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestHighPriorityTasks tests the high priority listing
func (suite *TaskHandlerTestSuite) TestHighPriorityTasks() {
	user := suite.createTestUser("test@example.com")
	project := suite.createTestProject("Alpha", user.ID)
	suite.createTestTask("Routine", project.ID, user.ID)
	suite.db.Create(&models.Task{
		Title:     "Fire",
		Priority:  models.TaskPriorityUrgent,
		Status:    models.TaskStatusPending,
		ProjectID: project.ID,
		CreatedBy: user.ID,
	})

	c, w := suite.createAuthContext("GET", "/api/tasks/high-priority", nil, user.ID)

	suite.handler.HighPriorityTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["tasks"].([]any)
	suite.Require().Len(tasks, 1)
	first := tasks[0].(map[string]any)
	assert.Equal(suite.T(), "Fire", first["title"])
}

// TestTasksByProject tests the per-project listing
func (suite *TaskHandlerTestSuite) TestTasksByProject() {
	user := suite.createTestUser("test@example.com")
	alpha := suite.createTestProject("Alpha", user.ID)
	beta := suite.createTestProject("Beta", user.ID)
	suite.createTestTask("In Alpha", alpha.ID, user.ID)
	suite.createTestTask("In Beta", beta.ID, user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/project/2", nil, user.ID)
	c.Params = gin.Params{{Key: "projectId", Value: "2"}}

	suite.handler.TasksByProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["tasks"].([]any)
	suite.Require().Len(tasks, 1)
	first := tasks[0].(map[string]any)
	assert.Equal(suite.T(), "In Beta", first["title"])
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
