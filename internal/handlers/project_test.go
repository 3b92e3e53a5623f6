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

// ProjectHandlerTestSuite defines the test suite for ProjectHandler
type ProjectHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ProjectHandler
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
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

	projectRepo := repository.NewProjectRepository(suite.db)
	activityRepo := repository.NewActivityLogRepository(suite.db)
	recorder := audit.NewRecorder(activityRepo, zap.NewNop())
	projectService := services.NewProjectService(projectRepo, recorder)
	suite.handler = NewProjectHandler(projectService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ProjectHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *ProjectHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         models.RoleProjectManager,
	}
	suite.db.Create(user)
	return user
}

func (suite *ProjectHandlerTestSuite) createTestProject(name string, creatorID uint64) *models.Project {
	project := &models.Project{
		Name:      name,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.ProjectStatusActive,
		CreatedBy: creatorID,
	}
	suite.db.Create(project)
	return project
}

// Helper function to create authenticated context
func (suite *ProjectHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
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

// TestCreateProject_Success tests successful project creation
func (suite *ProjectHandlerTestSuite) TestCreateProject_Success() {
	user := suite.createTestUser("test@example.com")

	payload := map[string]any{
		"name":       "Website Redesign",
		"start_date": "2024-01-01",
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/projects", body, user.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Website Redesign", response["name"])
	assert.Equal(suite.T(), "active", response["status"])
	assert.Equal(suite.T(), float64(user.ID), response["created_by"])

	// Creation is recorded in the audit trail with the request client info.
	var entry models.ActivityLog
	suite.Require().NoError(suite.db.First(&entry).Error)
	assert.Equal(suite.T(), models.EventCreated, entry.EventType)
	assert.Equal(suite.T(), "Created Project: Website Redesign", entry.Description)
	assert.NotEmpty(suite.T(), entry.IPAddress)
}

// TestCreateProject_Unauthorized tests creation without authentication
func (suite *ProjectHandlerTestSuite) TestCreateProject_Unauthorized() {
	payload := map[string]any{
		"name":       "Website Redesign",
		"start_date": "2024-01-01",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestCreateProject_InvalidDate tests creation with a malformed start date
func (suite *ProjectHandlerTestSuite) TestCreateProject_InvalidDate() {
	user := suite.createTestUser("test@example.com")

	payload := map[string]any{
		"name":       "Website Redesign",
		"start_date": "01/01/2024",
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/projects", body, user.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateProject_EndBeforeStart tests validation of the date range
func (suite *ProjectHandlerTestSuite) TestCreateProject_EndBeforeStart() {
	user := suite.createTestUser("test@example.com")

	payload := map[string]any{
		"name":       "Website Redesign",
		"start_date": "2024-06-01",
		"end_date":   "2024-05-01",
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/projects", body, user.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

// TestListProjects_Success tests the paginated listing
func (suite *ProjectHandlerTestSuite) TestListProjects_Success() {
	user := suite.createTestUser("test@example.com")
	suite.createTestProject("Alpha", user.ID)
	suite.createTestProject("Beta", user.ID)

	c, w := suite.createAuthContext("GET", "/api/projects", nil, user.ID)

	suite.handler.ListProjects(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "projects")
	assert.Equal(suite.T(), float64(2), response["total_count"])
	assert.Equal(suite.T(), float64(1), response["page"])

	projects := response["projects"].([]any)
	assert.Len(suite.T(), projects, 2)
}

// TestGetProject_Success tests retrieval of a single project
func (suite *ProjectHandlerTestSuite) TestGetProject_Success() {
	user := suite.createTestUser("test@example.com")
	project := suite.createTestProject("Alpha", user.ID)

	c, w := suite.createAuthContext("GET", "/api/projects/1", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), project.Name, response["name"])
}

// TestGetProject_NotFound tests retrieval of a missing project
func (suite *ProjectHandlerTestSuite) TestGetProject_NotFound() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("GET", "/api/projects/999", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateProject_PartialUpdate tests that omitted fields are untouched
func (suite *ProjectHandlerTestSuite) TestUpdateProject_PartialUpdate() {
	user := suite.createTestUser("test@example.com")
	suite.createTestProject("Alpha", user.ID)

	payload := map[string]any{"status": "on_hold"}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PUT", "/api/projects/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "on_hold", response["status"])
	assert.Equal(suite.T(), "Alpha", response["name"])
}

// TestUpdateProject_ClearEndDate tests that an explicit null clears the field
func (suite *ProjectHandlerTestSuite) TestUpdateProject_ClearEndDate() {
	user := suite.createTestUser("test@example.com")
	project := suite.createTestProject("Alpha", user.ID)
	endDate := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	suite.db.Model(project).Update("end_date", endDate)

	body := []byte(`{"end_date": null}`)

	c, w := suite.createAuthContext("PUT", "/api/projects/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Project
	suite.Require().NoError(suite.db.First(&reloaded, project.ID).Error)
	assert.Nil(suite.T(), reloaded.EndDate)
}

// TestDeleteProject_Success tests deletion with its tasks
func (suite *ProjectHandlerTestSuite) TestDeleteProject_Success() {
	user := suite.createTestUser("test@example.com")
	project := suite.createTestProject("Alpha", user.ID)
	suite.db.Create(&models.Task{Title: "Leftover", ProjectID: project.ID, CreatedBy: user.ID})

	c, w := suite.createAuthContext("DELETE", "/api/projects/1", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Project{}).Count(&count)
	assert.Zero(suite.T(), count)
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Zero(suite.T(), count)
}

// TestSearchProjects_MissingQuery tests the required query parameter
func (suite *ProjectHandlerTestSuite) TestSearchProjects_MissingQuery() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("GET", "/api/projects/search", nil, user.ID)

	suite.handler.SearchProjects(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestSearchProjects_Success tests name search
func (suite *ProjectHandlerTestSuite) TestSearchProjects_Success() {
	user := suite.createTestUser("test@example.com")
	suite.createTestProject("Website Redesign", user.ID)
	suite.createTestProject("Mobile App", user.ID)

	c, w := suite.createAuthContext("GET", "/api/projects/search", nil, user.ID)
	c.Request.URL.RawQuery = "name=Website"

	suite.handler.SearchProjects(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	projects := response["projects"].([]any)
	suite.Require().Len(projects, 1)
	first := projects[0].(map[string]any)
	assert.Equal(suite.T(), "Website Redesign", first["name"])
}

func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}
