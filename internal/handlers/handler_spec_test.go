package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dto"
	"github.com/plakor-mes/assy-dashboard/internal/handlers"
	"github.com/plakor-mes/assy-dashboard/internal/platform/config"
)

// --- Mock SpecService ---
type MockSpecService struct {
	mock.Mock
}

func (m *MockSpecService) ListSpecs(ctx context.Context, site string, filter domain.SpecFilter) ([]domain.SpecRecord, error) {
	args := m.Called(ctx, site, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SpecRecord), args.Error(1)
}

func (m *MockSpecService) CheckDuplicate(ctx context.Context, site string, req dto.CheckDuplicateRequest) (bool, error) {
	args := m.Called(ctx, site, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpecService) ListCarTypes(ctx context.Context, site string) ([]domain.CarType, error) {
	args := m.Called(ctx, site)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CarType), args.Error(1)
}

func (m *MockSpecService) ListLineIDs(ctx context.Context, site string) ([]string, error) {
	args := m.Called(ctx, site)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSpecService) ListWorkTypes(ctx context.Context, site, carType string) ([]string, error) {
	args := m.Called(ctx, site, carType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSpecService) CreateSpec(ctx context.Context, site string, req dto.CreateSpecRequest, creatorUserID string) error {
	args := m.Called(ctx, site, req, creatorUserID)
	return args.Error(0)
}

func (m *MockSpecService) UpdateSpec(ctx context.Context, site string, req dto.UpdateSpecRequest, updaterUserID string) error {
	args := m.Called(ctx, site, req, updaterUserID)
	return args.Error(0)
}

func (m *MockSpecService) DeleteSpecs(ctx context.Context, site string, keys []domain.SpecKey) (domain.SpecDeleteOutcome, error) {
	args := m.Called(ctx, site, keys)
	return args.Get(0).(domain.SpecDeleteOutcome), args.Error(1)
}

func (m *MockSpecService) UploadSpecs(ctx context.Context, site string, rows []map[string]string, creatorUserID string, dryRun bool) (domain.UploadOutcome, error) {
	args := m.Called(ctx, site, rows, creatorUserID, dryRun)
	return args.Get(0).(domain.UploadOutcome), args.Error(1)
}

// --- Mock AuthService (only VerifyToken matters here) ---
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, userID, password string) (string, *domain.User, error) {
	args := m.Called(ctx, userID, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}

func (m *MockAuthService) VerifyToken(ctx context.Context, token string) (string, domain.Role, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Get(1).(domain.Role), args.Error(2)
}

func (m *MockAuthService) GetUserSites(ctx context.Context, userID string) ([]domain.Site, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Site), args.Error(1)
}

func (m *MockAuthService) GetUserMenus(ctx context.Context, userID, site string) ([]domain.MenuNode, error) {
	args := m.Called(ctx, userID, site)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MenuNode), args.Error(1)
}

// --- Test Suite ---
type SpecHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	mockSpec *MockSpecService
	mockAuth *MockAuthService
}

func (suite *SpecHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockSpec = new(MockSpecService)
	suite.mockAuth = new(MockAuthService)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{}, &portssvc.ServiceContainer{
		Spec: suite.mockSpec,
		Auth: suite.mockAuth,
	})
}

func (suite *SpecHandlerTestSuite) authedRequest(method, target string, body []byte) *httptest.ResponseRecorder {
	suite.mockAuth.On("VerifyToken", mock.Anything, "test-token").
		Return("hong.gd", domain.RoleManager, nil).Maybe()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error"`
	Category string          `json:"category"`
	Data     json.RawMessage `json:"data"`
}

func (suite *SpecHandlerTestSuite) decode(w *httptest.ResponseRecorder) envelope {
	var env envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func (suite *SpecHandlerTestSuite) TestListSpecs_Success() {
	records := []domain.SpecRecord{{SpecKey: domain.SpecKey{CarType: "CN7", ItemCd: "ITEM1"}}}
	suite.mockSpec.On("ListSpecs", mock.Anything, "SH1", domain.SpecFilter{CarType: "CN7"}).
		Return(records, nil).Once()

	w := suite.authedRequest(http.MethodGet, "/api/v1/specs?site=SH1&carType=CN7", nil)

	suite.Equal(http.StatusOK, w.Code)
	env := suite.decode(w)
	suite.True(env.Success)

	var got []domain.SpecRecord
	suite.Require().NoError(json.Unmarshal(env.Data, &got))
	suite.Equal(records, got)
	suite.mockSpec.AssertExpectations(suite.T())
}

func (suite *SpecHandlerTestSuite) TestListSpecs_AllFilterMeansNoRestriction() {
	suite.mockSpec.On("ListSpecs", mock.Anything, "SH1", domain.SpecFilter{}).
		Return([]domain.SpecRecord{}, nil).Once()

	w := suite.authedRequest(http.MethodGet, "/api/v1/specs?site=SH1&carType=all&type=all", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockSpec.AssertExpectations(suite.T())
}

func (suite *SpecHandlerTestSuite) TestListSpecs_MissingSite() {
	w := suite.authedRequest(http.MethodGet, "/api/v1/specs", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	env := suite.decode(w)
	suite.False(env.Success)
	suite.Equal("validation", env.Category)
}

func (suite *SpecHandlerTestSuite) TestListSpecs_WithoutToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/specs?site=SH1", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockSpec.AssertNotCalled(suite.T(), "ListSpecs", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SpecHandlerTestSuite) TestCreateSpec_Duplicate() {
	body, _ := json.Marshal(dto.CreateSpecRequest{
		CarType: "CN7", LineID: "L01", AlcCode: "A01", Type: "T1", ItemCd: "ITEM1", BodyType: "5DR",
	})
	suite.mockSpec.On("CreateSpec", mock.Anything, "SH1", mock.AnythingOfType("dto.CreateSpecRequest"), "hong.gd").
		Return(apperrors.ErrDuplicate).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/specs?site=SH1", body)

	suite.Equal(http.StatusConflict, w.Code)
	env := suite.decode(w)
	suite.False(env.Success)
	suite.Equal("duplicate", env.Category)
}

func (suite *SpecHandlerTestSuite) TestCreateSpec_UnsupportedSite() {
	body, _ := json.Marshal(dto.CreateSpecRequest{
		CarType: "CN7", LineID: "L01", AlcCode: "A01", Type: "T1", ItemCd: "ITEM1", BodyType: "5DR",
	})
	suite.mockSpec.On("CreateSpec", mock.Anything, "NOPE", mock.AnythingOfType("dto.CreateSpecRequest"), "hong.gd").
		Return(&apperrors.UnsupportedSiteError{Identifier: "NOPE"}).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/specs?site=NOPE", body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("unsupported_site", suite.decode(w).Category)
}

func (suite *SpecHandlerTestSuite) TestCheckDuplicate_Found() {
	body, _ := json.Marshal(dto.CheckDuplicateRequest{ItemCd: "ITEM1"})
	suite.mockSpec.On("CheckDuplicate", mock.Anything, "SH1", mock.AnythingOfType("dto.CheckDuplicateRequest")).
		Return(true, nil).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/specs/check-duplicate?site=SH1", body)

	suite.Equal(http.StatusOK, w.Code)
	env := suite.decode(w)
	var resp dto.CheckDuplicateResponse
	suite.Require().NoError(json.Unmarshal(env.Data, &resp))
	suite.True(resp.IsDuplicate)
}

func (suite *SpecHandlerTestSuite) TestDeleteSpecs_ReportsOutcome() {
	body, _ := json.Marshal(dto.DeleteSpecRequest{Keys: []dto.SpecKeyRequest{
		{CarType: "CN7", LineID: "L01", AlcCode: "A01", Type: "T1", ItemCd: "ITEM1"},
	}})
	outcome := domain.SpecDeleteOutcome{Deleted: 1}
	suite.mockSpec.On("DeleteSpecs", mock.Anything, "SH1", mock.AnythingOfType("[]domain.SpecKey")).
		Return(outcome, nil).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/specs/delete?site=SH1", body)

	suite.Equal(http.StatusOK, w.Code)
	env := suite.decode(w)
	var got domain.SpecDeleteOutcome
	suite.Require().NoError(json.Unmarshal(env.Data, &got))
	suite.Equal(1, got.Deleted)
}

func TestSpecHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(SpecHandlerTestSuite))
}
