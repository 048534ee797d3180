package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/core/services"
	"github.com/plakor-mes/assy-dashboard/internal/dbmanager"
)

// --- Mock AuthService ---
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
type WorkspaceServiceTestSuite struct {
	suite.Suite
	mockAuth *MockAuthService
	mockRepo *MockAuthRepository
	manager  *dbmanager.Manager
	service  portssvc.WorkspaceSvcFacade
}

func (suite *WorkspaceServiceTestSuite) SetupTest() {
	registry := testRegistry()
	suite.mockAuth = new(MockAuthService)
	suite.mockRepo = new(MockAuthRepository)
	suite.manager = dbmanager.NewManager(registry, time.Millisecond, testLogger(), dbmanager.WithPrewarm(false))
	suite.service = services.NewWorkspaceService(suite.manager, suite.mockAuth, suite.mockRepo, registry, testLogger())
}

func (suite *WorkspaceServiceTestSuite) TearDownTest() {
	suite.manager.CloseAll()
}

func (suite *WorkspaceServiceTestSuite) TestChangeSite_Success() {
	ctx := context.Background()
	menus := []domain.MenuNode{{MenuID: "grp", MenuName: "생산관리"}}
	sites := []domain.Site{{SiteID: "SH1"}}

	suite.mockAuth.On("GetUserMenus", ctx, "hong.gd", "SH1").Return(menus, nil).Once()
	suite.mockAuth.On("GetUserSites", ctx, "hong.gd").Return(sites, nil).Once()
	suite.mockRepo.On("UpdateDefaultSite", ctx, "hong.gd", "SH1").Return(nil).Once()

	ws, err := suite.service.ChangeSite(ctx, "hong.gd", "시흥1조립장")

	suite.Require().NoError(err)
	suite.Equal("SH1", ws.CurrentSiteID)
	suite.Equal(menus, ws.AvailableMenus)
	suite.Equal(sites, ws.AvailableSites)
	suite.False(ws.Loading)
	suite.Equal("SH1", suite.manager.CurrentSite())
	suite.mockAuth.AssertExpectations(suite.T())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestChangeSite_SameSiteIsNoOp() {
	ctx := context.Background()

	suite.mockAuth.On("GetUserMenus", ctx, "hong.gd", "SH1").Return([]domain.MenuNode{}, nil).Once()
	suite.mockAuth.On("GetUserSites", ctx, "hong.gd").Return([]domain.Site{}, nil).Once()
	suite.mockRepo.On("UpdateDefaultSite", ctx, "hong.gd", "SH1").Return(nil).Once()

	_, err := suite.service.ChangeSite(ctx, "hong.gd", "SH1")
	suite.Require().NoError(err)

	// Second change to the same site must not hit the auth service again.
	ws, err := suite.service.ChangeSite(ctx, "hong.gd", "시흥1조립장")

	suite.Require().NoError(err)
	suite.Equal("SH1", ws.CurrentSiteID)
	suite.mockAuth.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestChangeSite_MembershipFailsClosed() {
	ctx := context.Background()

	suite.mockAuth.On("GetUserMenus", ctx, "hong.gd", "SS").Return(nil, apperrors.ErrForbidden).Once()

	_, err := suite.service.ChangeSite(ctx, "hong.gd", "SS")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	ws, err := suite.service.Current(ctx, "hong.gd")
	suite.Require().NoError(err)
	suite.Empty(ws.CurrentSiteID)
}

func (suite *WorkspaceServiceTestSuite) TestChangeSite_UnknownSite() {
	_, err := suite.service.ChangeSite(context.Background(), "hong.gd", "NOPE")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnsupportedSite)
}

func (suite *WorkspaceServiceTestSuite) TestChangeSite_PersistFailureStillSucceeds() {
	ctx := context.Background()

	suite.mockAuth.On("GetUserMenus", ctx, "hong.gd", "SH1").Return([]domain.MenuNode{}, nil).Once()
	suite.mockAuth.On("GetUserSites", ctx, "hong.gd").Return([]domain.Site{}, nil).Once()
	suite.mockRepo.On("UpdateDefaultSite", ctx, "hong.gd", "SH1").Return(context.DeadlineExceeded).Once()

	ws, err := suite.service.ChangeSite(ctx, "hong.gd", "SH1")

	suite.Require().NoError(err)
	suite.Equal("SH1", ws.CurrentSiteID)
}

func (suite *WorkspaceServiceTestSuite) TestChangeSite_RejectsConcurrentChange() {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	suite.mockAuth.On("GetUserMenus", ctx, "hong.gd", "SH1").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]domain.MenuNode{}, nil).Once()
	suite.mockAuth.On("GetUserSites", ctx, "hong.gd").Return([]domain.Site{}, nil).Once()
	suite.mockRepo.On("UpdateDefaultSite", ctx, "hong.gd", "SH1").Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := suite.service.ChangeSite(ctx, "hong.gd", "SH1")
		done <- err
	}()

	<-started
	_, err := suite.service.ChangeSite(ctx, "hong.gd", "SS")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrChangeInFlight)

	close(release)
	suite.Require().NoError(<-done)
}

func (suite *WorkspaceServiceTestSuite) TestCurrent_EmptyInitially() {
	ws, err := suite.service.Current(context.Background(), "newcomer")

	suite.Require().NoError(err)
	suite.Equal("newcomer", ws.UserID)
	suite.Empty(ws.CurrentSiteID)
	suite.Empty(ws.AvailableSites)
}

func TestWorkspaceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceServiceTestSuite))
}
