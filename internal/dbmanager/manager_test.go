package dbmanager

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	"github.com/plakor-mes/assy-dashboard/internal/platform/config"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

func testSites() map[string]config.SiteConfig {
	return map[string]config.SiteConfig{
		"SH1": {SiteID: "SH1", DisplayName: "시흥1조립장", DatabaseName: "PLAKOR_MES_SH1", Host: "db1", Port: 1433, User: "mesuser", MaxOpen: 4, MaxIdle: 2, IdleTimeout: time.Minute},
		"SS":  {SiteID: "SS", DisplayName: "서산조립장", DatabaseName: "PLAKOR_MES_SS", Host: "db2", Port: 1433, User: "mesuser", MaxOpen: 4, MaxIdle: 2, IdleTimeout: time.Minute},
	}
}

type ManagerTestSuite struct {
	suite.Suite
	registry  *siteregistry.Registry
	manager   *Manager
	mocks     map[string]sqlmock.Sqlmock
	mocksMu   sync.Mutex
	openCount atomic.Int32
}

func (s *ManagerTestSuite) SetupTest() {
	s.registry = siteregistry.New(testSites())
	s.mocks = make(map[string]sqlmock.Sqlmock)
	s.openCount.Store(0)

	open := func(dsn string) (*sql.DB, error) {
		s.openCount.Add(1)
		db, mock, err := sqlmock.New()
		if err != nil {
			return nil, err
		}
		s.mocksMu.Lock()
		s.mocks[dsn] = mock
		s.mocksMu.Unlock()
		return db, nil
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.manager = NewManager(s.registry, 20*time.Millisecond, logger,
		WithOpenFunc(open), WithPrewarm(false))
}

func (s *ManagerTestSuite) TearDownTest() {
	s.manager.CloseAll()
}

func (s *ManagerTestSuite) TestPoolForUnknownSite() {
	_, err := s.manager.PoolFor(context.Background(), "XX")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrUnsupportedSite)
}

func (s *ManagerTestSuite) TestPoolForEmptySite() {
	_, err := s.manager.PoolFor(context.Background(), "")
	s.ErrorIs(err, apperrors.ErrNoSiteSelected)
}

func (s *ManagerTestSuite) TestPoolForReusesPool() {
	ctx := context.Background()

	first, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)
	second, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)

	s.Same(first, second)
	s.Equal(int32(1), s.openCount.Load())
	s.Equal(domain.PoolConnected, s.manager.State("SH1"))
}

func (s *ManagerTestSuite) TestPoolForSingleFlight() {
	ctx := context.Background()

	var wg sync.WaitGroup
	pools := make([]*sql.DB, 8)
	for i := range pools {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := s.manager.PoolFor(ctx, "SH1")
			s.NoError(err)
			pools[i] = db
		}(i)
	}
	wg.Wait()

	for _, db := range pools[1:] {
		s.Same(pools[0], db)
	}
	s.Equal(int32(1), s.openCount.Load())
}

func (s *ManagerTestSuite) TestPoolForIsolatesSites() {
	ctx := context.Background()

	sh1, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)
	ss, err := s.manager.PoolFor(ctx, "SS")
	s.Require().NoError(err)

	s.NotSame(sh1, ss)
	s.Equal(int32(2), s.openCount.Load())
}

func (s *ManagerTestSuite) TestPoolForConnectFailure() {
	s.manager.open = func(string) (*sql.DB, error) {
		return nil, errors.New("network unreachable")
	}

	_, err := s.manager.PoolFor(context.Background(), "SH1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConnectionFailed)
	s.Equal(domain.PoolDisconnected, s.manager.State("SH1"))

	var cf *apperrors.ConnectionFailedError
	s.Require().ErrorAs(err, &cf)
	s.Equal("SH1", cf.SiteID)
}

func (s *ManagerTestSuite) TestSetSiteUnknownIdentifier() {
	err := s.manager.SetSite(context.Background(), "부산조립장")
	s.ErrorIs(err, apperrors.ErrUnsupportedSite)
	s.Empty(s.manager.CurrentSite())
}

func (s *ManagerTestSuite) TestSetSiteByDisplayName() {
	err := s.manager.SetSite(context.Background(), "시흥1조립장")
	s.Require().NoError(err)
	s.Equal("SH1", s.manager.CurrentSite())
}

func (s *ManagerTestSuite) TestSetSiteSameSiteIsNoOp() {
	ctx := context.Background()
	s.Require().NoError(s.manager.SetSite(ctx, "SH1"))
	_, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)

	s.Require().NoError(s.manager.SetSite(ctx, "SH1"))
	s.Require().NoError(s.manager.SetSite(ctx, "시흥1조립장"))

	// Repeated selection must not disturb the existing pool.
	s.Equal(domain.PoolConnected, s.manager.State("SH1"))
	s.Equal(int32(1), s.openCount.Load())
}

func (s *ManagerTestSuite) TestSetSiteRetiresPreviousPool() {
	ctx := context.Background()
	s.Require().NoError(s.manager.SetSite(ctx, "SH1"))
	_, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)

	s.Require().NoError(s.manager.SetSite(ctx, "SS"))

	// The previous pool stays live through the grace window, then closes.
	s.Equal(domain.PoolConnected, s.manager.State("SH1"))
	s.Eventually(func() bool {
		return s.manager.State("SH1") == domain.PoolDisconnected
	}, time.Second, 5*time.Millisecond)
}

func (s *ManagerTestSuite) TestSetSiteSwitchBackRescuesPool() {
	ctx := context.Background()
	s.Require().NoError(s.manager.SetSite(ctx, "SH1"))
	_, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)

	s.Require().NoError(s.manager.SetSite(ctx, "SS"))
	s.Require().NoError(s.manager.SetSite(ctx, "SH1"))

	time.Sleep(60 * time.Millisecond)
	s.Equal(domain.PoolConnected, s.manager.State("SH1"))
	s.Equal(int32(1), s.openCount.Load())
}

func (s *ManagerTestSuite) TestCloseSiteIdempotent() {
	ctx := context.Background()
	_, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)

	s.manager.CloseSite("SH1")
	s.manager.CloseSite("SH1")
	s.manager.CloseSite("never-opened")

	s.Equal(domain.PoolDisconnected, s.manager.State("SH1"))
}

func (s *ManagerTestSuite) TestCloseAll() {
	ctx := context.Background()
	_, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)
	_, err = s.manager.PoolFor(ctx, "SS")
	s.Require().NoError(err)

	s.manager.CloseAll()

	s.Equal(domain.PoolDisconnected, s.manager.State("SH1"))
	s.Equal(domain.PoolDisconnected, s.manager.State("SS"))
}

func (s *ManagerTestSuite) mockFor(siteID string) sqlmock.Sqlmock {
	conn, ok := s.registry.Connection(siteID)
	s.Require().True(ok)
	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()
	mock, ok := s.mocks[dsnFor(conn)]
	s.Require().True(ok, "no pool opened for %s", siteID)
	return mock
}

func (s *ManagerTestSuite) TestExecuteQueryScansPlainRows() {
	ctx := context.Background()
	_, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)

	mock := s.mockFor("SH1")
	mock.ExpectQuery("SELECT CAR_TYPE, ALC_CODE FROM").
		WithArgs("CN7").
		WillReturnRows(sqlmock.NewRows([]string{"CAR_TYPE", "ALC_CODE"}).
			AddRow([]byte("CN7"), "A01").
			AddRow([]byte("CN7"), "A02"))

	rows, err := s.manager.ExecuteQuery(ctx, "SH1",
		"SELECT CAR_TYPE, ALC_CODE FROM [PLAKOR_MES_SH1].[dbo].[TB_MD_ALC_SPEC] WHERE CAR_TYPE = @p1",
		sql.Named("p1", "CN7"))
	s.Require().NoError(err)

	s.Len(rows, 2)
	s.Equal("CN7", rows[0]["CAR_TYPE"]) // []byte normalised to string
	s.Equal("A02", rows[1]["ALC_CODE"])
}

func (s *ManagerTestSuite) TestExecuteQueryWrapsDriverError() {
	ctx := context.Background()
	_, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)

	mock := s.mockFor("SH1")
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("deadlock victim"))

	_, err = s.manager.ExecuteQuery(ctx, "SH1", "SELECT 1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrQueryFailed)

	var qf *apperrors.QueryFailedError
	s.Require().ErrorAs(err, &qf)
	s.Equal("SH1", qf.SiteID)
	s.NotContains(qf.Error(), "deadlock victim\n") // digest stays single line
}

func (s *ManagerTestSuite) TestExecuteNonQueryReturnsAffected() {
	ctx := context.Background()
	_, err := s.manager.PoolFor(ctx, "SH1")
	s.Require().NoError(err)

	mock := s.mockFor("SH1")
	mock.ExpectExec("DELETE FROM").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := s.manager.ExecuteNonQuery(ctx, "SH1",
		"DELETE FROM [PLAKOR_MES_SH1].[dbo].[TB_MD_ALC_SPEC] WHERE CAR_TYPE = @p1",
		sql.Named("p1", "CN7"))
	s.Require().NoError(err)
	s.Equal(int64(3), affected)
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func TestRejectingExecutor(t *testing.T) {
	var exec RejectingExecutor
	ctx := context.Background()

	_, err := exec.ExecuteQuery(ctx, "SH1", "SELECT 1")
	if !errors.Is(err, apperrors.ErrServerOnly) {
		t.Fatalf("ExecuteQuery error = %v, want ErrServerOnly", err)
	}
	_, err = exec.ExecuteNonQuery(ctx, "SH1", "DELETE")
	if !errors.Is(err, apperrors.ErrServerOnly) {
		t.Fatalf("ExecuteNonQuery error = %v, want ErrServerOnly", err)
	}
	_, err = exec.ExecuteProcedure(ctx, "SH1", "EXEC X")
	if !errors.Is(err, apperrors.ErrServerOnly) {
		t.Fatalf("ExecuteProcedure error = %v, want ErrServerOnly", err)
	}
}
