package siteregistry_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/platform/config"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

// plantRoster mirrors the shipped site defaults.
var plantRoster = map[string]config.SiteConfig{
	"SH1": {SiteID: "SH1", DisplayName: "시흥1조립장", DatabaseName: "PLAKOR_MES_SH1", Host: "db-sh1", Port: 1433},
	"SH2": {SiteID: "SH2", DisplayName: "시흥2조립장", DatabaseName: "PLAKOR_MES_SH2", Host: "db-sh2", Port: 1433},
	"HS":  {SiteID: "HS", DisplayName: "화성조립장", DatabaseName: "PLAKOR_DJ_MES", Host: "db-hs", Port: 1433},
	"SS":  {SiteID: "SS", DisplayName: "서산조립장", DatabaseName: "PLAKOR_MES_SS", Host: "db-ss", Port: 1433},
}

type RegistryTestSuite struct {
	suite.Suite
	registry *siteregistry.Registry
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = siteregistry.New(plantRoster)
}

// Every configured code and its display name must converge on the identical
// canonical tuple.
func (suite *RegistryTestSuite) TestResolve_CodeAndDisplayNameConverge() {
	for code, sc := range plantRoster {
		byCode, err := suite.registry.Resolve(code)
		suite.Require().NoError(err, "code %s", code)

		byName, err := suite.registry.Resolve(sc.DisplayName)
		suite.Require().NoError(err, "display name %s", sc.DisplayName)

		suite.Equal(byCode, byName, "aliases for %s must resolve identically", code)
		suite.Equal(code, byCode.SiteID)
		suite.Equal(sc.DisplayName, byCode.DisplayName)
		suite.Equal(sc.DatabaseName, byCode.DatabaseName)
	}
}

func (suite *RegistryTestSuite) TestResolve_CanonicalTuple() {
	site, err := suite.registry.Resolve("SH1")

	suite.Require().NoError(err)
	suite.Equal("SH1", site.SiteID)
	suite.Equal("시흥1조립장", site.DisplayName)
	suite.Equal("PLAKOR_MES_SH1", site.DatabaseName)
}

func (suite *RegistryTestSuite) TestResolve_UnknownIdentifier() {
	_, err := suite.registry.Resolve("BUSAN")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnsupportedSite)
	suite.Contains(err.Error(), "BUSAN")
}

func (suite *RegistryTestSuite) TestResolve_EmptyIdentifier() {
	_, err := suite.registry.Resolve("")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNoSiteSelected)
}

func (suite *RegistryTestSuite) TestValidate() {
	suite.True(suite.registry.Validate("SS"))
	suite.True(suite.registry.Validate("서산조립장"))
	suite.False(suite.registry.Validate("NOPE"))
	suite.False(suite.registry.Validate(""))
}

func (suite *RegistryTestSuite) TestSites_StableCodeOrder() {
	sites := suite.registry.Sites()

	suite.Require().Len(sites, 4)
	codes := make([]string, 0, len(sites))
	for _, s := range sites {
		codes = append(codes, s.SiteID)
	}
	suite.Equal([]string{"HS", "SH1", "SH2", "SS"}, codes)
}

func (suite *RegistryTestSuite) TestConnection_KnownAndUnknown() {
	conn, ok := suite.registry.Connection("SH2")

	suite.Require().True(ok)
	suite.Equal("db-sh2", conn.Host)
	suite.Equal("PLAKOR_MES_SH2", conn.Database)

	_, ok = suite.registry.Connection("NOPE")
	suite.False(ok)
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
