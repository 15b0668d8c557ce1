package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"streamgate/pkg/errors"
)

type CatalogSuite struct {
	suite.Suite

	svc *Service
	ctx context.Context
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.svc = New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.ctx = context.Background()
}

func (s *CatalogSuite) TestTrendingOrderedByViews() {
	items, err := s.svc.Trending(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(items, 3)

	s.Equal("Last Summit", items[0].Title)
	s.Equal(1, items[0].Rank)
	for i := 1; i < len(items); i++ {
		s.GreaterOrEqual(items[i-1].ViewsDay, items[i].ViewsDay)
		s.Equal(i+1, items[i].Rank)
	}
}

func (s *CatalogSuite) TestTrendingDefaultLimit() {
	items, err := s.svc.Trending(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(items, 8)
}

func (s *CatalogSuite) TestRecommendationsStable() {
	first, err := s.svc.Recommendations(s.ctx, "user-42", 5)
	s.Require().NoError(err)
	second, err := s.svc.Recommendations(s.ctx, "user-42", 5)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Len(first, 5)
}

func (s *CatalogSuite) TestRecommendationsRequireUser() {
	_, err := s.svc.Recommendations(s.ctx, "", 5)
	s.Require().Error(err)
	s.Equal(errors.CodeInvalidInput, errors.CodeOf(err))
}

func (s *CatalogSuite) TestSearchMatchesTitleAndGenre() {
	result, err := s.svc.Search(s.ctx, "drama")
	s.Require().NoError(err)
	s.Equal(2, result.Total)

	result, err = s.svc.Search(s.ctx, "orbit")
	s.Require().NoError(err)
	s.Require().Equal(1, result.Total)
	s.Equal("Orbit Decay", result.Items[0].Title)
}

func (s *CatalogSuite) TestSearchRejectsBlankQuery() {
	_, err := s.svc.Search(s.ctx, "   ")
	s.Require().Error(err)
	s.Equal(errors.CodeInvalidInput, errors.CodeOf(err))
}

func (s *CatalogSuite) TestChannelsByGroup() {
	all, err := s.svc.Channels(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 5)

	news, err := s.svc.Channels(s.ctx, "NEWS")
	s.Require().NoError(err)
	s.Require().Len(news, 1)
	s.Equal("ch1", news[0].ID)
}
