package review

import (
	"context"
	"testing"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/platform/database"
	"estate_market_backend/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type stubProperties map[uint]string

func (s stubProperties) GetPropertyOwnerID(_ context.Context, propertyID uint) (string, error) {
	owner, ok := s[propertyID]
	if !ok {
		return "", common.ErrNotFound.WithDetails("Property not found.")
	}
	return owner, nil
}

type ReviewServiceSuite struct {
	suite.Suite
	svc  *ServiceImplementation
	repo Repository
	ctx  context.Context
}

func (s *ReviewServiceSuite) SetupTest() {
	db, err := database.OpenInMemory(&user.User{}, &Review{})
	require.NoError(s.T(), err)
	name := "Alice Reviewer"
	require.NoError(s.T(), db.Create(&user.User{ID: "alice", DisplayName: &name}).Error)

	s.repo = NewGORMRepository(db)
	s.svc = NewService(s.repo, stubProperties{1: "owner", 2: "owner"}, zap.NewNop())
	s.ctx = context.Background()
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceSuite))
}

func (s *ReviewServiceSuite) TestSecondReviewReplacesFirst() {
	first, err := s.svc.CreateOrReplace(s.ctx, "alice", 1, CreateReviewRequest{Rating: 2, Comment: "meh"})
	s.Require().NoError(err)
	second, err := s.svc.CreateOrReplace(s.ctx, "alice", 1, CreateReviewRequest{Rating: 5, Comment: "grew on me"})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(5, second.Rating)
	s.Require().NotNil(second.AuthorName)
	s.Equal("Alice Reviewer", *second.AuthorName)

	list, err := s.svc.ListForProperty(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Equal("grew on me", list[0].Comment)
}

func (s *ReviewServiceSuite) TestListNewestFirst() {
	_, err := s.svc.CreateOrReplace(s.ctx, "alice", 2, CreateReviewRequest{Rating: 3})
	s.Require().NoError(err)
	_, err = s.svc.CreateOrReplace(s.ctx, "bob", 2, CreateReviewRequest{Rating: 4})
	s.Require().NoError(err)

	list, err := s.svc.ListForProperty(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("bob", list[0].UserID)
	s.Nil(list[0].AuthorName)
}

func (s *ReviewServiceSuite) TestOwnerCannotReviewOwnProperty() {
	_, err := s.svc.CreateOrReplace(s.ctx, "owner", 1, CreateReviewRequest{Rating: 5})
	s.ErrorIs(err, common.ErrForbidden)
}

func (s *ReviewServiceSuite) TestMissingProperty() {
	_, err := s.svc.CreateOrReplace(s.ctx, "alice", 99, CreateReviewRequest{Rating: 5})
	s.ErrorIs(err, common.ErrNotFound)
}

func (s *ReviewServiceSuite) TestDeleteAuthorization() {
	rev, err := s.svc.CreateOrReplace(s.ctx, "alice", 1, CreateReviewRequest{Rating: 4})
	s.Require().NoError(err)

	err = s.svc.Delete(s.ctx, common.Principal{ID: "mallory"}, rev.ID)
	s.ErrorIs(err, common.ErrForbidden)

	s.NoError(s.svc.Delete(s.ctx, common.Principal{ID: "alice"}, rev.ID))
	err = s.svc.Delete(s.ctx, common.Principal{ID: "alice"}, rev.ID)
	s.ErrorIs(err, common.ErrNotFound)
}

func TestAdminCanDeleteAnyReview(t *testing.T) {
	db, err := database.OpenInMemory(&user.User{}, &Review{})
	require.NoError(t, err)
	svc := NewService(NewGORMRepository(db), stubProperties{1: "owner"}, zap.NewNop())
	ctx := context.Background()

	rev, err := svc.CreateOrReplace(ctx, "alice", 1, CreateReviewRequest{Rating: 1})
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, common.Principal{ID: "root", Roles: []string{common.RoleAdmin}}, rev.ID))
}
