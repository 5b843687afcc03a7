package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/model"
)

type mockReviewRepo struct {
	comments map[uuid.UUID]*model.Comment
	votes    map[uuid.UUID]*model.CommentVote
	ratings  map[uuid.UUID]*model.Rating
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{
		comments: make(map[uuid.UUID]*model.Comment),
		votes:    make(map[uuid.UUID]*model.CommentVote),
		ratings:  make(map[uuid.UUID]*model.Rating),
	}
}

func (m *mockReviewRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	comment.ID = uuid.New()
	comment.CreatedAt = time.Now()
	m.comments[comment.ID] = comment
	return nil
}

func (m *mockReviewRepo) GetCommentByID(_ context.Context, id uuid.UUID) (*model.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *mockReviewRepo) UpdateCommentContent(_ context.Context, id uuid.UUID, content string) error {
	if c, ok := m.comments[id]; ok {
		c.Content = content
	}
	return nil
}

func (m *mockReviewRepo) ListCommentsByProduct(_ context.Context, productID uuid.UUID) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range m.comments {
		if c.ProductID == productID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) ListCommentsAdmin(_ context.Context, _, _ int, _ string) ([]model.Comment, int, error) {
	var out []model.Comment
	for _, c := range m.comments {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockReviewRepo) GetVote(_ context.Context, userID, commentID uuid.UUID) (*model.CommentVote, error) {
	for _, v := range m.votes {
		if v.UserID == userID && v.CommentID == commentID {
			copied := *v
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockReviewRepo) CreateVote(_ context.Context, vote *model.CommentVote) error {
	vote.ID = uuid.New()
	m.votes[vote.ID] = vote
	return nil
}

func (m *mockReviewRepo) UpdateVote(_ context.Context, voteID uuid.UUID, value int) error {
	if v, ok := m.votes[voteID]; ok {
		v.Value = value
	}
	return nil
}

func (m *mockReviewRepo) DeleteVote(_ context.Context, voteID uuid.UUID) error {
	delete(m.votes, voteID)
	return nil
}

func (m *mockReviewRepo) RecomputeScore(_ context.Context, commentID uuid.UUID) (int, error) {
	score := 0
	for _, v := range m.votes {
		if v.CommentID == commentID {
			score += v.Value
		}
	}
	if c, ok := m.comments[commentID]; ok {
		c.Score = score
	}
	return score, nil
}

func (m *mockReviewRepo) UpsertRating(_ context.Context, rating *model.Rating) error {
	for _, r := range m.ratings {
		if r.UserID == rating.UserID && r.ProductID == rating.ProductID {
			r.Value = rating.Value
			rating.ID = r.ID
			return nil
		}
	}
	rating.ID = uuid.New()
	m.ratings[rating.ID] = rating
	return nil
}

func (m *mockReviewRepo) GetRatingByID(_ context.Context, id uuid.UUID) (*model.Rating, error) {
	r, ok := m.ratings[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

type reviewFixture struct {
	svc         *ReviewService
	reviewRepo  *mockReviewRepo
	orderRepo   *mockOrderRepo
	productRepo *mockProductRepo
	userRepo    *mockUserRepo
}

func newReviewFixture() *reviewFixture {
	productRepo := newMockProductRepo()
	orderRepo := newMockOrderRepo(productRepo)
	reviewRepo := newMockReviewRepo()
	userRepo := newMockUserRepo()
	return &reviewFixture{
		svc:         NewReviewService(reviewRepo, orderRepo, productRepo, userRepo),
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// buyProduct runs a real checkout so HasPurchased sees a completed order.
func (f *reviewFixture) buyProduct(t *testing.T, userID, productID uuid.UUID) {
	t.Helper()
	orderSvc := NewOrderService(f.orderRepo, f.productRepo, nil)
	item, err := orderSvc.AddItem(context.Background(), userID, dto.AddOrderItemRequest{ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	_, err = orderSvc.Checkout(context.Background(), userID, dto.CheckoutRequest{ItemIDs: []uuid.UUID{item.ID}})
	require.NoError(t, err)
}

func TestReviewService_CreateComment_RequiresPurchase(t *testing.T) {
	f := newReviewFixture()
	p := newTestProduct(f.productRepo, 5)

	_, err := f.svc.CreateComment(context.Background(), uuid.New(), p.ID, dto.CreateCommentRequest{Content: "great"})
	assert.ErrorIs(t, err, ErrPurchaseRequired)
}

func TestReviewService_CreateComment(t *testing.T) {
	f := newReviewFixture()
	p := newTestProduct(f.productRepo, 5)

	author := &model.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com"}
	f.userRepo.add(author)
	f.buyProduct(t, author.ID, p.ID)

	resp, err := f.svc.CreateComment(context.Background(), author.ID, p.ID, dto.CreateCommentRequest{Content: "great"})
	require.NoError(t, err)
	assert.Equal(t, "Jane", resp.Author)
	assert.Equal(t, 0, resp.Score)
}

func TestReviewService_Reply_NoPurchaseNeeded(t *testing.T) {
	f := newReviewFixture()
	p := newTestProduct(f.productRepo, 5)

	buyer := &model.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com"}
	f.userRepo.add(buyer)
	f.buyProduct(t, buyer.ID, p.ID)
	parent, err := f.svc.CreateComment(context.Background(), buyer.ID, p.ID, dto.CreateCommentRequest{Content: "great"})
	require.NoError(t, err)

	visitor := &model.User{ID: uuid.New(), Name: "Sam", Email: "sam@example.com"}
	f.userRepo.add(visitor)

	resp, err := f.svc.Reply(context.Background(), visitor.ID, p.ID, dto.ReplyCommentRequest{
		Content: "which strings?", ParentID: parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam", resp.Author)
}

func TestReviewService_Reply_ParentMissing(t *testing.T) {
	f := newReviewFixture()
	p := newTestProduct(f.productRepo, 5)

	_, err := f.svc.Reply(context.Background(), uuid.New(), p.ID, dto.ReplyCommentRequest{
		Content: "hello", ParentID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestReviewService_UpdateComment_AuthorOnly(t *testing.T) {
	f := newReviewFixture()

	author := uuid.New()
	comment := &model.Comment{UserID: author, ProductID: uuid.New(), Content: "original"}
	require.NoError(t, f.reviewRepo.CreateComment(context.Background(), comment))

	_, err := f.svc.UpdateComment(context.Background(), uuid.New(), comment.ID, "hijacked")
	assert.ErrorIs(t, err, ErrNotCommentAuthor)

	resp, err := f.svc.UpdateComment(context.Background(), author, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", resp.Content)
}

func TestReviewService_Vote_Toggle(t *testing.T) {
	f := newReviewFixture()

	comment := &model.Comment{UserID: uuid.New(), ProductID: uuid.New(), Content: "great"}
	require.NoError(t, f.reviewRepo.CreateComment(context.Background(), comment))
	voter := uuid.New()

	resp, err := f.svc.Vote(context.Background(), voter, comment.ID, 1)
	require.NoError(t, err)
	assert.True(t, resp.Voted)
	assert.Equal(t, 1, resp.Score)

	// same value removes the vote
	resp, err = f.svc.Vote(context.Background(), voter, comment.ID, 1)
	require.NoError(t, err)
	assert.False(t, resp.Voted)
	assert.Equal(t, 0, resp.Score)
	assert.Empty(t, f.reviewRepo.votes)
}

func TestReviewService_Vote_SwitchValue(t *testing.T) {
	f := newReviewFixture()

	comment := &model.Comment{UserID: uuid.New(), ProductID: uuid.New(), Content: "great"}
	require.NoError(t, f.reviewRepo.CreateComment(context.Background(), comment))
	voter := uuid.New()

	_, err := f.svc.Vote(context.Background(), voter, comment.ID, 1)
	require.NoError(t, err)

	resp, err := f.svc.Vote(context.Background(), voter, comment.ID, -1)
	require.NoError(t, err)
	assert.True(t, resp.Voted)
	assert.Equal(t, -1, resp.Score)
	assert.Len(t, f.reviewRepo.votes, 1)
}

func TestReviewService_Rate_RequiresPurchase(t *testing.T) {
	f := newReviewFixture()
	p := newTestProduct(f.productRepo, 5)

	_, err := f.svc.Rate(context.Background(), uuid.New(), p.ID, 5)
	assert.ErrorIs(t, err, ErrPurchaseRequired)
}

func TestReviewService_Rate_UpsertLatestWins(t *testing.T) {
	f := newReviewFixture()
	p := newTestProduct(f.productRepo, 5)

	buyer := uuid.New()
	f.buyProduct(t, buyer, p.ID)

	first, err := f.svc.Rate(context.Background(), buyer, p.ID, 3)
	require.NoError(t, err)
	second, err := f.svc.Rate(context.Background(), buyer, p.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.Len(t, f.reviewRepo.ratings, 1)
	for _, r := range f.reviewRepo.ratings {
		assert.Equal(t, 5, r.Value)
	}
}

func TestReviewService_GetRating(t *testing.T) {
	f := newReviewFixture()
	p := newTestProduct(f.productRepo, 5)

	buyer := uuid.New()
	f.buyProduct(t, buyer, p.ID)

	created, err := f.svc.Rate(context.Background(), buyer, p.ID, 4)
	require.NoError(t, err)

	found, err := f.svc.GetRating(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ProductID)
	assert.Equal(t, 4, found.Value)

	_, err = f.svc.GetRating(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRatingNotFound)
}

func TestReviewService_ListComments_Tree(t *testing.T) {
	f := newReviewFixture()
	productID := uuid.New()

	root := &model.Comment{UserID: uuid.New(), ProductID: productID, Content: "root"}
	require.NoError(t, f.reviewRepo.CreateComment(context.Background(), root))
	reply := &model.Comment{
		UserID: uuid.New(), ProductID: productID, Content: "reply",
		ParentID: uuid.NullUUID{UUID: root.ID, Valid: true},
	}
	require.NoError(t, f.reviewRepo.CreateComment(context.Background(), reply))

	tree, err := f.svc.ListComments(context.Background(), productID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "reply", tree[0].Children[0].Content)
}
