package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/model"
	"github.com/rexrel213/music-store-finally/internal/repository"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNotCommentAuthor = errors.New("not the comment author")
	ErrPurchaseRequired = errors.New("purchase required")
	ErrRatingNotFound   = errors.New("rating not found")
)

type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// CreateComment posts a top-level comment. Only users with a completed order
// containing the product may comment on it.
func (s *ReviewService) CreateComment(ctx context.Context, userID, productID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := s.requirePurchase(ctx, userID, productID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		UserID:    userID,
		ProductID: productID,
		Content:   req.Content,
	}
	if err := s.reviewRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := s.fillAuthor(ctx, comment); err != nil {
		return nil, err
	}
	resp := toCommentResponse(comment, nil)
	return &resp, nil
}

// Reply posts an answer to an existing comment. Replies are not purchase
// gated, the parent already anchors the thread to the product.
func (s *ReviewService) Reply(ctx context.Context, userID, productID uuid.UUID, req dto.ReplyCommentRequest) (*dto.CommentResponse, error) {
	parent, err := s.reviewRepo.GetCommentByID(ctx, req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("get parent comment: %w", err)
	}
	if parent == nil || parent.ProductID != productID {
		return nil, ErrCommentNotFound
	}

	comment := &model.Comment{
		UserID:    userID,
		ProductID: productID,
		Content:   req.Content,
		ParentID:  uuid.NullUUID{UUID: req.ParentID, Valid: true},
	}
	if err := s.reviewRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}

	if err := s.fillAuthor(ctx, comment); err != nil {
		return nil, err
	}
	resp := toCommentResponse(comment, nil)
	return &resp, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, userID, commentID uuid.UUID, content string) (*dto.CommentResponse, error) {
	comment, err := s.reviewRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, ErrNotCommentAuthor
	}

	if err := s.reviewRepo.UpdateCommentContent(ctx, commentID, content); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	comment.Content = content

	resp := toCommentResponse(comment, nil)
	return &resp, nil
}

// ListComments returns the product's comments as a tree. Top-level comments
// come first by score, replies keep the same ordering under their parent.
func (s *ReviewService) ListComments(ctx context.Context, productID uuid.UUID) ([]dto.CommentResponse, error) {
	comments, err := s.reviewRepo.ListCommentsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	children := make(map[uuid.UUID][]model.Comment)
	var roots []model.Comment
	for _, c := range comments {
		if c.ParentID.Valid {
			children[c.ParentID.UUID] = append(children[c.ParentID.UUID], c)
		} else {
			roots = append(roots, c)
		}
	}

	var build func(c *model.Comment) dto.CommentResponse
	build = func(c *model.Comment) dto.CommentResponse {
		kids := children[c.ID]
		nested := make([]dto.CommentResponse, 0, len(kids))
		for i := range kids {
			nested = append(nested, build(&kids[i]))
		}
		return toCommentResponse(c, nested)
	}

	tree := make([]dto.CommentResponse, 0, len(roots))
	for i := range roots {
		tree = append(tree, build(&roots[i]))
	}
	return tree, nil
}

// Vote toggles the user's vote on a comment. Voting the same value again
// removes the vote, a different value replaces it. The comment's score is
// recomputed from the remaining votes either way.
func (s *ReviewService) Vote(ctx context.Context, userID, commentID uuid.UUID, value int) (*dto.VoteCommentResponse, error) {
	comment, err := s.reviewRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}

	existing, err := s.reviewRepo.GetVote(ctx, userID, commentID)
	if err != nil {
		return nil, fmt.Errorf("get vote: %w", err)
	}

	voted := true
	switch {
	case existing == nil:
		vote := &model.CommentVote{UserID: userID, CommentID: commentID, Value: value}
		if err := s.reviewRepo.CreateVote(ctx, vote); err != nil {
			return nil, fmt.Errorf("create vote: %w", err)
		}
	case existing.Value == value:
		if err := s.reviewRepo.DeleteVote(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("delete vote: %w", err)
		}
		voted = false
	default:
		if err := s.reviewRepo.UpdateVote(ctx, existing.ID, value); err != nil {
			return nil, fmt.Errorf("update vote: %w", err)
		}
	}

	score, err := s.reviewRepo.RecomputeScore(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("recompute score: %w", err)
	}
	return &dto.VoteCommentResponse{Voted: voted, Score: score}, nil
}

// Rate sets the user's star rating for a product, replacing any previous one.
func (s *ReviewService) Rate(ctx context.Context, userID, productID uuid.UUID, value int) (*dto.RatingResponse, error) {
	if err := s.requirePurchase(ctx, userID, productID); err != nil {
		return nil, err
	}

	rating := &model.Rating{UserID: userID, ProductID: productID, Value: value}
	if err := s.reviewRepo.UpsertRating(ctx, rating); err != nil {
		return nil, fmt.Errorf("rate product: %w", err)
	}
	return &dto.RatingResponse{ID: rating.ID, ProductID: productID, Value: value}, nil
}

// GetRating looks up a single star rating for the back office.
func (s *ReviewService) GetRating(ctx context.Context, id uuid.UUID) (*dto.RatingResponse, error) {
	rating, err := s.reviewRepo.GetRatingByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	if rating == nil {
		return nil, ErrRatingNotFound
	}
	return &dto.RatingResponse{ID: rating.ID, ProductID: rating.ProductID, Value: rating.Value}, nil
}

// AverageRating returns the mean of all star ratings for the product, 0 when
// nobody has rated it yet.
func (s *ReviewService) AverageRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return 0, ErrProductNotFound
	}
	return s.productRepo.AvgRating(ctx, productID)
}

func (s *ReviewService) ListCommentsAdmin(ctx context.Context, req dto.AdminListRequest) (*dto.AdminListResponse[dto.CommentResponse], error) {
	comments, total, err := s.reviewRepo.ListCommentsAdmin(ctx, req.Limit, (req.Page-1)*req.Limit, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, toCommentResponse(&comments[i], nil))
	}
	return &dto.AdminListResponse[dto.CommentResponse]{Data: items, Total: total}, nil
}

func (s *ReviewService) requirePurchase(ctx context.Context, userID, productID uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	purchased, err := s.orderRepo.HasPurchased(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("check purchase: %w", err)
	}
	if !purchased {
		return ErrPurchaseRequired
	}
	return nil
}

func (s *ReviewService) fillAuthor(ctx context.Context, c *model.Comment) error {
	user, err := s.userRepo.GetByID(ctx, c.UserID)
	if err != nil {
		return fmt.Errorf("get comment author: %w", err)
	}
	if user != nil {
		c.Author = user.Name
	}
	return nil
}

func toCommentResponse(c *model.Comment, children []dto.CommentResponse) dto.CommentResponse {
	if children == nil {
		children = []dto.CommentResponse{}
	}
	return dto.CommentResponse{
		ID:        c.ID,
		Author:    c.Author,
		Content:   c.Content,
		Score:     c.Score,
		CreatedAt: c.CreatedAt,
		Children:  children,
	}
}
