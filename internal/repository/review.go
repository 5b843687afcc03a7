package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rexrel213/music-store-finally/internal/model"
)

type ReviewRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	UpdateCommentContent(ctx context.Context, id uuid.UUID, content string) error
	ListCommentsByProduct(ctx context.Context, productID uuid.UUID) ([]model.Comment, error)
	ListCommentsAdmin(ctx context.Context, limit, offset int, sort string) ([]model.Comment, int, error)
	GetVote(ctx context.Context, userID, commentID uuid.UUID) (*model.CommentVote, error)
	CreateVote(ctx context.Context, vote *model.CommentVote) error
	UpdateVote(ctx context.Context, voteID uuid.UUID, value int) error
	DeleteVote(ctx context.Context, voteID uuid.UUID) error
	RecomputeScore(ctx context.Context, commentID uuid.UUID) (int, error)
	UpsertRating(ctx context.Context, rating *model.Rating) error
	GetRatingByID(ctx context.Context, id uuid.UUID) (*model.Rating, error)
}

type pgReviewRepo struct{ pool *pgxpool.Pool }

func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &pgReviewRepo{pool: pool}
}

const commentColumns = `c.id, c.user_id, c.product_id, c.content, c.score, c.parent_id, u.name, c.created_at`

func (r *pgReviewRepo) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (id, user_id, product_id, content, score, parent_id, created_at)
		 VALUES ($1, $2, $3, $4, 0, $5, NOW()) RETURNING created_at`,
		comment.ID, comment.UserID, comment.ProductID, comment.Content, comment.ParentID,
	).Scan(&comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *pgReviewRepo) GetCommentByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	c := &model.Comment{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments c JOIN users u ON u.id = c.user_id WHERE c.id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.ProductID, &c.Content, &c.Score, &c.ParentID, &c.Author, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (r *pgReviewRepo) UpdateCommentContent(ctx context.Context, id uuid.UUID, content string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE comments SET content = $2 WHERE id = $1`, id, content)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgReviewRepo) ListCommentsByProduct(ctx context.Context, productID uuid.UUID) ([]model.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.product_id = $1
		 ORDER BY c.score DESC, c.created_at`, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	return scanComments(rows)
}

var commentSortColumns = map[string]string{
	"created_at": "c.created_at",
	"score":      "c.score",
	"user.name":  "u.name",
}

func (r *pgReviewRepo) ListCommentsAdmin(ctx context.Context, limit, offset int, sort string) ([]model.Comment, int, error) {
	orderBy, ok := commentSortColumns[sort]
	if !ok {
		orderBy = "c.created_at"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c JOIN users u ON u.id = c.user_id
		 ORDER BY `+orderBy+` DESC LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *pgReviewRepo) GetVote(ctx context.Context, userID, commentID uuid.UUID) (*model.CommentVote, error) {
	v := &model.CommentVote{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, comment_id, value FROM comment_votes WHERE user_id = $1 AND comment_id = $2`,
		userID, commentID,
	).Scan(&v.ID, &v.UserID, &v.CommentID, &v.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vote: %w", err)
	}
	return v, nil
}

func (r *pgReviewRepo) CreateVote(ctx context.Context, vote *model.CommentVote) error {
	vote.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comment_votes (id, user_id, comment_id, value) VALUES ($1, $2, $3, $4)`,
		vote.ID, vote.UserID, vote.CommentID, vote.Value,
	)
	if err != nil {
		return fmt.Errorf("create vote: %w", err)
	}
	return nil
}

func (r *pgReviewRepo) UpdateVote(ctx context.Context, voteID uuid.UUID, value int) error {
	_, err := r.pool.Exec(ctx, `UPDATE comment_votes SET value = $2 WHERE id = $1`, voteID, value)
	if err != nil {
		return fmt.Errorf("update vote: %w", err)
	}
	return nil
}

func (r *pgReviewRepo) DeleteVote(ctx context.Context, voteID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM comment_votes WHERE id = $1`, voteID)
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	return nil
}

// RecomputeScore re-derives the comment's aggregate score from its votes and
// stores it on the comment row.
func (r *pgReviewRepo) RecomputeScore(ctx context.Context, commentID uuid.UUID) (int, error) {
	var score int
	err := r.pool.QueryRow(ctx,
		`UPDATE comments SET score = (
			SELECT COALESCE(SUM(value), 0) FROM comment_votes WHERE comment_id = $1
		 ) WHERE id = $1 RETURNING score`, commentID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("recompute comment score: %w", err)
	}
	return score, nil
}

func (r *pgReviewRepo) UpsertRating(ctx context.Context, rating *model.Rating) error {
	rating.ID = uuid.New()
	query := `INSERT INTO ratings (id, user_id, product_id, value)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_id, product_id) DO UPDATE SET value = $4
			  RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		rating.ID, rating.UserID, rating.ProductID, rating.Value,
	).Scan(&rating.ID)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (r *pgReviewRepo) GetRatingByID(ctx context.Context, id uuid.UUID) (*model.Rating, error) {
	rating := &model.Rating{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, product_id, value FROM ratings WHERE id = $1`, id,
	).Scan(&rating.ID, &rating.UserID, &rating.ProductID, &rating.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return rating, nil
}

func scanComments(rows pgx.Rows) ([]model.Comment, error) {
	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Content, &c.Score, &c.ParentID, &c.Author, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}
