package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/satstacker/satstacker.go/common"
	"github.com/satstacker/satstacker.go/db/models"
)

func (svc *SatstackerService) CreatePost(ctx context.Context, userId string, title, url, body string) (*models.Post, error) {
	post := &models.Post{
		UserID: userId,
		Title:  title,
		Url:    url,
		Body:   body,
	}
	_, err := svc.DB.NewInsert().Model(post).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (svc *SatstackerService) FindPost(ctx context.Context, postId string) (*models.Post, error) {
	var post models.Post
	err := svc.DB.NewSelect().Model(&post).Where("post.id = ?", postId).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (svc *SatstackerService) ListPosts(ctx context.Context, sort string, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := svc.DB.NewSelect().Model((*models.Post)(nil)).Limit(limit)
	switch sort {
	case common.PostSortTop:
		query = query.OrderExpr("total_sats DESC, created_at DESC")
	default:
		query = query.OrderExpr("created_at DESC")
	}

	posts := []models.Post{}
	if err := query.Scan(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (svc *SatstackerService) CreateComment(ctx context.Context, postId, userId, body string) (*models.Comment, error) {
	// the post must exist
	if _, err := svc.FindPost(ctx, postId); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		PostID: postId,
		UserID: userId,
		Body:   body,
	}
	_, err := svc.DB.NewInsert().Model(comment).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (svc *SatstackerService) ListComments(ctx context.Context, postId string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := svc.DB.NewSelect().Model(&comments).
		Where("post_id = ?", postId).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return comments, nil
}
