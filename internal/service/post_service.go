package service

import (
	"context"
	"errors"

	"devconnect/internal/cache"
	"devconnect/internal/models"
	"devconnect/internal/repository"

	"gorm.io/gorm"
)

// PostService owns the rules for creating posts, toggling likes, and
// adding/removing comments.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// NewPostService creates a PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// notFoundOr maps a record-not-found lookup failure to the given message.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(message)
	}
	return err
}

// CreatePost stores a new post with the author's name and avatar snapshotted
// from the User record at creation time.
func (s *PostService) CreatePost(ctx context.Context, userID uint, text string) (*models.Post, error) {
	if text == "" {
		return nil, models.NewValidationError(models.ErrorItem{Msg: "Text is required", Param: "text"})
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	post := &models.Post{
		UserID: userID,
		Text:   text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns all posts, newest first. The listing is served
// cache-aside; every mutation invalidates it.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.PostsListKey(), &posts, cache.PostsListTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.postRepo.List(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single post with its likes and comments.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	return post, nil
}

// DeletePost removes a post. Only the author may delete it.
func (s *PostService) DeletePost(ctx context.Context, postID, requesterID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return notFoundOr(err, "Post not found")
	}

	if post.UserID != requesterID {
		return models.NewUnauthorizedError("User not authorised to delete this post")
	}

	return s.postRepo.Delete(ctx, postID)
}

// LikePost records a like and returns the refreshed like list. A second like
// by the same user is a conflict.
func (s *PostService) LikePost(ctx context.Context, postID, userID uint) ([]models.Like, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post not found")
	}

	inserted, err := s.postRepo.Like(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, models.NewConflictError("Post already liked")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// UnlikePost removes the user's like and returns the refreshed like list.
// Unliking a post that was never liked is a conflict.
func (s *PostService) UnlikePost(ctx context.Context, postID, userID uint) ([]models.Like, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post not found")
	}

	removed, err := s.postRepo.Unlike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewConflictError("Post has not been liked")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// AddComment prepends a comment carrying the commenter's name and avatar
// snapshot, and returns the refreshed comment list.
func (s *PostService) AddComment(ctx context.Context, postID, userID uint, text string) ([]models.Comment, error) {
	if text == "" {
		return nil, models.NewValidationError(models.ErrorItem{Msg: "Text is required", Param: "text"})
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post not found")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: userID,
		Text:   text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// RemoveComment deletes a comment addressed by its own identifier. Only the
// comment's author may remove it.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID, requesterID uint) ([]models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post not found")
	}

	comment, err := s.postRepo.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}

	if comment.UserID != requesterID {
		return nil, models.NewUnauthorizedError("User not authorised to delete this comment")
	}

	removed, err := s.postRepo.RemoveComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewNotFoundError("Comment not found")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}
