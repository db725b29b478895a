package service

import (
	"errors"
	"strings"

	"blogit/dao"
	"blogit/internal/apperror"
	"blogit/model"

	"gorm.io/gorm"
)

// PostService implements ownership-gated CRUD on posts. Reads are public,
// mutations require the caller's verified identity to match the stored author.
type PostService struct {
	posts *dao.PostDAO
	users *dao.UserDAO
}

// NewPostService 创建一个新的 PostService 实例
func NewPostService(posts *dao.PostDAO, users *dao.UserDAO) *PostService {
	return &PostService{posts: posts, users: users}
}

// PostPatch carries a partial update; nil fields are left unchanged.
type PostPatch struct {
	Title    *string
	Content  *string
	ImageURL *string
}

// Create persists a post authored by the verified identity.
func (s *PostService) Create(authorID uint64, title, content, imageURL string) (*model.Post, *apperror.AppError) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, apperror.NewBadRequest("Title and content required")
	}

	// A 7-day token can outlive its account; the author must still exist.
	if _, err := s.users.FindByID(authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewUnauthorized("Unknown author")
		}
		return nil, apperror.NewInternal("Create failed", err)
	}

	post := &model.Post{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := s.posts.CreatePost(post); err != nil {
		return nil, apperror.NewInternal("Create failed", err)
	}

	created, err := s.posts.FindByID(post.ID)
	if err != nil {
		return nil, apperror.NewInternal("Create failed", err)
	}
	return created, nil
}

// List returns all posts, newest first, with authors expanded.
func (s *PostService) List() ([]model.Post, *apperror.AppError) {
	posts, err := s.posts.ListNewest()
	if err != nil {
		return nil, apperror.NewInternal("List failed", err)
	}
	return posts, nil
}

// Get 返回单篇文章
func (s *PostService) Get(id uint64) (*model.Post, *apperror.AppError) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("Not found")
		}
		return nil, apperror.NewInternal("Lookup failed", err)
	}
	return post, nil
}

// Update applies a partial update after the ownership check. Concurrent
// updates on the same post are last-write-wins.
func (s *PostService) Update(userID, id uint64, patch PostPatch) (*model.Post, *apperror.AppError) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("Not found")
		}
		return nil, apperror.NewInternal("Update failed", err)
	}
	if post.AuthorID != userID {
		return nil, apperror.NewForbidden("Not your post")
	}

	if appErr := applyPatch(post, patch); appErr != nil {
		return nil, appErr
	}
	if err := s.posts.SavePost(post); err != nil {
		return nil, apperror.NewInternal("Update failed", err)
	}
	return post, nil
}

// Delete removes a post permanently after the ownership check.
func (s *PostService) Delete(userID, id uint64) *apperror.AppError {
	post, err := s.posts.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewNotFound("Not found")
		}
		return apperror.NewInternal("Delete failed", err)
	}
	if post.AuthorID != userID {
		return apperror.NewForbidden("Not your post")
	}

	if err := s.posts.DeletePost(id); err != nil {
		return apperror.NewInternal("Delete failed", err)
	}
	return nil
}

// applyPatch copies the provided fields onto the post. Provided-but-blank
// title/content is rejected; absent fields stay untouched.
func applyPatch(post *model.Post, patch PostPatch) *apperror.AppError {
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return apperror.NewBadRequest("Title cannot be empty")
		}
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return apperror.NewBadRequest("Content cannot be empty")
		}
		post.Content = *patch.Content
	}
	if patch.ImageURL != nil {
		post.ImageURL = *patch.ImageURL
	}
	return nil
}
