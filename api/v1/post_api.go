package v1

import (
	"errors"
	"net/http"
	"strconv"

	"blogit/internal/apperror"
	"blogit/internal/metrics"
	"blogit/service"
	"blogit/storage"

	"github.com/gin-gonic/gin"
)

// PostAPI exposes HTTP handlers for post CRUD. Create/update/delete run
// behind the auth middleware; list/get are public.
type PostAPI struct {
	service *service.PostService
	images  storage.ImageStore
}

// NewPostAPI wires the post service and the image backend into the handlers.
func NewPostAPI(s *service.PostService, images storage.ImageStore) *PostAPI {
	return &PostAPI{service: s, images: images}
}

// Create handles multipart post creation with an optional image attachment.
func (p *PostAPI) Create(c *gin.Context) {
	title := c.PostForm("title")
	content := c.PostForm("content")

	imageURL, appErr := p.resolveImage(c)
	if appErr != nil {
		metrics.IncPostOp("create", "upload_failed")
		respondError(c, appErr)
		return
	}

	post, appErr := p.service.Create(c.GetUint64("user_id"), title, content, imageURL)
	if appErr != nil {
		metrics.IncPostOp("create", "failed")
		respondError(c, appErr)
		return
	}

	metrics.IncPostOp("create", "success")
	c.JSON(http.StatusOK, post)
}

// List returns all posts, newest first. No auth required.
func (p *PostAPI) List(c *gin.Context) {
	posts, appErr := p.service.List()
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get 返回单篇文章，无需鉴权
func (p *PostAPI) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	post, appErr := p.service.Get(id)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Update applies a partial update; absent form fields are left unchanged.
func (p *PostAPI) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	var patch service.PostPatch
	if v, ok := c.GetPostForm("title"); ok {
		patch.Title = &v
	}
	if v, ok := c.GetPostForm("content"); ok {
		patch.Content = &v
	}

	imageURL, appErr := p.resolveImage(c)
	if appErr != nil {
		metrics.IncPostOp("update", "upload_failed")
		respondError(c, appErr)
		return
	}
	if imageURL != "" {
		patch.ImageURL = &imageURL
	}

	post, appErr := p.service.Update(c.GetUint64("user_id"), id, patch)
	if appErr != nil {
		metrics.IncPostOp("update", "failed")
		respondError(c, appErr)
		return
	}

	metrics.IncPostOp("update", "success")
	c.JSON(http.StatusOK, post)
}

// Delete removes a post permanently.
func (p *PostAPI) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	if appErr := p.service.Delete(c.GetUint64("user_id"), id); appErr != nil {
		metrics.IncPostOp("delete", "failed")
		respondError(c, appErr)
		return
	}

	metrics.IncPostOp("delete", "success")
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// resolveImage uploads the optional "image" form file and returns its URL.
// A missing file field is not an error; the returned URL is then empty.
func (p *PostAPI) resolveImage(c *gin.Context) (string, *apperror.AppError) {
	header, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}

	file, err := header.Open()
	if err != nil {
		metrics.IncUpload(p.images.Backend(), "failed")
		return "", apperror.NewInternal("Image upload failed", err)
	}
	defer file.Close()

	url, err := p.images.Upload(c.Request.Context(), file, header.Filename, header.Size)
	if err != nil {
		metrics.IncUpload(p.images.Backend(), "failed")
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("Image upload failed", err)
		}
		return "", appErr
	}

	metrics.IncUpload(p.images.Backend(), "success")
	return url, nil
}
