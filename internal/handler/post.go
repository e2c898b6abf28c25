package handler

import (
	"errors"
	"net/http"

	"github.com/visiobyte/inkwell/internal/ctxkeys"
	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
	"github.com/visiobyte/inkwell/internal/service"
)

type PostHandler struct {
	postService       *service.PostService
	engagementService *service.EngagementService
}

func NewPostHandler(postService *service.PostService, engagementService *service.EngagementService) *PostHandler {
	return &PostHandler{
		postService:       postService,
		engagementService: engagementService,
	}
}

type postRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type postResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	HTMLContent string           `json:"html_content,omitempty"`
	AuthorID    string           `json:"author_id"`
	CreatedAt   string           `json:"created_at"`
	Likes       int              `json:"likes"`
	Comments    []*model.Comment `json:"comments,omitempty"`
	Media       []mediaResponse  `json:"media,omitempty"`
}

type mediaResponse struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	URL       string `json:"url"`
}

func (h *PostHandler) toResponse(post *model.Post) postResponse {
	resp := postResponse{
		ID:          post.ID,
		Title:       post.Title,
		Slug:        post.Slug,
		HTMLContent: post.HTMLContent,
		AuthorID:    post.AuthorID,
		CreatedAt:   post.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Likes:       post.Likes,
		Comments:    post.Comments,
	}
	for _, m := range post.Media {
		resp.Media = append(resp.Media, mediaResponse{
			ID:        m.ID,
			MediaType: string(m.MediaType),
			URL:       h.postService.MediaURL(m),
		})
	}
	return resp
}

// Create publishes a new post authored by the signed-in user
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.postService.Create(user.ID, req.Title, req.Content, req.Category)
	switch {
	case errors.Is(err, service.ErrTitleRequired), errors.Is(err, service.ErrContentRequired):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.toResponse(post))
}

// Update rewrites an existing post
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	postID := r.PathValue("id")

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.postService.Update(postID, user.ID, req.Title, req.Content, req.Category)
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "post not found")
		return
	case errors.Is(err, service.ErrNotPostAuthor):
		respondError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, service.ErrTitleRequired), errors.Is(err, service.ErrContentRequired):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.toResponse(post))
}

// Delete removes a post along with its media, comments, and likes
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	postID := r.PathValue("id")

	err := h.postService.Delete(postID, user.ID, user.IsAdmin)
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "post not found")
		return
	case errors.Is(err, service.ErrNotPostAuthor):
		respondError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// List returns published posts newest first
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPublished()
	if err != nil {
		respondInternalError(w, err)
		return
	}

	resp := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		item := h.toResponse(post)
		item.HTMLContent = ""
		resp = append(resp, item)
	}
	respondJSON(w, http.StatusOK, resp)
}

// Show returns one post by slug with media, comments, and like count
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.BySlug(r.PathValue("slug"))
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "post not found")
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.toResponse(post))
}

// AttachMedia uploads a media file for a post
func (h *PostHandler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	postID := r.PathValue("id")

	post, err := h.postService.ByID(postID)
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "post not found")
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}
	if post.AuthorID != user.ID {
		respondError(w, http.StatusForbidden, "only the author can attach media")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	media, err := h.postService.AttachMedia(postID, header.Filename, file)
	switch {
	case errors.Is(err, service.ErrUnsupportedMedia):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mediaResponse{
		ID:        media.ID,
		MediaType: string(media.MediaType),
		URL:       h.postService.MediaURL(media),
	})
}

type commentRequest struct {
	Content string `json:"content"`
}

// Comment adds a comment to a post
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	postID := r.PathValue("id")

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.engagementService.AddComment(postID, user.ID, req.Content)
	switch {
	case errors.Is(err, service.ErrEmptyComment):
		respondError(w, http.StatusBadRequest, "comment cannot be empty")
		return
	case errors.Is(err, repository.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "post not found")
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, comment)
}

// ToggleLike flips the signed-in user's like on a post
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	postID := r.PathValue("id")

	liked, err := h.engagementService.ToggleLike(postID, user.ID)
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "post not found")
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
