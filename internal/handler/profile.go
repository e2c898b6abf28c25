package handler

import (
	"errors"
	"net/http"

	"github.com/visiobyte/inkwell/internal/ctxkeys"
	"github.com/visiobyte/inkwell/internal/repository"
	"github.com/visiobyte/inkwell/internal/service"
)

type ProfileHandler struct {
	userService       *service.UserService
	engagementService *service.EngagementService
}

func NewProfileHandler(userService *service.UserService, engagementService *service.EngagementService) *ProfileHandler {
	return &ProfileHandler{
		userService:       userService,
		engagementService: engagementService,
	}
}

type profilePostResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	CreatedAt    string `json:"created_at"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}

type profileResponse struct {
	Username      string                `json:"username"`
	AvatarURL     string                `json:"avatar_url,omitempty"`
	Bio           string                `json:"bio,omitempty"`
	About         string                `json:"about,omitempty"`
	Website       string                `json:"website,omitempty"`
	Location      string                `json:"location,omitempty"`
	Posts         []profilePostResponse `json:"posts"`
	TotalLikes    int                   `json:"total_likes"`
	TotalComments int                   `json:"total_comments"`
}

// Show returns a user's public profile with per-post and total engagement
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.ByUsername(r.PathValue("username"))
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	summary, err := h.engagementService.Summary(user.ID)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	resp := profileResponse{
		Username:      summary.User.Username,
		AvatarURL:     user.AvatarURL,
		TotalLikes:    summary.TotalLikes,
		TotalComments: summary.TotalComments,
		Posts:         make([]profilePostResponse, 0, len(summary.Posts)),
	}
	if summary.Profile != nil {
		resp.Bio = summary.Profile.Bio
		resp.About = summary.Profile.About
		resp.Website = summary.Profile.Website
		resp.Location = summary.Profile.Location
	}
	for _, p := range summary.Posts {
		resp.Posts = append(resp.Posts, profilePostResponse{
			ID:           p.ID,
			Title:        p.Title,
			Slug:         p.Slug,
			CreatedAt:    p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			LikeCount:    p.LikeCount,
			CommentCount: p.CommentCount,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	About    *string `json:"about"`
	Website  *string `json:"website"`
	Location *string `json:"location"`
	Gender   *string `json:"gender"`
}

// Update edits the signed-in user's profile; absent fields are untouched
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err := h.userService.UpdateProfile(user.ID, service.ProfileUpdate{
		Username: req.Username,
		Bio:      req.Bio,
		About:    req.About,
		Website:  req.Website,
		Location: req.Location,
		Gender:   req.Gender,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		respondError(w, http.StatusConflict, "username is taken")
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

// SetAvatar uploads a new profile picture
func (h *ProfileHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	_, err = h.userService.SetProfilePicture(user.ID, header.Filename, file)
	switch {
	case errors.Is(err, service.ErrUnsupportedMedia):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "avatar updated"})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdatePassword changes the signed-in user's password
func (h *ProfileHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.userService.UpdatePassword(user.ID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrWrongPassword):
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
