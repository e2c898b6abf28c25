package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
)

var ErrEmptyComment = errors.New("comment cannot be empty")

// EngagementService is the likes/comments ledger and its aggregates.
type EngagementService struct {
	postRepository    repository.PostRepository
	likeRepository    repository.LikeRepository
	commentRepository repository.CommentRepository
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
}

func NewEngagementService(
	postRepository repository.PostRepository,
	likeRepository repository.LikeRepository,
	commentRepository repository.CommentRepository,
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
) *EngagementService {
	return &EngagementService{
		postRepository:    postRepository,
		likeRepository:    likeRepository,
		commentRepository: commentRepository,
		userRepository:    userRepository,
		profileRepository: profileRepository,
	}
}

// ToggleLike likes the post if the user hasn't, unlikes it if they have, and
// reports the resulting state. The unique (user_id, post_id) row is the
// invariant: an odd number of toggles leaves exactly one like, an even
// number leaves none, also under concurrent double submission.
func (s *EngagementService) ToggleLike(postID, userID string) (bool, error) {
	_, err := s.postRepository.ByID(postID)
	if err != nil {
		return false, err
	}

	liked, err := s.likeRepository.Toggle(postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}

	slog.Debug("like toggled", "post_id", postID, "user_id", userID, "liked", liked)
	return liked, nil
}

// AddComment appends a comment to the post. Blank text is rejected before
// anything is written.
func (s *EngagementService) AddComment(postID, userID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	_, err := s.postRepository.ByID(postID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: text,
	}
	err = s.commentRepository.Create(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// Comments returns the post's comments oldest first.
func (s *EngagementService) Comments(postID string) ([]*model.Comment, error) {
	return s.commentRepository.ByPost(postID)
}

// ProfileSummary aggregates engagement over everything a user authored.
type ProfileSummary struct {
	User          *model.User
	Profile       *model.Profile
	Posts         []*repository.PostCounts
	TotalLikes    int
	TotalComments int
}

// Summary recomputes like and comment totals across the user's posts from
// the current ledger state. Nothing is cached; every call reflects the
// ledger as of now.
func (s *EngagementService) Summary(userID string) (*ProfileSummary, error) {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepository.ByUserID(userID)
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}

	posts, err := s.postRepository.CountsByAuthor(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate posts: %w", err)
	}

	summary := &ProfileSummary{
		User:    user,
		Profile: profile,
		Posts:   posts,
	}
	for _, p := range posts {
		summary.TotalLikes += p.LikeCount
		summary.TotalComments += p.CommentCount
	}

	return summary, nil
}
