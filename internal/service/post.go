package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/visiobyte/inkwell/internal/markdown"
	"github.com/visiobyte/inkwell/internal/model"
	"github.com/visiobyte/inkwell/internal/repository"
	"github.com/visiobyte/inkwell/internal/slug"
	"github.com/visiobyte/inkwell/internal/storage"
)

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrContentRequired  = errors.New("content is required")
	ErrNotPostAuthor    = errors.New("only the author can modify a post")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// mediaTypeByExt mirrors the upload form's accepted extensions.
var mediaTypeByExt = map[string]model.MediaType{
	".png": model.MediaTypeImage, ".jpg": model.MediaTypeImage, ".jpeg": model.MediaTypeImage, ".gif": model.MediaTypeImage,
	".mp4": model.MediaTypeVideo, ".mov": model.MediaTypeVideo, ".avi": model.MediaTypeVideo,
	".mp3": model.MediaTypeAudio, ".wav": model.MediaTypeAudio,
}

// MediaTypeForFilename classifies an upload by extension.
func MediaTypeForFilename(filename string) (model.MediaType, error) {
	mediaType, ok := mediaTypeByExt[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, filename)
	}
	return mediaType, nil
}

type PostService struct {
	postRepository     repository.PostRepository
	mediaRepository    repository.MediaRepository
	commentRepository  repository.CommentRepository
	likeRepository     repository.LikeRepository
	categoryRepository repository.CategoryRepository
	storage            storage.Storage
	parser             *markdown.Parser
}

func NewPostService(
	postRepository repository.PostRepository,
	mediaRepository repository.MediaRepository,
	commentRepository repository.CommentRepository,
	likeRepository repository.LikeRepository,
	categoryRepository repository.CategoryRepository,
	store storage.Storage,
) *PostService {
	return &PostService{
		postRepository:     postRepository,
		mediaRepository:    mediaRepository,
		commentRepository:  commentRepository,
		likeRepository:     likeRepository,
		categoryRepository: categoryRepository,
		storage:            store,
		parser:             markdown.NewParser(),
	}
}

// Create stores a new published post. The slug derives from the title; on a
// collision a short random suffix is appended rather than failing the write.
func (s *PostService) Create(authorID, title, content, categoryName string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentRequired
	}

	var categoryID *int64
	if strings.TrimSpace(categoryName) != "" {
		category, err := s.categoryRepository.GetOrCreate(categoryName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		categoryID = &category.ID
	}

	html, err := s.parser.Parse([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("failed to render content: %w", err)
	}

	post := &model.Post{
		Title:       title,
		Slug:        slug.Make(title),
		Content:     content,
		HTMLContent: string(html),
		IsPublished: true,
		AuthorID:    authorID,
		CategoryID:  categoryID,
	}

	err = s.postRepository.Create(post)
	if errors.Is(err, repository.ErrDuplicateSlug) {
		post.Slug = fmt.Sprintf("%s-%s", post.Slug, uuid.New().String()[:8])
		err = s.postRepository.Create(post)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created", "post_id", post.ID, "slug", post.Slug, "author_id", authorID)
	return post, nil
}

// Update rewrites title, content, and category; the slug follows the title.
func (s *PostService) Update(postID, authorID, title, content, categoryName string) (*model.Post, error) {
	post, err := s.postRepository.ByID(postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, ErrNotPostAuthor
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentRequired
	}

	post.CategoryID = nil
	if strings.TrimSpace(categoryName) != "" {
		category, err := s.categoryRepository.GetOrCreate(categoryName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		post.CategoryID = &category.ID
	}

	html, err := s.parser.Parse([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("failed to render content: %w", err)
	}

	post.Title = title
	post.Slug = slug.Make(title)
	post.Content = content
	post.HTMLContent = string(html)

	err = s.postRepository.Update(post)
	if errors.Is(err, repository.ErrDuplicateSlug) {
		post.Slug = fmt.Sprintf("%s-%s", post.Slug, uuid.New().String()[:8])
		err = s.postRepository.Update(post)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// Delete removes the post and, in the same transaction, its media, comments
// and likes. Storage objects are cleaned up best effort afterwards; an
// orphaned object is better than a half-deleted post.
func (s *PostService) Delete(postID, actorID string, isAdmin bool) error {
	post, err := s.postRepository.ByID(postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID && !isAdmin {
		return ErrNotPostAuthor
	}

	paths, err := s.postRepository.DeleteCascade(postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	for _, path := range paths {
		err = s.storage.Delete(path)
		if err != nil {
			slog.Warn("failed to delete media object", "error", err, "path", path)
		}
	}

	slog.Info("post deleted", "post_id", postID, "media_removed", len(paths))
	return nil
}

// AttachMedia uploads a file and records it against the post, ordered by
// creation time.
func (s *PostService) AttachMedia(postID, filename string, file io.Reader) (*model.PostMedia, error) {
	mediaType, err := MediaTypeForFilename(filename)
	if err != nil {
		return nil, err
	}

	_, err = s.postRepository.ByID(postID)
	if err != nil {
		return nil, err
	}

	storagePath := filepath.Join("posts", postID, uuid.New().String()+strings.ToLower(filepath.Ext(filename)))
	err = s.storage.Save(storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store media: %w", err)
	}

	media := &model.PostMedia{
		PostID:      postID,
		StoragePath: storagePath,
		MediaType:   mediaType,
	}
	err = s.mediaRepository.Create(media)
	if err != nil {
		// DB insert failed: remove the stored object so nothing leaks
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to clean up media object", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to record media: %w", err)
	}

	return media, nil
}

// MediaURL resolves a media row to an accessible URL.
func (s *PostService) MediaURL(media *model.PostMedia) string {
	if media == nil {
		return ""
	}
	return s.storage.URL(media.StoragePath)
}

// BySlug loads a post with its media, comments, and like count.
func (s *PostService) BySlug(postSlug string) (*model.Post, error) {
	post, err := s.postRepository.BySlug(postSlug)
	if err != nil {
		return nil, err
	}
	return s.loadRelations(post)
}

// ByID loads a post with its media, comments, and like count.
func (s *PostService) ByID(postID string) (*model.Post, error) {
	post, err := s.postRepository.ByID(postID)
	if err != nil {
		return nil, err
	}
	return s.loadRelations(post)
}

func (s *PostService) loadRelations(post *model.Post) (*model.Post, error) {
	var err error
	post.Media, err = s.mediaRepository.ByPost(post.ID)
	if err != nil {
		return nil, err
	}
	post.Comments, err = s.commentRepository.ByPost(post.ID)
	if err != nil {
		return nil, err
	}
	post.Likes, err = s.likeRepository.CountByPost(post.ID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListPublished returns published posts newest first, without relations.
func (s *PostService) ListPublished() ([]*model.Post, error) {
	return s.postRepository.ListPublished()
}

// Categories returns all categories for the editor's picker.
func (s *PostService) Categories() ([]*model.Category, error) {
	return s.categoryRepository.All()
}

// ImportMarkdown seeds a post from a markdown file with optional
// frontmatter (title, category), falling back to the filename for the title.
func (s *PostService) ImportMarkdown(authorID, path string) (*model.Post, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown file: %w", err)
	}

	_, meta, err := s.parser.ParseWithFrontmatter(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}

	title, _ := meta["title"].(string)
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	category, _ := meta["category"].(string)

	return s.Create(authorID, title, string(source), category)
}
