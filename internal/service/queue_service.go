package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/promura/backend/configs"
	"github.com/promura/backend/internal/metrics"
	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/transfer"
)

var (
	ErrPostNotFound    = errors.New("post not found in queue")
	ErrEmptyContent    = errors.New("post content cannot be empty")
	ErrInvalidSchedule = errors.New("invalid schedule time format")
)

const scheduleTimeLayout = "2006-01-02T15:04"

var allowedUploadTypes = map[string]bool{
	"mp4":  true,
	"mov":  true,
	"avi":  true,
	"webm": true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// QueueService owns the in-memory post queue. Pending and history are
// disjoint: a post scheduled for later sits in pending until cancelled
// or deleted, an immediate post goes straight through the poster and
// lands in history.
type QueueService interface {
	Schedule(ctx context.Context, pc *transfer.PostCreation, uploads []*multipart.FileHeader) (*models.Post, string, error)
	Queue(ctx context.Context) (pending, history []*models.Post)
	History(ctx context.Context) []*models.Post
	Cancel(ctx context.Context, id string) (*models.Post, error)
	Edit(ctx context.Context, id string, edit *transfer.PostEdit) (*models.Post, error)
	Delete(ctx context.Context, id string) (*models.Post, error)
}

type queueService struct {
	mu          sync.Mutex
	pending     []*models.Post
	history     []*models.Post
	uploadDir   string
	media       MediaService
	poster      PosterService
	suggestions SuggestionService
	collector   *metrics.Collector
}

func NewQueueService(cfg config.Config, ms MediaService, ps PosterService, ss SuggestionService, collector *metrics.Collector) QueueService {
	return &queueService{
		uploadDir:   cfg.UploadPath,
		media:       ms,
		poster:      ps,
		suggestions: ss,
		collector:   collector,
	}
}

func parseJSONList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func (s *queueService) saveUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}

	kind, _ := filetype.Match(content)
	if kind == filetype.Unknown || !allowedUploadTypes[kind.Extension] {
		return "", fmt.Errorf("unsupported file type for %s", fh.Filename)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	name := id + "_" + filepath.Base(fh.Filename)
	path := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Schedule builds a post from caption text, library references, and
// fresh uploads. Without a schedule time the post goes out immediately
// through the external poster; with one it is queued as scheduled.
// The returned string is the user-facing status message.
func (s *queueService) Schedule(ctx context.Context, pc *transfer.PostCreation, uploads []*multipart.FileHeader) (*models.Post, string, error) {
	if pc.Content == "" {
		return nil, "", ErrEmptyContent
	}

	scheduleTime := ""
	if pc.ScheduleTime != "" {
		if _, err := time.Parse(scheduleTimeLayout, pc.ScheduleTime); err != nil {
			return nil, "", ErrInvalidSchedule
		}
		scheduleTime = pc.ScheduleTime
	}

	post := &models.Post{
		ID:        uuid.NewString(),
		Content:   pc.Content,
		Models:    parseJSONList(pc.Models),
		CreatedAt: time.Now(),
	}

	for _, id := range parseJSONList(pc.LibraryMediaIDs) {
		item, err := s.media.Get(ctx, id)
		if err != nil {
			slog.Warn("skipping missing library media", "media_id", id)
			continue
		}
		post.MediaFiles = append(post.MediaFiles, models.PostMedia{
			Path:    item.Path,
			Source:  models.MediaSourceLibrary,
			MediaID: item.ID,
			URL:     item.URL,
		})
		post.LibraryCount++
		if err := s.media.IncrementUsage(ctx, id); err != nil {
			slog.Warn("failed to bump media usage", "media_id", id, "error", err)
		}
	}

	for _, fh := range uploads {
		path, err := s.saveUpload(fh)
		if err != nil {
			return nil, "", err
		}
		post.MediaFiles = append(post.MediaFiles, models.PostMedia{
			Path:     path,
			Source:   models.MediaSourceUpload,
			Filename: filepath.Base(fh.Filename),
		})
		post.UploadCount++
	}

	if scheduleTime != "" {
		post.ScheduleTime = &scheduleTime
		post.Status = models.PostStatusScheduled
		s.mu.Lock()
		s.pending = append(s.pending, post)
		s.mu.Unlock()
		s.collector.RecordPost(models.PostStatusScheduled)
		return post, fmt.Sprintf("Post scheduled for %s", scheduleTime), nil
	}

	post.Status = models.PostStatusPosting

	paths := make([]string, 0, len(post.MediaFiles))
	for _, m := range post.MediaFiles {
		paths = append(paths, m.Path)
	}

	// Poster call happens outside the lock; it can take minutes.
	result := s.poster.Post(ctx, post.Content, paths, "")

	now := time.Now()
	post.CompletedAt = &now
	if result.Success {
		post.Status = models.PostStatusCompleted
	} else {
		post.Status = models.PostStatusFailed
		post.Error = result.Message
		s.collector.RecordError("post_failure", result.Message)
	}
	s.collector.RecordPost(post.Status)
	s.suggestions.Record(post)

	s.mu.Lock()
	s.history = append([]*models.Post{post}, s.history...)
	s.mu.Unlock()

	message := result.Message
	if message == "" {
		message = "Post published"
	}
	return post, message, nil
}

func copyPost(p *models.Post) *models.Post {
	dup := *p
	dup.Models = append([]string(nil), p.Models...)
	dup.MediaFiles = append([]models.PostMedia(nil), p.MediaFiles...)
	return &dup
}

func (s *queueService) Queue(ctx context.Context) (pending, history []*models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pending {
		pending = append(pending, copyPost(p))
	}
	for _, p := range s.history {
		history = append(history, copyPost(p))
	}
	return pending, history
}

func (s *queueService) History(ctx context.Context) []*models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Post, 0, len(s.history))
	for _, p := range s.history {
		out = append(out, copyPost(p))
	}
	return out
}

func (s *queueService) findPending(id string) int {
	for i, p := range s.pending {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *queueService) Cancel(ctx context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPending(id)
	if i < 0 {
		return nil, ErrPostNotFound
	}
	post := s.pending[i]
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
	return copyPost(post), nil
}

func (s *queueService) Edit(ctx context.Context, id string, edit *transfer.PostEdit) (*models.Post, error) {
	if edit.ScheduleTime != nil && *edit.ScheduleTime != "" {
		if _, err := time.Parse(scheduleTimeLayout, *edit.ScheduleTime); err != nil {
			return nil, ErrInvalidSchedule
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPending(id)
	if i < 0 {
		return nil, ErrPostNotFound
	}
	post := s.pending[i]
	if edit.Content != "" {
		post.Content = edit.Content
	}
	if edit.Models != nil {
		post.Models = append([]string(nil), edit.Models...)
	}
	if edit.ScheduleTime != nil {
		t := *edit.ScheduleTime
		post.ScheduleTime = &t
	}
	return copyPost(post), nil
}

func (s *queueService) Delete(ctx context.Context, id string) (*models.Post, error) {
	s.mu.Lock()

	i := s.findPending(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, ErrPostNotFound
	}
	post := s.pending[i]
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
	s.mu.Unlock()

	// Library files stay; only files written for this post are removed.
	for _, m := range post.MediaFiles {
		if m.Source != models.MediaSourceUpload {
			continue
		}
		if err := os.Remove(m.Path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove upload", "path", m.Path, "error", err)
		}
	}
	return copyPost(post), nil
}
