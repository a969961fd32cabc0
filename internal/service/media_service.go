package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	config "github.com/promura/backend/configs"
	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/transfer"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrMediaNotFound = errors.New("media not found")

const thumbnailMax = 300

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".webm": {},
}

type MediaService interface {
	Add(ctx context.Context, content []byte, filename string, tags []string, description string) (*models.MediaItem, error)
	Get(ctx context.Context, id string) (*models.MediaItem, error)
	List(ctx context.Context, mediaType string, tags []string) ([]*models.MediaItem, error)
	Search(ctx context.Context, query string) ([]*models.MediaItem, error)
	IncrementUsage(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*transfer.MediaStats, error)
}

type mediaService struct {
	cfg config.Config
	mr  repository.MediaRepository
}

func NewMediaService(cfg config.Config, mr repository.MediaRepository) MediaService {
	return &mediaService{cfg: cfg, mr: mr}
}

// MediaID derives the library id for an upload: filename stem plus the
// first 8 hex characters of the content hash. Identical bytes under the
// same name always collide, which is what makes ingestion idempotent.
func MediaID(filename string, content []byte) string {
	sum := sha256.Sum256(content)
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return fmt.Sprintf("%s_%s", stem, hex.EncodeToString(sum[:])[:8])
}

func mediaTypeOf(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageExtensions[ext]; ok {
		return models.MediaTypeImage, nil
	}
	if _, ok := videoExtensions[ext]; ok {
		return models.MediaTypeVideo, nil
	}
	return "", fmt.Errorf("unsupported file type: %s", ext)
}

func typeDir(mediaType string) string {
	if mediaType == models.MediaTypeVideo {
		return "videos"
	}
	return "images"
}

func formatSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", value)
}

// Add stores an upload in the library. Re-uploading identical bytes under
// the same filename is idempotent: the existing entry gets its usage count
// bumped and no file is written.
func (s *mediaService) Add(ctx context.Context, content []byte, filename string, tags []string, description string) (*models.MediaItem, error) {
	mediaType, err := mediaTypeOf(filename)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	id := MediaID(filename, content)
	existing, found, err := s.mr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found {
		existing.UsageCount++
		if _, err := s.mr.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	dir := typeDir(mediaType)
	originalDir := filepath.Join(s.cfg.LibraryPath, dir, "original")
	thumbDir := filepath.Join(s.cfg.LibraryPath, dir, "thumbnails")
	for _, d := range []string{originalDir, thumbDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
	}

	// Keep the upload's name, suffixing a counter when it is taken.
	base := filepath.Base(filename)
	path := filepath.Join(originalDir, base)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(originalDir, fmt.Sprintf("%s_%d%s", stem, counter, filepath.Ext(base)))
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	item := &models.MediaItem{
		ID:            id,
		Filename:      filepath.Base(path),
		OriginalName:  filename,
		Type:          mediaType,
		Path:          path,
		ThumbnailPath: path,
		URL:           fmt.Sprintf("/static/library/%s/original/%s", dir, filepath.Base(path)),
		ThumbnailURL:  fmt.Sprintf("/static/library/%s/original/%s", dir, filepath.Base(path)),
		UploadDate:    time.Now(),
		FileSize:      formatSize(int64(len(content))),
		FileSizeBytes: int64(len(content)),
		UsageCount:    1,
		Tags:          tags,
		Description:   description,
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	now := time.Now()
	item.LastUsed = &now

	// Only images get a real thumbnail; videos point at the original.
	if mediaType == models.MediaTypeImage {
		if thumbPath, width, height, err := s.writeThumbnail(path, thumbDir); err != nil {
			slog.Info("thumbnail generation failed", "file", path, "error", err)
		} else {
			item.ThumbnailPath = thumbPath
			item.ThumbnailURL = fmt.Sprintf("/static/library/%s/thumbnails/%s", dir, filepath.Base(thumbPath))
			item.Width = width
			item.Height = height
			item.Dimensions = fmt.Sprintf("%dx%d", width, height)
		}
	}

	if err := s.mr.Add(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// writeThumbnail scales the image to fit within thumbnailMax pixels and
// writes it as JPEG next to the originals. Returns the thumbnail path and
// the source dimensions.
func (s *mediaService) writeThumbnail(path, thumbDir string) (string, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, 0, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", 0, 0, err
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	thumbW, thumbH := width, height
	if width > thumbnailMax || height > thumbnailMax {
		if width >= height {
			thumbW = thumbnailMax
			thumbH = height * thumbnailMax / width
		} else {
			thumbH = thumbnailMax
			thumbW = width * thumbnailMax / height
		}
	}
	if thumbW < 1 {
		thumbW = 1
	}
	if thumbH < 1 {
		thumbH = 1
	}

	thumb := image.NewRGBA(image.Rect(0, 0, thumbW, thumbH))
	draw.CatmullRom.Scale(thumb, thumb.Bounds(), src, bounds, draw.Over, nil)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	thumbPath := filepath.Join(thumbDir, stem+"_thumb.jpg")
	out, err := os.Create(thumbPath)
	if err != nil {
		return "", 0, 0, err
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", 0, 0, err
	}
	return thumbPath, width, height, nil
}

func (s *mediaService) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	item, found, err := s.mr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrMediaNotFound
	}
	return item, nil
}

func (s *mediaService) List(ctx context.Context, mediaType string, tags []string) ([]*models.MediaItem, error) {
	library, err := s.mr.Library(ctx)
	if err != nil {
		return nil, err
	}

	var items []*models.MediaItem
	switch mediaType {
	case models.MediaTypeImage:
		items = library.Images
	case models.MediaTypeVideo:
		items = library.Videos
	default:
		items = append(library.Images, library.Videos...)
	}

	if len(tags) == 0 {
		return items, nil
	}

	var matched []*models.MediaItem
	for _, item := range items {
		for _, want := range tags {
			if hasTag(item.Tags, want) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched, nil
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

func (s *mediaService) Search(ctx context.Context, query string) ([]*models.MediaItem, error) {
	library, err := s.mr.Library(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var matched []*models.MediaItem
	for _, item := range append(library.Images, library.Videos...) {
		if strings.Contains(strings.ToLower(item.Filename), query) ||
			strings.Contains(strings.ToLower(item.Description), query) {
			matched = append(matched, item)
			continue
		}
		for _, tag := range item.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched, nil
}

func (s *mediaService) IncrementUsage(ctx context.Context, id string) error {
	item, found, err := s.mr.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrMediaNotFound
	}

	now := time.Now()
	item.UsageCount++
	item.LastUsed = &now
	if _, err := s.mr.Update(ctx, item); err != nil {
		return err
	}
	return nil
}

// Delete removes the metadata entry and best-effort removes the files; a
// file already gone is not an error.
func (s *mediaService) Delete(ctx context.Context, id string) error {
	item, found, err := s.mr.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrMediaNotFound
	}

	if err := os.Remove(item.Path); err != nil && !os.IsNotExist(err) {
		slog.Info(err.Error())
	}
	if item.ThumbnailPath != item.Path {
		if err := os.Remove(item.ThumbnailPath); err != nil && !os.IsNotExist(err) {
			slog.Info(err.Error())
		}
	}
	return nil
}

func (s *mediaService) Stats(ctx context.Context) (*transfer.MediaStats, error) {
	library, err := s.mr.Library(ctx)
	if err != nil {
		return nil, err
	}

	var totalSize int64
	var mostUsed *models.MediaItem
	for _, item := range append(library.Images, library.Videos...) {
		totalSize += item.FileSizeBytes
		if mostUsed == nil || item.UsageCount > mostUsed.UsageCount {
			mostUsed = item
		}
	}

	return &transfer.MediaStats{
		TotalItems:  library.TotalItems,
		TotalImages: len(library.Images),
		TotalVideos: len(library.Videos),
		TotalSize:   formatSize(totalSize),
		UniqueTags:  len(library.Tags),
		MostUsed:    mostUsed,
	}, nil
}
