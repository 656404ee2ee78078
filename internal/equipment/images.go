package equipment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/clubworks/equipment-booking-backend/internal/pkg/storage"
	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

// ImageService handles equipment photo uploads and downloads.
type ImageService interface {
	Upload(ctx context.Context, equipmentID string, header *multipart.FileHeader, callerID string) (*Image, error)
	List(ctx context.Context, equipmentID string) ([]*Image, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Image, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Image, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type imageService struct {
	repo        Repository
	zoneService zone.Service
	storage     storage.Storage
	imgProc     *storage.ImageProcessor
}

// NewImageService creates the image service. zoneService is the same
// collaborator the equipment Service uses for its permission checks.
func NewImageService(repo Repository, zoneService zone.Service, store storage.Storage) ImageService {
	return &imageService{
		repo:        repo,
		zoneService: zoneService,
		storage:     store,
		imgProc:     storage.NewImageProcessor(),
	}
}

func (s *imageService) requireManagerOfItem(ctx context.Context, equipmentID, callerID string) (*Item, error) {
	item, err := s.repo.GetByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	ok, err := s.zoneService.IsZoneManager(ctx, item.ZoneID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}
	return item, nil
}

func (s *imageService) Upload(ctx context.Context, equipmentID string, header *multipart.FileHeader, callerID string) (*Image, error) {
	if _, err := s.requireManagerOfItem(ctx, equipmentID, callerID); err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Buffer the whole upload so it can be read twice (thumbnail + save).
	// Equipment photos are small enough for this.
	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	imageID := uuid.New().String()

	// Sharding path: equipment/ab/UUID.ext
	shard := imageID[:2]
	storagePath := fmt.Sprintf("equipment/%s/%s%s", shard, imageID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(fileBytes)); err != nil {
		return nil, fmt.Errorf("failed to save image to storage: %w", err)
	}

	var thumbnailPath *string
	thumbReader, err := s.imgProc.GenerateThumbnail(bytes.NewReader(fileBytes), 320, 320)
	if err != nil {
		log.Printf("thumbnail generation failed for image %s: %v", imageID, err)
	} else {
		tPath := fmt.Sprintf("equipment/%s/%s_thumb.jpg", shard, imageID)
		if err := s.storage.Save(ctx, tPath, thumbReader); err == nil {
			thumbnailPath = &tPath
		}
	}

	img := &Image{
		ID:            imageID,
		EquipmentID:   equipmentID,
		UploadedBy:    callerID,
		Filename:      header.Filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          header.Size,
	}

	if err := s.repo.CreateImage(ctx, img); err != nil {
		// Cleanup storage if db fails
		_ = s.storage.Delete(ctx, storagePath)
		if thumbnailPath != nil {
			_ = s.storage.Delete(ctx, *thumbnailPath)
		}
		return nil, err
	}

	return img, nil
}

func (s *imageService) List(ctx context.Context, equipmentID string) ([]*Image, error) {
	if _, err := s.repo.GetByID(ctx, equipmentID); err != nil {
		return nil, err
	}
	return s.repo.ListImages(ctx, equipmentID)
}

func (s *imageService) Download(ctx context.Context, id string) (io.ReadCloser, *Image, error) {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	stream, err := s.storage.Get(ctx, img.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return stream, img, nil
}

func (s *imageService) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Image, error) {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if img.ThumbnailPath == nil {
		return nil, nil, ErrImageNotFound
	}
	stream, err := s.storage.Get(ctx, *img.ThumbnailPath)
	if err != nil {
		return nil, nil, err
	}
	return stream, img, nil
}

func (s *imageService) Delete(ctx context.Context, id string, callerID string) error {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireManagerOfItem(ctx, img.EquipmentID, callerID); err != nil {
		return err
	}

	// Best-effort storage cleanup; the row is the source of truth.
	if err := s.storage.Delete(ctx, img.StoragePath); err != nil {
		log.Printf("failed to delete stored image %s: %v", img.ID, err)
	}
	if img.ThumbnailPath != nil {
		_ = s.storage.Delete(ctx, *img.ThumbnailPath)
	}

	return s.repo.DeleteImage(ctx, id)
}
