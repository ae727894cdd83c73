package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/giovannicg/INMEDT/internal/repository"
	"github.com/giovannicg/INMEDT/internal/storage"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

const (
	// maxImageBytes caps an uploaded image at 5 MiB.
	maxImageBytes = 5 << 20

	// mainImageMaxPx is the longest-side bound for the stored main image.
	mainImageMaxPx = 800

	// thumbnailMaxPx is the longest-side bound for the thumbnail.
	thumbnailMaxPx = 200

	// jpegQuality is the encode quality for stored images.
	jpegQuality = 85
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// MediaService handles product image upload, resizing, and storage.
type MediaService struct {
	productRepo repository.ProductRepository
	storage     storage.Storage
	logger      *slog.Logger
}

// NewMediaService creates a new media service.
func NewMediaService(
	productRepo repository.ProductRepository,
	store storage.Storage,
	logger *slog.Logger,
) *MediaService {
	return &MediaService{
		productRepo: productRepo,
		storage:     store,
		logger:      logger,
	}
}

// UploadImageInput holds the parameters for uploading a product image.
type UploadImageInput struct {
	ContentType string
	Size        int64
	Data        io.Reader
}

// SetMainImage uploads an image, stores a resized copy and a thumbnail, and
// sets both on the product. The previous main image files are removed.
func (s *MediaService) SetMainImage(ctx context.Context, productID string, input UploadImageInput) (mainKey, thumbKey string, err error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return "", "", fmt.Errorf("get product for image: %w", err)
	}

	mainKey, thumbKey, err = s.storeImagePair(ctx, input)
	if err != nil {
		return "", "", err
	}

	oldMain, oldThumb := product.MainImage, product.ThumbnailImage

	if err := s.productRepo.UpdateImages(ctx, productID, mainKey, thumbKey, product.GalleryImages); err != nil {
		return "", "", fmt.Errorf("update product images: %w", err)
	}

	s.removeStored(ctx, oldMain)
	s.removeStored(ctx, oldThumb)

	s.logger.InfoContext(ctx, "product main image set",
		slog.String("product_id", productID),
		slog.String("image", mainKey),
	)

	return mainKey, thumbKey, nil
}

// AddGalleryImage uploads an image and appends it to the product gallery.
func (s *MediaService) AddGalleryImage(ctx context.Context, productID string, input UploadImageInput) (string, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("get product for gallery image: %w", err)
	}

	key, err := s.storeImage(ctx, input, mainImageMaxPx, "")
	if err != nil {
		return "", err
	}

	gallery := append(product.GalleryImages, key)
	if err := s.productRepo.UpdateImages(ctx, productID, product.MainImage, product.ThumbnailImage, gallery); err != nil {
		return "", fmt.Errorf("update product images: %w", err)
	}

	s.logger.InfoContext(ctx, "product gallery image added",
		slog.String("product_id", productID),
		slog.String("image", key),
	)

	return key, nil
}

// RemoveGalleryImage deletes a gallery image from the product and storage.
func (s *MediaService) RemoveGalleryImage(ctx context.Context, productID, key string) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product for gallery image removal: %w", err)
	}

	gallery := make([]string, 0, len(product.GalleryImages))
	found := false
	for _, g := range product.GalleryImages {
		if g == key {
			found = true
			continue
		}
		gallery = append(gallery, g)
	}
	if !found {
		return apperrors.NotFound("gallery image", key)
	}

	if err := s.productRepo.UpdateImages(ctx, productID, product.MainImage, product.ThumbnailImage, gallery); err != nil {
		return fmt.Errorf("update product images: %w", err)
	}

	s.removeStored(ctx, key)

	s.logger.InfoContext(ctx, "product gallery image removed",
		slog.String("product_id", productID),
		slog.String("image", key),
	)

	return nil
}

// ImageURL returns the public URL for a stored image key.
func (s *MediaService) ImageURL(ctx context.Context, key string) (string, error) {
	return s.storage.GetURL(ctx, key)
}

// --- Helpers ---

// storeImagePair stores the resized main image and its thumbnail, decoding
// the source only once.
func (s *MediaService) storeImagePair(ctx context.Context, input UploadImageInput) (string, string, error) {
	src, err := s.decode(input)
	if err != nil {
		return "", "", err
	}

	id := uuid.New().String()

	mainKey := id + ".jpg"
	if err := s.encodeAndUpload(ctx, src, mainImageMaxPx, mainKey); err != nil {
		return "", "", err
	}

	thumbKey := "thumb_" + mainKey
	if err := s.encodeAndUpload(ctx, src, thumbnailMaxPx, thumbKey); err != nil {
		s.removeStored(ctx, mainKey)
		return "", "", err
	}

	return mainKey, thumbKey, nil
}

// storeImage stores a single resized image under a fresh key.
func (s *MediaService) storeImage(ctx context.Context, input UploadImageInput, maxPx int, prefix string) (string, error) {
	src, err := s.decode(input)
	if err != nil {
		return "", err
	}

	key := prefix + uuid.New().String() + ".jpg"
	if err := s.encodeAndUpload(ctx, src, maxPx, key); err != nil {
		return "", err
	}

	return key, nil
}

func (s *MediaService) decode(input UploadImageInput) (image.Image, error) {
	if !allowedImageTypes[input.ContentType] {
		return nil, apperrors.InvalidInput(fmt.Sprintf("content type %q is not allowed", input.ContentType))
	}
	if input.Size <= 0 {
		return nil, apperrors.InvalidInput("image size must be greater than zero")
	}
	if input.Size > maxImageBytes {
		return nil, apperrors.InvalidInput(fmt.Sprintf("image exceeds maximum size of %d bytes", maxImageBytes))
	}

	src, _, err := image.Decode(io.LimitReader(input.Data, maxImageBytes+1))
	if err != nil {
		return nil, apperrors.InvalidInput("file is not a decodable image")
	}

	return src, nil
}

func (s *MediaService) encodeAndUpload(ctx context.Context, src image.Image, maxPx int, key string) error {
	resized := resizeToFit(src, maxPx)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}

	if _, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: "image/jpeg",
		Size:        int64(buf.Len()),
		Data:        &buf,
	}); err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	return nil
}

func (s *MediaService) removeStored(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete stored image",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// resizeToFit scales the image so its longest side is at most maxPx,
// preserving aspect ratio. Smaller images pass through untouched.
func resizeToFit(src image.Image, maxPx int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w <= maxPx && h <= maxPx {
		return src
	}

	var nw, nh int
	if w > h {
		nw = maxPx
		nh = h * maxPx / w
	} else {
		nh = maxPx
		nw = w * maxPx / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
