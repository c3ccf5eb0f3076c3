package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/storage"
)

const (
	// maxInquiryImageSize caps each attachment at 5 MiB; object storage
	// enforces the same limit on the signed PUT.
	maxInquiryImageSize = 5 << 20
	uploadURLTTL        = 15 * time.Minute
)

// allowedInquiryImageTypes is the closed set of attachment content types.
var allowedInquiryImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
}

// UploadSigner mints signed object-storage URLs.
type UploadSigner interface {
	SignedURL(ctx context.Context, bucket, object string, opts storage.SignedURLOptions) (storage.SignedURLResult, error)
}

// UploadServiceDeps bundles constructor inputs for the upload service.
type UploadServiceDeps struct {
	Signer        UploadSigner
	Bucket        string
	PublicBaseURL string
	IDGen         func() string
}

type uploadService struct {
	signer        UploadSigner
	bucket        string
	publicBaseURL string
	idGen         func() string
}

// NewUploadService constructs the pre-signed upload target service.
func NewUploadService(deps UploadServiceDeps) (UploadService, error) {
	if deps.Signer == nil {
		return nil, errors.New("upload service: signer is required")
	}
	bucket := strings.TrimSpace(deps.Bucket)
	if bucket == "" {
		return nil, errors.New("upload service: bucket is required")
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &uploadService{
		signer:        deps.Signer,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(deps.PublicBaseURL), "/"),
		idGen:         idGen,
	}, nil
}

// CreateUploadTargets issues one pre-signed PUT URL per declared file. Nothing
// is persisted here; the client uploads directly to object storage and then
// submits the inquiry referencing the resulting public URLs.
func (s *uploadService) CreateUploadTargets(ctx context.Context, cmd CreateUploadTargetsCommand) ([]UploadTarget, error) {
	var fields []FieldError
	if len(cmd.Files) == 0 {
		fields = append(fields, FieldError{Field: "files", Message: "at least one file is required"})
	}
	if len(cmd.Files) > domain.MaxInquiryImages {
		fields = append(fields, FieldError{Field: "files", Message: fmt.Sprintf("at most %d files are allowed", domain.MaxInquiryImages)})
	}
	for i, file := range cmd.Files {
		if strings.TrimSpace(file.FileName) == "" {
			fields = append(fields, FieldError{Field: fmt.Sprintf("files[%d].filename", i), Message: "is required"})
		}
		if !allowedImageContentType(file.ContentType) {
			fields = append(fields, FieldError{Field: fmt.Sprintf("files[%d].contentType", i), Message: "must be an image type"})
		}
		if file.Size > maxInquiryImageSize {
			fields = append(fields, FieldError{Field: fmt.Sprintf("files[%d].size", i), Message: "must be at most 5 MiB"})
		}
	}
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	uploadID := s.idGen()
	targets := make([]UploadTarget, 0, len(cmd.Files))
	for _, file := range cmd.Files {
		objectKey, err := storage.BuildObjectPath(storage.PurposeInquiryImage, storage.PathParams{
			UploadID: uploadID,
			FileName: file.FileName,
		})
		if err != nil {
			return nil, &ValidationError{Fields: []FieldError{{Field: "filename", Message: err.Error()}}}
		}

		result, err := s.signer.SignedURL(ctx, s.bucket, objectKey, storage.SignedURLOptions{
			Upload: &storage.UploadOptions{
				Method:              "PUT",
				ContentType:         strings.TrimSpace(file.ContentType),
				AllowedContentTypes: allowedInquiryImageTypes,
				MaxSize:             maxInquiryImageSize,
				ExpiresIn:           uploadURLTTL,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
		}

		targets = append(targets, UploadTarget{
			UploadURL: result.URL,
			PublicURL: s.publicURL(objectKey),
			ObjectKey: objectKey,
			ExpiresAt: result.ExpiresAt,
		})
	}
	return targets, nil
}

func (s *uploadService) publicURL(objectKey string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + objectKey
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectKey)
}

func allowedImageContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range allowedInquiryImageTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
