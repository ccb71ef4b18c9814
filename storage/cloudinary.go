package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ErrForeignPhoto is returned when a photo was not uploaded by the given
// owner into the configured folder.
var ErrForeignPhoto = errors.New("photo does not belong to owner")

// PhotoStore keeps issue photos on Cloudinary.
type PhotoStore struct {
	client *cloudinary.Cloudinary
	folder string
}

func NewPhotoStore(cloudinaryURL, folder string) (*PhotoStore, error) {
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &PhotoStore{client: client, folder: folder}, nil
}

// Upload stores an image and returns its secure URL.
func (s *PhotoStore) Upload(ctx context.Context, file io.Reader, ownerID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	overwrite := false
	result, err := s.client.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       fmt.Sprintf("issue_%s_%s", ownerID, uuid.NewString()),
		ResourceType:   "image",
		Overwrite:      &overwrite,
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload failed: %s", result.Error.Message)
	}

	return result.SecureURL, nil
}

func (s *PhotoStore) Owns(photoURL, ownerID string) bool {
	_, ok := OwnedPublicID(photoURL, s.folder, ownerID)
	return ok
}

// Destroy removes a photo ownerID uploaded. Anything else is refused with
// ErrForeignPhoto.
func (s *PhotoStore) Destroy(ctx context.Context, photoURL, ownerID string) error {
	publicID, ok := OwnedPublicID(photoURL, s.folder, ownerID)
	if !ok {
		return ErrForeignPhoto
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}
	return nil
}

// PublicID extracts the Cloudinary public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v123/folder/name.jpg.
func PublicID(url string) string {
	parts := strings.SplitN(url, "/upload/", 2)
	if len(parts) < 2 || parts[1] == "" {
		return ""
	}

	segments := strings.Split(parts[1], "/")
	if len(segments) > 1 && isVersion(segments[0]) {
		segments = segments[1:]
	}

	publicID := strings.Join(segments, "/")
	if dot := strings.LastIndex(publicID, "."); dot != -1 {
		publicID = publicID[:dot]
	}
	return publicID
}

// OwnedPublicID returns the public id of photoURL when it names an asset
// Upload created for ownerID directly under folder.
func OwnedPublicID(photoURL, folder, ownerID string) (string, bool) {
	publicID := PublicID(photoURL)
	if publicID == "" || ownerID == "" {
		return "", false
	}

	prefix := "issue_" + ownerID + "_"
	if folder = strings.Trim(folder, "/"); folder != "" {
		prefix = folder + "/" + prefix
	}
	rest, ok := strings.CutPrefix(publicID, prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return publicID, true
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
