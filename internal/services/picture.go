package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"

	"github.com/profilehub/apiserver/internal/storage"
	"github.com/profilehub/apiserver/internal/store"
	"github.com/profilehub/apiserver/types"
)

// MaxPictureBytes is the upload size limit for profile pictures.
const MaxPictureBytes = 2 << 20

// extensionByContentType is the upload allow-list. Anything absent here
// is rejected before a single byte is written.
var extensionByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ProfilePictureRepository defines persistence operations for picture
// metadata.
type ProfilePictureRepository interface {
	Create(ctx context.Context, picture types.ProfilePicture) (types.ProfilePicture, error)
	GetByFileName(ctx context.Context, fileName string) (types.ProfilePicture, error)
	GetLatestByUserID(ctx context.Context, userID int) (types.ProfilePicture, error)
}

// UserFinder is the slice of the user store the picture service needs.
type UserFinder interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// ProfilePictureService gates object access by ownership and visibility
// tier. Secure retrieval requires the caller to own the requested object;
// public retrieval relies on the object name being unguessable.
type ProfilePictureService struct {
	users    UserFinder
	pictures ProfilePictureRepository
	storage  *storage.Storage
}

func NewProfilePictureService(users UserFinder, pictures ProfilePictureRepository, objectStorage *storage.Storage) *ProfilePictureService {
	return &ProfilePictureService{
		users:    users,
		pictures: pictures,
		storage:  objectStorage,
	}
}

// Upload validates, stores, and records a new profile picture for the
// user. The object name is server-generated and never derived from the
// client filename, so names stay unique and non-enumerable.
func (s *ProfilePictureService) Upload(ctx context.Context, userID int, data []byte, contentType string) (types.ProfilePicture, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ProfilePicture{}, err
		}
		return types.ProfilePicture{}, upstream(err)
	}

	ext, ok := extensionByContentType[contentType]
	if !ok {
		return types.ProfilePicture{}, ErrUnsupportedFormat
	}
	if len(data) == 0 {
		return types.ProfilePicture{}, ErrEmptyFile
	}
	if len(data) > MaxPictureBytes {
		return types.ProfilePicture{}, ErrFileTooLarge
	}

	fileName := generateFileName(ext)

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return types.ProfilePicture{}, upstream(err)
	}
	if err := s.storage.Put(ctx, fileName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.ProfilePicture{}, upstream(err)
	}

	picture, err := s.pictures.Create(ctx, types.ProfilePicture{
		UserID:      userID,
		FileName:    fileName,
		Bucket:      s.storage.Bucket(),
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		// The object is already written; without a metadata row it is
		// unreachable, so reclaim it best-effort.
		if deleteErr := s.storage.Delete(ctx, fileName); deleteErr != nil {
			log.Printf("orphaned object %s left in bucket %s: %v", fileName, s.storage.Bucket(), deleteErr)
		}
		return types.ProfilePicture{}, upstream(err)
	}
	return picture, nil
}

// FetchSecure returns the object bytes and content type for an
// authenticated owner. Ownership is checked against the specific
// requested object, not merely whether the caller has any picture.
func (s *ProfilePictureService) FetchSecure(ctx context.Context, userID int, fileName string) ([]byte, string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", upstream(err)
	}

	picture, err := s.pictures.GetByFileName(ctx, fileName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", upstream(err)
	}
	if picture.UserID != userID {
		return nil, "", ErrNotOwner
	}

	return s.fetchBytes(ctx, picture)
}

// FetchPublic returns the object bytes and content type for any caller
// presenting a valid generated name. The unguessability of the name is
// the only protection on this tier.
func (s *ProfilePictureService) FetchPublic(ctx context.Context, fileName string) ([]byte, string, error) {
	picture, err := s.pictures.GetByFileName(ctx, fileName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", upstream(err)
	}

	return s.fetchBytes(ctx, picture)
}

// Current returns the metadata row of the user's most recent picture.
func (s *ProfilePictureService) Current(ctx context.Context, userID int) (types.ProfilePicture, error) {
	picture, err := s.pictures.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ProfilePicture{}, err
		}
		return types.ProfilePicture{}, upstream(err)
	}
	return picture, nil
}

func (s *ProfilePictureService) fetchBytes(ctx context.Context, picture types.ProfilePicture) ([]byte, string, error) {
	data, err := s.storage.GetBytes(ctx, picture.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			// Metadata exists but the object vanished from storage.
			return nil, "", store.ErrNotFound
		}
		return nil, "", upstream(err)
	}
	return data, picture.ContentType, nil
}

func generateFileName(ext string) string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source; there is nothing sensible to fall back to.
		panic(err)
	}
	return hex.EncodeToString(buf[:]) + ext
}
