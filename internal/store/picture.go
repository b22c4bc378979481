package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/profilehub/apiserver/types"
)

// ProfilePictureRepository handles persistence for profile picture metadata.
type ProfilePictureRepository struct {
	db *sql.DB
}

func NewProfilePictureRepository(db *sql.DB) *ProfilePictureRepository {
	return &ProfilePictureRepository{db: db}
}

func (r *ProfilePictureRepository) Create(ctx context.Context, picture types.ProfilePicture) (types.ProfilePicture, error) {
	picture.CreatedAt = time.Now()

	const query = `
		INSERT INTO profile_pictures (user_id, file_name, bucket, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		picture.UserID,
		picture.FileName,
		picture.Bucket,
		picture.Size,
		picture.ContentType,
		picture.CreatedAt,
	).Scan(&picture.ID); err != nil {
		if isUniqueViolation(err) {
			return types.ProfilePicture{}, ErrConflict
		}
		return types.ProfilePicture{}, err
	}
	return picture, nil
}

func (r *ProfilePictureRepository) GetByFileName(ctx context.Context, fileName string) (types.ProfilePicture, error) {
	const query = `
		SELECT id, user_id, file_name, bucket, size, content_type, created_at
		FROM profile_pictures
		WHERE file_name = $1`
	return r.scanPicture(r.db.QueryRowContext(ctx, query, fileName))
}

// GetLatestByUserID returns the user's current picture, i.e. the most
// recently created row. History is additive; superseded rows remain.
func (r *ProfilePictureRepository) GetLatestByUserID(ctx context.Context, userID int) (types.ProfilePicture, error) {
	const query = `
		SELECT id, user_id, file_name, bucket, size, content_type, created_at
		FROM profile_pictures
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanPicture(r.db.QueryRowContext(ctx, query, userID))
}

func (r *ProfilePictureRepository) scanPicture(row *sql.Row) (types.ProfilePicture, error) {
	var picture types.ProfilePicture
	err := row.Scan(
		&picture.ID,
		&picture.UserID,
		&picture.FileName,
		&picture.Bucket,
		&picture.Size,
		&picture.ContentType,
		&picture.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ProfilePicture{}, ErrNotFound
		}
		return types.ProfilePicture{}, err
	}
	return picture, nil
}
