package types

import "time"

// ProfilePicture represents the metadata row for a stored profile image.
// The bytes themselves live in object storage under FileName; this row
// binds the object to its owner.
type ProfilePicture struct {
	// ID is the unique identifier of the metadata row.
	ID int `json:"id" db:"id"`

	// UserID is the owning user. The row is removed if the user row is
	// ever deleted (ON DELETE CASCADE), though accounts are deactivated
	// rather than deleted in practice.
	UserID int `json:"user_id" db:"user_id"`

	// FileName is the server-generated, globally unique object name.
	// It is never derived from the client-supplied filename.
	FileName string `json:"file_name" db:"file_name"`

	// Bucket is the object storage bucket holding the bytes.
	Bucket string `json:"bucket" db:"bucket"`

	// Size is the object size in bytes.
	Size int64 `json:"size" db:"size"`

	// ContentType is the declared MIME type of the object.
	ContentType string `json:"content_type" db:"content_type"`

	// CreatedAt is the timestamp at which the picture was uploaded.
	// The most recently created row is the user's current picture.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
