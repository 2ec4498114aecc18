package models

import "io"

// Upload is an image received from an admin form, ready to be forwarded.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// NewsInput is the form submitted to POST /news and PUT /news/{id}. When
// ThumbnailFile is set it is sent as the "thumbnail" file part, otherwise
// Thumbnail carries an already stored image URL.
type NewsInput struct {
	Title         string
	CategoryID    string
	Excerpt       string
	Content       string
	IsFeatured    bool
	Thumbnail     string
	ThumbnailFile *Upload
}
