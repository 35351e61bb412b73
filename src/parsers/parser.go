package parsers

import (
	"io"

	"github.com/username/sellerledger/backend/src/models"
)

// Parser turns one marketplace export into canonical transactions.
type Parser interface {
	Platform() models.Platform
	Parse(file io.Reader) (*models.ParseResult, error)
}

// Upload is a user-supplied file as received by the service.
type Upload struct {
	Filename string
	Content  []byte
	// Source optionally names the marketplace and bypasses detection.
	Source string
}
