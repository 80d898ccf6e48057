package storage

import "github.com/marioalfredo2411-sys/chivoferton/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}
