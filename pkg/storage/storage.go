package storage

import (
	"context"
)

// File describes content stored by an Uploader.
type File struct {
	Name string
	Type string
	URI  string
}

// Uploader stores content off-chain and returns where it can be fetched from.
type Uploader interface {
	UploadFile(ctx context.Context, data []byte, name string) (*File, error)
}
