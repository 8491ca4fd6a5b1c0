package storage

import (
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
)

// Local is filesystem storage rooted at Root. It has no multipart protocol;
// it exists so callers can ask multipart.Supported before routing uploads.
type Local struct {
	Root string

	// FS is the filesystem chrooted at Root.
	FS fs.Filesystem
}

// NewLocal builds a Local store backed by the OS filesystem under root.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("root cannot be empty")
	}
	return &Local{Root: root, FS: billy.NewOSFS(root)}, nil
}
