package platform

import (
	"github.com/aretw0/quill/pkg/core"
)

// New initializes the configured store and returns a repository over it.
//
//	repo, err := platform.New("./notes", platform.WithAdapter("sqlite"))
func New(uri string, opts ...Option) (*core.Repository, error) {
	store, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}
	return core.NewRepository(store), nil
}
