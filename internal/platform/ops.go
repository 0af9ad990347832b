package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/quill/pkg/adapters/fs"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/adapters/sqlite"
	"github.com/aretw0/quill/pkg/core"
)

// Init builds and initializes the configured store.
// The URI argument is adapter-specific: a directory for "fs", a database file
// (or ":memory:") for "sqlite", ignored for "memory".
func Init(uri string, opts ...Option) (core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// 1. Check for injected store
	if o.store != nil {
		return o.store, nil
	}

	// 2. Build based on Adapter
	var store core.Store
	switch o.adapter {
	case AdapterFS:
		store = fs.NewStore(fs.Config{
			Path:         resolve(uri, o),
			SystemDir:    o.systemDir,
			MustExist:    o.mustExist,
			ReadOnly:     o.readOnly,
			Watch:        o.watch,
			Logger:       o.logger,
			ErrorHandler: o.errorHandler,
		})
	case AdapterSQLite:
		path := uri
		if path == "" {
			path = "notes.db"
		}
		if path != sqlite.MemoryPath {
			path = resolve(path, o)
		}
		store = sqlite.NewStore(sqlite.Config{
			Path:   path,
			Driver: o.driver,
			Logger: o.logger,
		})
	case AdapterMemory:
		store = memory.NewStore(o.logger)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	// 3. Run Initialization
	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// resolve applies the dev sandbox to a data path.
func resolve(path string, o *options) string {
	// Read-only access cannot damage anything, so it skips the sandbox.
	bypassSafety := o.readOnly || !o.devSafety
	dev := IsDevRun()
	useTemp := o.forceTemp || (dev && !bypassSafety)
	resolved := ResolvePath(path, useTemp)

	if dev && o.logger != nil {
		switch {
		case o.readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypassSafety:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	return resolved
}
