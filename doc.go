// Package quill is the Composition Root for the Quill note core.
//
// It connects the domain (notes, palette, repository) with the storage
// adapters and the view-state controllers using the Hexagonal Architecture
// pattern.
//
// Features:
//
//   - **Live Reads**: every query is a stream that re-emits on mutation and
//     closes when its context ends.
//   - **Pluggable Storage**: Markdown files (default), SQLite or memory,
//     behind `core.Store`.
//   - **Upsert**: one save path for new and existing notes.
//   - **Controllers**: an Editor buffer and a List projection that never
//     block the caller on storage.
//
// Usage:
//
//	repo, err := quill.New("./notes", quill.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer repo.Close()
//
//	editor := quill.NewEditor(repo)
//	editor.SetTitle("Groceries")
//	editor.AppendBullet()
//	id, err := editor.Save(ctx)
package quill
