// Package bloco is the composition root for the bloco note engine.
//
// It wires the note store (pkg/core) to a storage adapter chosen by name
// (filesystem, SQLite or memory) using functional options.
//
// Notes are kept most-recently-updated first, exactly one of them may be
// active, and every committed change is written through to storage before
// it becomes visible. Editors debounce writes with pkg/autosave and render
// with pkg/view.
//
// Usage:
//
//	store, err := bloco.Open(ctx, "./notes",
//		bloco.WithAdapter("sqlite"),
//		bloco.WithLogger(logger),
//	)
//	defer store.Close()
//
//	note, err := store.CreateNote(ctx)
//	_, err = store.SaveActiveContent(ctx, "Groceries", "milk, eggs")
package bloco
