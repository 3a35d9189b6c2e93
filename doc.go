// Package shelf is the composition root for the shelf book catalog.
//
// It connects the collection synchronizer (pkg/core) and the catalog dialect
// codec (pkg/dialect) with a storage adapter: a plain library directory,
// optionally versioned with Git, or an SQLite snapshot log.
//
// The catalog is a single delimited text document (lib.csv by default) with
// nine columns: id, title, authors, year, edition, storage_name,
// storage_path, isRead and type. Reading is lenient: missing values get
// placeholders and short rows are skipped. Writing always produces a
// document that reads back to the same collection.
//
// Usage:
//
//	svc, err := shelf.New("./library",
//		shelf.WithAutoInit(true),
//		shelf.WithLogger(logger),
//	)
//	if err := svc.Load(ctx); err != nil && !errors.Is(err, os.ErrNotExist) {
//		return err
//	}
//	book, err := svc.Add(ctx, core.Book{Title: "Dune", Authors: []string{"Frank Herbert"}})
package shelf
