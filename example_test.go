package shelf_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/YaroslavMizgirev/shelf"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// Example_basic creates a library, adds a book and reads the catalog back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "shelf-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	lib, err := shelf.New(tmpDir, shelf.WithAutoInit(true), shelf.WithVersioning(false))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	_, err = lib.Add(ctx, core.Book{
		ID:      "1",
		Title:   "The Hobbit",
		Authors: []string{"J. R. R. Tolkien"},
		Year:    1937,
		IsRead:  true,
		Type:    "Novel",
	})
	if err != nil {
		log.Fatal(err)
	}

	data, err := lib.Export(core.FormatDialect)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))
	// Output:
	// id,title,authors,year,edition,storage_name,storage_path,isRead,type
	// 1,"The Hobbit","J. R. R. Tolkien",1937,"","Not specified","",true,"Novel"
}
