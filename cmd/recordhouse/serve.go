package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recordhouse/recordhouse/books"
	"github.com/recordhouse/recordhouse/httpapi"
	"github.com/recordhouse/recordhouse/internal/seed"
	"github.com/recordhouse/recordhouse/store"
	"github.com/recordhouse/recordhouse/todos"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the books and todos APIs over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("db", "recordhouse.sqlite3", "SQLite database path for the todos table")
	serveCmd.Flags().String("snapshot", "", "Optional JSON snapshot path for the book catalog")
	serveCmd.Flags().String("seed", "", "Optional YAML fixture loaded into empty stores on startup")
	for _, key := range []string{"addr", "db", "snapshot", "seed"} {
		_ = viper.BindPFlag(key, serveCmd.Flags().Lookup(key))
	}
}

func serve(ctx context.Context) error {
	logger := initLogging(viper.GetString("log-level"))

	db, err := sql.Open("sqlite3", viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	todoStore, err := store.NewSQL[todos.Todo](ctx, db, "todo", "todos")
	if err != nil {
		return err
	}

	var opts []store.MemoryOption
	if path := viper.GetString("snapshot"); path != "" {
		opts = append(opts, store.WithSnapshot(path))
	}
	bookStore, err := store.NewMemory[books.Book]("book", opts...)
	if err != nil {
		return err
	}

	if path := viper.GetString("seed"); path != "" {
		if err := seedStores(ctx, path, bookStore, todoStore); err != nil {
			return err
		}
		logger.Info("seeded stores", "path", path)
	}

	srv := &http.Server{
		Addr:              viper.GetString("addr"),
		Handler:           httpapi.New(bookStore, todoStore, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// seedStores loads the fixture into stores that are still empty, so a
// restart with a snapshot or an existing database never duplicates records.
func seedStores(ctx context.Context, path string, bookStore store.Store[books.Book], todoStore store.Store[todos.Todo]) error {
	f, err := seed.Load(path)
	if err != nil {
		return err
	}
	existingBooks, err := bookStore.List(ctx, store.ListOptions{})
	if err != nil {
		return err
	}
	if len(existingBooks) > 0 {
		f.Books = nil
	}
	existingTodos, err := todoStore.List(ctx, store.ListOptions{})
	if err != nil {
		return err
	}
	if len(existingTodos) > 0 {
		f.Todos = nil
	}
	return f.Apply(ctx, bookStore, todoStore)
}
