// Package httpapi exposes the record stores over HTTP. Handlers receive
// their store by explicit injection so tests can run against isolated
// stores; nothing in this package holds global state.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/recordhouse/recordhouse/books"
	"github.com/recordhouse/recordhouse/store"
	"github.com/recordhouse/recordhouse/todos"
)

// Server wires the book and todo stores to their routes.
type Server struct {
	books  store.Store[books.Book]
	todos  store.Store[todos.Todo]
	logger *slog.Logger
}

// New builds a Server over the given stores.
func New(bookStore store.Store[books.Book], todoStore store.Store[todos.Todo], logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{books: bookStore, todos: todoStore, logger: logger}
}

// Router returns the full route table. Lookup routes are registered before
// the {id} routes so "/books/title/..." never collides with "/books/{id}".
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.HandleFunc("/books", s.listBooks).Methods(http.MethodGet)
	r.HandleFunc("/books", s.createBook).Methods(http.MethodPost)
	r.HandleFunc("/books/update", s.updateBookByTitleAuthor).Methods(http.MethodPut)
	r.HandleFunc("/books/delete", s.deleteBookByTitleAuthor).Methods(http.MethodDelete)
	r.HandleFunc("/books/title/{title}", s.getBookByTitle).Methods(http.MethodGet)
	r.HandleFunc("/books/category/{category}", s.listBooksByCategory).Methods(http.MethodGet)
	r.HandleFunc("/books/author/{author}", s.listBooksByAuthor).Methods(http.MethodGet)
	r.HandleFunc("/books/rating/{rating:[0-9.]+}", s.listBooksByRating).Methods(http.MethodGet)
	r.HandleFunc("/books/{id:[0-9]+}", s.getBook).Methods(http.MethodGet)
	r.HandleFunc("/books/{id:[0-9]+}", s.updateBook).Methods(http.MethodPut)
	r.HandleFunc("/books/{id:[0-9]+}", s.deleteBook).Methods(http.MethodDelete)

	r.HandleFunc("/todos", s.listTodos).Methods(http.MethodGet)
	r.HandleFunc("/todos", s.createTodo).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id:[0-9]+}", s.getTodo).Methods(http.MethodGet)
	r.HandleFunc("/todos/{id:[0-9]+}", s.updateTodo).Methods(http.MethodPut)
	r.HandleFunc("/todos/{id:[0-9]+}", s.deleteTodo).Methods(http.MethodDelete)

	return r
}
