package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/recordhouse/recordhouse/books"
	"github.com/recordhouse/recordhouse/record"
	"github.com/recordhouse/recordhouse/store"
)

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	out, err := s.books.List(r.Context(), store.ListOptions{})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	book, err := s.books.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) getBookByTitle(w http.ResponseWriter, r *http.Request) {
	book, err := s.books.First(r.Context(), "title", mux.Vars(r)["title"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// listBooksByCategory matches the category case-insensitively. An empty
// result is a valid 200, not an error.
func (s *Server) listBooksByCategory(w http.ResponseWriter, r *http.Request) {
	out, err := s.books.List(r.Context(), store.ListOptions{Filters: []store.Filter{
		{Field: "category", Op: store.Fold, Value: mux.Vars(r)["category"]},
	}})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// listBooksByAuthor is a case-insensitive substring search; an empty result
// is a valid 200.
func (s *Server) listBooksByAuthor(w http.ResponseWriter, r *http.Request) {
	out, err := s.books.List(r.Context(), store.ListOptions{Filters: []store.Filter{
		{Field: "author", Op: store.Contains, Value: mux.Vars(r)["author"]},
	}})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// listBooksByRating treats an empty result as 404. The asymmetry with the
// category and author lookups is deliberate; each endpoint keeps the policy
// its consumers already rely on.
func (s *Server) listBooksByRating(w http.ResponseWriter, r *http.Request) {
	rating, err := strconv.ParseFloat(mux.Vars(r)["rating"], 64)
	if err != nil {
		s.writeError(w, &record.ValidationError{Fields: []record.FieldError{
			{Field: "rating", Reason: "must be a number"},
		}})
		return
	}
	out, err := s.books.List(r.Context(), store.ListOptions{Filters: []store.Filter{
		{Field: "rating", Op: store.Eq, Value: rating},
	}})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(out) == 0 {
		s.writeError(w, fmt.Errorf("no books with rating %v: %w", rating, record.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	var book books.Book
	if err := decodeBody(r, &book); err != nil {
		s.writeError(w, err)
		return
	}
	created, err := s.books.Create(r.Context(), book)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateBook(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var patch books.Patch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	updated, err := s.books.Update(r.Context(), store.ByID(id), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) updateBookByTitleAuthor(w http.ResponseWriter, r *http.Request) {
	matcher, err := titleAuthorMatcher(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var patch books.Patch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	updated, err := s.books.Update(r.Context(), matcher, patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	removed, err := s.books.Delete(r.Context(), store.ByID(id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (s *Server) deleteBookByTitleAuthor(w http.ResponseWriter, r *http.Request) {
	matcher, err := titleAuthorMatcher(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	removed, err := s.books.Delete(r.Context(), matcher)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

// titleAuthorMatcher builds the compound matcher from the title and author
// query parameters; both are required.
func titleAuthorMatcher(r *http.Request) (store.Matcher, error) {
	title := r.URL.Query().Get("title")
	author := r.URL.Query().Get("author")
	verr := &record.ValidationError{}
	if title == "" {
		verr.Fields = append(verr.Fields, record.FieldError{Field: "title", Reason: "query parameter is required"})
	}
	if author == "" {
		verr.Fields = append(verr.Fields, record.FieldError{Field: "author", Reason: "query parameter is required"})
	}
	if len(verr.Fields) > 0 {
		return store.Matcher{}, verr
	}
	return store.ByFields(map[string]any{"title": title, "author": author}), nil
}
