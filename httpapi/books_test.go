package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/recordhouse/recordhouse/books"
	"github.com/recordhouse/recordhouse/httpapi"
	"github.com/recordhouse/recordhouse/store"
	"github.com/recordhouse/recordhouse/todos"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store[books.Book]) {
	t.Helper()
	bookStore, err := store.NewMemory[books.Book]("book")
	if err != nil {
		t.Fatal(err)
	}
	todoStore, err := store.NewMemory[todos.Todo]("todo")
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(httpapi.New(bookStore, todoStore, nil).Router())
	t.Cleanup(srv.Close)
	return srv, bookStore
}

func seedBook(t *testing.T, s store.Store[books.Book], b books.Book) books.Book {
	t.Helper()
	created, err := s.Create(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	return created
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestBooksEndpoints(t *testing.T) {
	srv, bookStore := newTestServer(t)
	rating := 4.5
	first := seedBook(t, bookStore, books.Book{Title: "1984", Author: "George Orwell", Category: "Fiction", Rating: &rating})
	seedBook(t, bookStore, books.Book{Title: "Emma", Author: "Jane Austen", Category: "Romance"})

	t.Run("list", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/books", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out []books.Book
		decodeInto(t, resp, &out)
		if len(out) != 2 {
			t.Errorf("expected 2 books, got %d", len(out))
		}
	})

	t.Run("get by id", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/books/1", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out books.Book
		decodeInto(t, resp, &out)
		if out.Title != "1984" {
			t.Errorf("unexpected book: %+v", out)
		}
	})

	t.Run("get missing id is 404 with detail", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/books/99", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		var body struct {
			Detail string `json:"detail"`
		}
		decodeInto(t, resp, &body)
		if !strings.Contains(body.Detail, "99") {
			t.Errorf("detail should name the lookup key: %q", body.Detail)
		}
	})

	t.Run("get by title", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/books/title/Emma", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		resp = do(t, http.MethodGet, srv.URL+"/books/title/Missing", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("category filter returns empty 200", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/books/category/Poetry", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out []books.Book
		decodeInto(t, resp, &out)
		if len(out) != 0 {
			t.Errorf("expected empty list, got %+v", out)
		}
	})

	t.Run("author search is case-insensitive substring", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/books/author/orwell", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out []books.Book
		decodeInto(t, resp, &out)
		if len(out) != 1 || out[0].Title != "1984" {
			t.Errorf("unexpected result: %+v", out)
		}
	})

	t.Run("rating filter treats empty as 404", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/books/rating/4.5", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		resp = do(t, http.MethodGet, srv.URL+"/books/rating/2.5", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for empty rating result, got %d", resp.StatusCode)
		}
	})

	t.Run("create returns 201 with assigned id", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/books", `{"title":"The Hobbit","author":"J.R.R. Tolkien","category":"Fantasy"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		var out books.Book
		decodeInto(t, resp, &out)
		if out.ID != 3 {
			t.Errorf("expected id 3, got %d", out.ID)
		}
	})

	t.Run("create with violations is 422 listing every field", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/books", `{"title":"","author":"","category":"Fiction"}`)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", resp.StatusCode)
		}
		var body struct {
			Detail []struct {
				Field  string `json:"field"`
				Reason string `json:"reason"`
			} `json:"detail"`
		}
		decodeInto(t, resp, &body)
		if len(body.Detail) != 2 {
			t.Errorf("expected 2 violations, got %+v", body.Detail)
		}
	})

	t.Run("partial update by id", func(t *testing.T) {
		resp := do(t, http.MethodPut, srv.URL+"/books/1", `{"category":"Dystopian Fiction"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out books.Book
		decodeInto(t, resp, &out)
		if out.Category != "Dystopian Fiction" || out.Title != "1984" {
			t.Errorf("merge wrong: %+v", out)
		}
	})

	t.Run("update by title and author query", func(t *testing.T) {
		resp := do(t, http.MethodPut, srv.URL+"/books/update?title=Emma&author=Jane+Austen", `{"rating":3.5}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out books.Book
		decodeInto(t, resp, &out)
		if out.Rating == nil || *out.Rating != 3.5 {
			t.Errorf("rating not applied: %+v", out)
		}
	})

	t.Run("update with missing query params is 422", func(t *testing.T) {
		resp := do(t, http.MethodPut, srv.URL+"/books/update", `{}`)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", resp.StatusCode)
		}
	})

	t.Run("update of missing book is 404", func(t *testing.T) {
		resp := do(t, http.MethodPut, srv.URL+"/books/99", `{"category":"Drama"}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("malformed body is 422", func(t *testing.T) {
		resp := do(t, http.MethodPut, srv.URL+"/books/1", `{not json`)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", resp.StatusCode)
		}
	})

	t.Run("delete returns the removed snapshot", func(t *testing.T) {
		resp := do(t, http.MethodDelete, srv.URL+"/books/"+itoa(first.ID), "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out books.Book
		decodeInto(t, resp, &out)
		if out.Title != "1984" {
			t.Errorf("unexpected snapshot: %+v", out)
		}
		resp = do(t, http.MethodGet, srv.URL+"/books/"+itoa(first.ID), "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
		}
	})

	t.Run("delete by title and author query", func(t *testing.T) {
		resp := do(t, http.MethodDelete, srv.URL+"/books/delete?title=Emma&author=Jane+Austen", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		resp = do(t, http.MethodDelete, srv.URL+"/books/delete?title=Emma&author=Jane+Austen", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
		}
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
