package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/recordhouse/recordhouse/todos"
)

func TestTodosEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("create validates and defaults complete", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/todos", `{"title":"Buy groceries","description":"Milk, eggs","priority":3}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		var out todos.Todo
		decodeInto(t, resp, &out)
		if out.ID != 1 || out.Complete {
			t.Errorf("unexpected todo: %+v", out)
		}
	})

	t.Run("create with short title and bad priority is 422", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/todos", `{"title":"ab","priority":9}`)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", resp.StatusCode)
		}
		var body struct {
			Detail []struct {
				Field string `json:"field"`
			} `json:"detail"`
		}
		decodeInto(t, resp, &body)
		if len(body.Detail) != 2 {
			t.Errorf("expected 2 violations, got %+v", body.Detail)
		}
	})

	t.Run("list and get", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/todos", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out []todos.Todo
		decodeInto(t, resp, &out)
		if len(out) != 1 {
			t.Fatalf("expected 1 todo, got %d", len(out))
		}

		resp = do(t, http.MethodGet, srv.URL+"/todos/1", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		resp = do(t, http.MethodGet, srv.URL+"/todos/99", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("partial update leaves omitted fields alone", func(t *testing.T) {
		resp := do(t, http.MethodPut, srv.URL+"/todos/1", `{"complete":true}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out todos.Todo
		decodeInto(t, resp, &out)
		if !out.Complete || out.Title != "Buy groceries" || out.Priority != 3 {
			t.Errorf("merge wrong: %+v", out)
		}
	})

	t.Run("explicit null clears the description", func(t *testing.T) {
		resp := do(t, http.MethodPut, srv.URL+"/todos/1", `{"description":null}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out todos.Todo
		decodeInto(t, resp, &out)
		if out.Description != nil {
			t.Errorf("description should be cleared: %+v", out)
		}
	})

	t.Run("update of missing todo is 404", func(t *testing.T) {
		resp := do(t, http.MethodPut, srv.URL+"/todos/99", `{"complete":true}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("delete then get is 404", func(t *testing.T) {
		resp := do(t, http.MethodDelete, srv.URL+"/todos/1", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out todos.Todo
		decodeInto(t, resp, &out)
		if out.ID != 1 {
			t.Errorf("unexpected snapshot: %+v", out)
		}
		resp = do(t, http.MethodGet, srv.URL+"/todos/1", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
		}
	})
}
