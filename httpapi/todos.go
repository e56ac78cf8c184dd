package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/recordhouse/recordhouse/store"
	"github.com/recordhouse/recordhouse/todos"
)

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	out, err := s.todos.List(r.Context(), store.ListOptions{})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	todo, err := s.todos.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	var todo todos.Todo
	if err := decodeBody(r, &todo); err != nil {
		s.writeError(w, err)
		return
	}
	created, err := s.todos.Create(r.Context(), todo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var patch todos.Patch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	updated, err := s.todos.Update(r.Context(), store.ByID(id), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	removed, err := s.todos.Delete(r.Context(), store.ByID(id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}
