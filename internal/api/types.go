package api

import (
	"net/http"

	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

// handleList returns the forest, restricted to matches and their ancestors when
// ?search= is set.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.ViewFor(r.URL.Query().Get("search")))
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.OptionsFor(r.URL.Query().Get("search")))
}

type statsResponse struct {
	taxonomy.ForestStats
	Cycles *taxonomy.CycleInfo `json:"cycles,omitempty"`
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		ForestStats: h.session.Stats(),
		Cycles:      h.session.Cycles(),
	})
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Reload(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Stats())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sel, ok := h.session.Select(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: store.ErrNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *Handler) handleParentOptions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, ok := h.session.Select(id); !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: store.ErrNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.session.ParentOptions(id))
}

type createResponse struct {
	ID int64 `json:"id"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req store.CreateRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	id, err := h.session.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

// handleUpdate accepts a full record body. The id comes from the path; a typeKey
// that differs from the stored one is rejected.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var rec taxonomy.Record
	if err := decode(r, &rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec.ID = id

	if _, err := h.session.Save(r.Context(), rec); err != nil {
		h.writeError(w, r, err)
		return
	}

	sel, _ := h.session.Select(id)
	writeJSON(w, http.StatusOK, sel)
}

type deleteRequest struct {
	IDs []int64 `json:"ids"`
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	deleted, err := h.session.Delete(r.Context(), req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}
