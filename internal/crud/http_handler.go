package crud

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"libraryapi/internal/apperr"
	"libraryapi/internal/export"
	"libraryapi/internal/httpx"
	"libraryapi/internal/patch"
	"libraryapi/internal/query"
)

// HTTPHandler exposes a Service as a JSON resource.
type HTTPHandler[E any] struct {
	service *Service[E]
}

func NewHTTPHandler[E any](service *Service[E]) *HTTPHandler[E] {
	return &HTTPHandler[E]{service: service}
}

// Register mounts the resource routes under prefix, e.g. "/v1/books".
func (h *HTTPHandler[E]) Register(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimSuffix(prefix, "/")
	mux.HandleFunc("GET "+prefix, h.List)
	mux.HandleFunc("GET "+prefix+"/export", h.Export)
	mux.HandleFunc("GET "+prefix+"/{id}", h.Get)
	mux.HandleFunc("POST "+prefix, h.Create)
	mux.HandleFunc("PUT "+prefix+"/{id}", h.Update)
	mux.HandleFunc("PATCH "+prefix+"/{id}", h.Patch)
	mux.HandleFunc("DELETE "+prefix+"/{id}", h.Delete)
}

// ParseQuery reads the list parameters from the URL query string.
func ParseQuery(r *http.Request) (query.Query, error) {
	values := r.URL.Query()

	q := query.Query{
		SearchTerm: values.Get("searchTerm"),
		SortField:  values.Get("sortField"),
		SortOrder:  values.Get("sortOrder"),
		PageNumber: query.DefaultPageNumber,
		PageSize:   query.DefaultPageSize,
	}

	var err error
	if q.Filters, err = query.ParseCriteria(values.Get("filters")); err != nil {
		return q, err
	}
	if raw := values.Get("pageNumber"); raw != "" {
		if q.PageNumber, err = strconv.Atoi(raw); err != nil {
			return q, apperr.Invalid("page number invalid")
		}
	}
	if raw := values.Get("pageSize"); raw != "" {
		if q.PageSize, err = strconv.Atoi(raw); err != nil {
			return q, apperr.Invalid("page size invalid")
		}
	}
	return q, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return apperr.Invalid("request body is empty")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.InvalidDetails("invalid JSON body", []apperr.Detail{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("%s must be %s", typeErr.Field, typeErr.Type),
			}})
		}
		return apperr.Invalid("invalid JSON body")
	}
	return nil
}

// List handles GET /{resource}
func (h *HTTPHandler[E]) List(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, items, map[string]any{
		"pageNumber": q.PageNumber,
		"pageSize":   q.PageSize,
		"count":      len(items),
	})
}

// Export handles GET /{resource}/export with the same parameters as List.
func (h *HTTPHandler[E]) Export(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	name := h.service.Schema().Table()
	if err := export.Write(&buf, name, h.service.Schema(), items); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Get handles GET /{resource}/{id}
func (h *HTTPHandler[E]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	e, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, e, nil)
}

// Create handles POST /{resource}
func (h *HTTPHandler[E]) Create(w http.ResponseWriter, r *http.Request) {
	var e E
	if err := decodeBody(r, &e); err != nil {
		httpx.Error(w, r, err)
		return
	}
	id, err := h.service.Create(r.Context(), &e)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+id.String())
	httpx.JSONCreated(w, r, map[string]uuid.UUID{"id": id})
}

// Update handles PUT /{resource}/{id}
func (h *HTTPHandler[E]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var e E
	if err := decodeBody(r, &e); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.Update(r.Context(), id, &e); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// Patch handles PATCH /{resource}/{id}
func (h *HTTPHandler[E]) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var doc patch.Document
	if len(bytes.TrimSpace(data)) > 0 {
		if doc, err = patch.Parse(data); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}
	if err := h.service.Patch(r.Context(), id, doc); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// Delete handles DELETE /{resource}/{id}
func (h *HTTPHandler[E]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}
