package book

import (
	"net/http"
	"strings"

	"libraryapi/internal/crud"
	"libraryapi/internal/entity"
	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	*crud.HTTPHandler[entity.Book]
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{
		HTTPHandler: crud.NewHTTPHandler(service.Service),
		service:     service,
	}
}

// Register mounts the generic resource routes plus the ISBN lookup.
func (h *HTTPHandler) Register(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimSuffix(prefix, "/")
	h.HTTPHandler.Register(mux, prefix)
	mux.HandleFunc("GET "+prefix+"/isbn/{isbn}", h.GetByISBN)
}

// GetByISBN handles GET /books/isbn/{isbn}
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetByISBN(r.Context(), r.PathValue("isbn"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}
