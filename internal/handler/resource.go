// Package handler translates HTTP requests into service calls and core
// results back into JSON. Handlers only know about HTTP (parsing query
// parameters and bodies, choosing status codes) and leave every business
// rule to the service layer.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/snipstore/internal/model"
	"github.com/sakif/snipstore/internal/normalize"
	"github.com/sakif/snipstore/internal/query"
	"github.com/sakif/snipstore/internal/service"
)

// ResourceHandler serves the /api/resources routes.
type ResourceHandler struct {
	service *service.ResourceService
	logger  *slog.Logger
}

// NewResourceHandler creates a ResourceHandler.
func NewResourceHandler(svc *service.ResourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{service: svc, logger: logger}
}

// resourceRequest is the write-path body. Pointer fields distinguish absent
// from empty exactly like normalize.Fields. A client-supplied uuid or
// digest is accepted in the JSON but dropped here, silently: identity is
// server-owned.
type resourceRequest struct {
	Category    string    `json:"category"`
	Data        *[]string `json:"data"`
	Brief       *string   `json:"brief"`
	Description *string   `json:"description"`
	Name        *string   `json:"name"`
	Groups      *[]string `json:"groups"`
	Tags        *[]string `json:"tags"`
	Links       *[]string `json:"links"`
	Source      *string   `json:"source"`
	Versions    *[]string `json:"versions"`
	Filename    *string   `json:"filename"`
	UUID        *string   `json:"uuid"`
	Digest      *string   `json:"digest"`
}

func (req resourceRequest) fields() normalize.Fields {
	return normalize.Fields{
		Category:    model.Category(req.Category),
		Data:        req.Data,
		Brief:       req.Brief,
		Description: req.Description,
		Name:        req.Name,
		Groups:      req.Groups,
		Tags:        req.Tags,
		Links:       req.Links,
		Source:      req.Source,
		Versions:    req.Versions,
		Filename:    req.Filename,
	}
}

// searchResponse is the read-path envelope: pagination metadata plus the
// matched resources.
type searchResponse struct {
	Meta query.Meta        `json:"meta"`
	Data []*model.Resource `json:"data"`
}

// HandleSearch serves GET /api/resources.
//
// Query parameters: sall, stag, sgrp (keywords, repeatable), scat
// (categories), digest and uuid (prefix selectors), sort (repeatable,
// "-field" for descending), limit, offset, fields (projection, repeatable
// or comma-separated).
func (h *ResourceHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	spec, err := specFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	col, meta, err := h.service.Search(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Meta: meta, Data: col.Resources()})
}

// HandleGet serves GET /api/resources/{digest}. The path value is a digest
// prefix; multiple matches are all returned, read semantics.
func (h *ResourceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	spec, err := specFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	spec.Digest = r.PathValue("digest")

	col, meta, err := h.service.Search(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Meta: meta, Data: col.Resources()})
}

// HandleCreate serves POST /api/resources.
func (h *ResourceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid resource JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	created, err := h.service.Create(r.Context(), req.fields())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate serves PUT and PATCH /api/resources/{digest}. Both apply the
// same present-fields-only patch semantics: absent fields keep their stored
// values either way, so the two methods are aliases here.
func (h *ResourceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid resource JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	sel := service.Selector{Digest: r.PathValue("digest")}
	updated, err := h.service.Update(r.Context(), sel, req.fields())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete serves DELETE /api/resources/{digest}.
func (h *ResourceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sel := service.Selector{Digest: r.PathValue("digest")}
	if err := h.service.Delete(r.Context(), sel); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// specFromQuery builds a query spec from the request parameters. Every
// parameter accepts repetition; scat and fields also accept comma-separated
// values contributing to the same set.
func specFromQuery(r *http.Request) (query.Spec, error) {
	values := r.URL.Query()
	spec := query.NewSpec()

	categories, err := query.ParseCategories(values["scat"])
	if err != nil {
		return spec, err
	}
	spec.Categories = categories
	spec.All = query.ParseKeywords(values["sall"])
	spec.Tags = query.ParseKeywords(values["stag"])
	spec.Groups = query.ParseKeywords(values["sgrp"])
	spec.Digest = values.Get("digest")
	spec.UUID = values.Get("uuid")
	spec.Sort = values["sort"]
	spec.Fields = query.ParseFields(values["fields"])

	if v := values.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return spec, badParam("limit", v)
		}
		spec.Limit = limit
	}
	if v := values.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return spec, badParam("offset", v)
		}
		spec.Offset = offset
	}
	return spec, nil
}
