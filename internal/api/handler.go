// Package api provides HTTP handlers for the workspace REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lakeboard/internal/domain"
	"lakeboard/internal/middleware"
	"lakeboard/internal/service"
)

// Handler exposes the workspace facade over HTTP. Every route expects an
// authenticated viewer in the request context (see middleware.Auth).
type Handler struct {
	workspace *service.Workspace
	logger    *slog.Logger
}

// NewHandler creates a Handler over the workspace facade.
func NewHandler(workspace *service.Workspace, logger *slog.Logger) *Handler {
	return &Handler{workspace: workspace, logger: logger}
}

// Register mounts all workspace routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/folders", h.createFolder)
	r.Post("/folders/{id}/rename", h.renameFolder)
	r.Post("/folders/{id}/move", h.moveFolder)
	r.Delete("/folders/{id}", h.deleteFolder)

	r.Post("/dashboards", h.createDashboard)
	r.Post("/dashboards/{id}/move", h.moveDashboard)
	r.Delete("/dashboards/{id}", h.deleteDashboard)
	r.Get("/dashboards/{id}/pages", h.visiblePages)
	r.Post("/dashboards/{id}/rows/filter", h.filterRows)

	r.Get("/permissions/{assetType}/{assetID}", h.resolvePermission)
	r.Post("/shares/batch", h.applyShareBatch)
}

func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var req domain.CreateFolderRequest
	if !h.decode(w, r, &req) {
		return
	}
	f, err := h.workspace.Hierarchy().CreateFolder(r.Context(), viewer, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, folderResponse(f))
}

func (h *Handler) renameFolder(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	req := domain.RenameFolderRequest{FolderID: chi.URLParam(r, "id"), Name: body.Name}
	if err := h.workspace.Hierarchy().RenameFolder(r.Context(), viewer, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) moveFolder(w http.ResponseWriter, r *http.Request) {
	h.moveAsset(w, r, domain.AssetFolder)
}

func (h *Handler) moveDashboard(w http.ResponseWriter, r *http.Request) {
	h.moveAsset(w, r, domain.AssetDashboard)
}

func (h *Handler) moveAsset(w http.ResponseWriter, r *http.Request, assetType string) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var body struct {
		NewParentID *string `json:"newParentId"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if err := h.workspace.MoveAsset(r.Context(), viewer, assetType, chi.URLParam(r, "id"), body.NewParentID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteFolder(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	policy := domain.CascadePolicy(r.URL.Query().Get("cascade"))
	if err := h.workspace.DeleteAsset(r.Context(), viewer, domain.AssetFolder, chi.URLParam(r, "id"), policy); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createDashboard(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var req domain.CreateDashboardRequest
	if !h.decode(w, r, &req) {
		return
	}
	d, err := h.workspace.Hierarchy().CreateDashboard(r.Context(), viewer, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, dashboardResponse(d))
}

func (h *Handler) deleteDashboard(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	if err := h.workspace.DeleteAsset(r.Context(), viewer, domain.AssetDashboard, chi.URLParam(r, "id"), domain.CascadeDefault); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) visiblePages(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	pages, err := h.workspace.VisiblePages(r.Context(), chi.URLParam(r, "id"), viewer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"pageIds": pages})
}

func (h *Handler) filterRows(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var body struct {
		Rows []domain.Row `json:"rows"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	rows, err := h.workspace.FilterRows(r.Context(), chi.URLParam(r, "id"), viewer, body.Rows)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

func (h *Handler) resolvePermission(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	perm, err := h.workspace.ResolvePermission(r.Context(), chi.URLParam(r, "assetType"), chi.URLParam(r, "assetID"), viewer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"permission": perm})
}

func (h *Handler) applyShareBatch(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var batch domain.ShareBatch
	if !h.decode(w, r, &batch) {
		return
	}
	if err := h.workspace.ApplyShareBatch(r.Context(), viewer, &batch); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (domain.Viewer, bool) {
	viewer, ok := domain.ViewerFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return domain.Viewer{}, false
	}
	return viewer, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func folderResponse(f *domain.Folder) map[string]interface{} {
	return map[string]interface{}{
		"id":         f.ID,
		"name":       f.Name,
		"parentId":   f.ParentID,
		"createdBy":  f.CreatedBy,
		"sharedWith": f.SharedWith,
	}
}

func dashboardResponse(d *domain.Dashboard) map[string]interface{} {
	return map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"folderId":   d.FolderID,
		"createdBy":  d.CreatedBy,
		"pageIds":    d.PageIDs(),
		"sharedWith": d.SharedWith,
	}
}
