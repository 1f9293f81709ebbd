package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"

	"sxnet/internal/codec"
	"sxnet/internal/repository"
	"sxnet/internal/service"
)

// SnapshotHandler serves stored topology snapshots
type SnapshotHandler struct {
	svc *service.AnalysisService
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(svc *service.AnalysisService) *SnapshotHandler {
	return &SnapshotHandler{svc: svc}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Register adds the snapshot routes to mux
func (h *SnapshotHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/snapshots", h.ListSnapshots)
	mux.HandleFunc("GET /api/snapshots/{id}", h.GetSnapshot)
	mux.HandleFunc("DELETE /api/snapshots/{id}", h.DeleteSnapshot)
	mux.HandleFunc("GET /api/snapshots/{id}/export/{format}", h.ExportSnapshot)
	mux.HandleFunc("GET /api/addresses/{ip}", h.FindAddress)
}

// ListSnapshots returns stored snapshots without their graphs, newest first.
// ?host= limits the list to one host.
func (h *SnapshotHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.svc.ListSnapshots(r.Context(), r.URL.Query().Get("host"))
	if err != nil {
		log.Printf("Failed to list snapshots: %v", err)
		h.writeError(w, "Failed to list snapshots", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, snaps, http.StatusOK)
}

// GetSnapshot returns one snapshot including its graph fragment
func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.GetSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeLookupError(w, "Failed to get snapshot", err)
		return
	}
	h.writeJSON(w, snap, http.StatusOK)
}

// DeleteSnapshot removes a snapshot and its address index
func (h *SnapshotHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSnapshot(r.Context(), r.PathValue("id")); err != nil {
		h.writeLookupError(w, "Failed to delete snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSnapshot writes the graph fragment of a snapshot in the requested format
func (h *SnapshotHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(r.PathValue("format"))
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.svc.GetSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeLookupError(w, "Failed to get snapshot", err)
		return
	}

	if c.Format() == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+snap.Host+"."+c.Format())
	if err := c.Export(snap.Fragment, w); err != nil {
		log.Printf("Failed to export snapshot %s: %v", snap.ID, err)
	}
}

// FindAddress lists the stored interfaces that carried an IPv4 address
func (h *SnapshotHandler) FindAddress(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")
	if parsed := net.ParseIP(ip); parsed == nil || parsed.To4() == nil {
		h.writeError(w, "Invalid address", ip+" is not an IPv4 address", http.StatusBadRequest)
		return
	}

	matches, err := h.svc.FindAddress(r.Context(), ip)
	if err != nil {
		log.Printf("Failed to search address %s: %v", ip, err)
		h.writeError(w, "Failed to search address", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, matches, http.StatusOK)
}

func (h *SnapshotHandler) writeLookupError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("%s: %v", msg, err)
	h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
}

func (h *SnapshotHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *SnapshotHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
