package drive

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service  Files
	importer *Importer
}

func NewHandler(service Files, importer *Importer) *Handler {
	return &Handler{
		service:  service,
		importer: importer,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/files/download", h.DownloadFile).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/import", h.Import).Methods(http.MethodPost)
	router.HandleFunc("/api/drive/cache", h.FlushCache).Methods(http.MethodDelete)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")

	if folderPath := query.Get("path"); folderPath != "" {
		var err error
		folderID, err = h.service.FindFolderByPath(r.Context(), folderPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}

	files, err := h.service.ListFiles(r.Context(), folderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	if err := h.service.DownloadFile(r.Context(), fileID, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.importer.Import(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("drive: import failed")
		http.Error(w, "import failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"source":        h.importer.source.Name(),
		"fetched_at":    snapshot.FetchedAt,
		"demand":        len(snapshot.Predictions.DemandPredictions),
		"sales":         len(snapshot.Predictions.SalesPredictions),
		"suggestions":   len(snapshot.Suggestions),
		"profitability": len(snapshot.Profitability),
	})
}

func (h *Handler) FlushCache(w http.ResponseWriter, r *http.Request) {
	if err := h.importer.Flush(r.Context()); err != nil {
		log.Error().Err(err).Msg("drive: cache flush failed")
		http.Error(w, "cache flush failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("drive: failed to write response")
	}
}
