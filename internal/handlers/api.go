package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"marquee/internal/clients/metadata"
	"marquee/internal/core"
	"marquee/internal/utils"

	"github.com/gorilla/mux"
)

type APIHandler struct {
	manager *core.Manager
	logger  *utils.Logger
}

// A helper function to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to respond with a JSON error
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func NewAPIHandler(manager *core.Manager, logger *utils.Logger) *APIHandler {
	return &APIHandler{manager: manager, logger: logger.With("component", "api")}
}

// Search the catalog for movies and series
func (h *APIHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.manager.SearchCatalog(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("Error fetching search results:", err)
		respondError(w, catalogStatus(err), "Failed to search the catalog.")
		return
	}
	respondJSON(w, http.StatusOK, results)
}

type trendingResponse struct {
	Movies []metadata.MediaSummary `json:"movies"`
	Series []metadata.MediaSummary `json:"series"`
}

// Weekly trending movies and series, both or neither
func (h *APIHandler) Trending(w http.ResponseWriter, r *http.Request) {
	movies, series, err := h.manager.TrendingCatalog(r.Context())
	if err != nil {
		h.logger.Error("Error fetching trending data:", err)
		respondError(w, catalogStatus(err), "Failed to load trending content.")
		return
	}
	if movies == nil {
		movies = []metadata.MediaSummary{}
	}
	if series == nil {
		series = []metadata.MediaSummary{}
	}
	respondJSON(w, http.StatusOK, trendingResponse{Movies: movies, Series: series})
}

type detailsResponse struct {
	*metadata.MediaDetails
	EmbedURL string `json:"embed_url"`
}

func (h *APIHandler) Details(w http.ResponseWriter, r *http.Request) {
	mediaType, id, ok := parseMediaRef(w, r)
	if !ok {
		return
	}

	details, embedURL, err := h.manager.MediaDetails(r.Context(), mediaType, id)
	if err != nil {
		h.logger.Error("Error fetching media details:", mediaType, id, err)
		respondError(w, catalogStatus(err), "Failed to load media details.")
		return
	}
	respondJSON(w, http.StatusOK, detailsResponse{MediaDetails: details, EmbedURL: embedURL})
}

func (h *APIHandler) Embed(w http.ResponseWriter, r *http.Request) {
	mediaType, id, ok := parseMediaRef(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"embed_url": h.manager.EmbedURL(mediaType, id)})
}

func (h *APIHandler) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := h.manager.GetSystemStatus()
	respondJSON(w, http.StatusOK, status)
}

// parseMediaRef reads {type} and {id} from the route, answering 400 when invalid.
func parseMediaRef(w http.ResponseWriter, r *http.Request) (metadata.MediaType, int, bool) {
	vars := mux.Vars(r)
	mediaType, err := metadata.ParseMediaType(vars["type"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid media type")
		return "", 0, false
	}
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid media ID")
		return "", 0, false
	}
	return mediaType, id, true
}

// catalogStatus maps a catalog failure to a response code. A missing key is
// our misconfiguration; anything else is the upstream's.
func catalogStatus(err error) int {
	if errors.Is(err, metadata.ErrAPIKeyMissing) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
