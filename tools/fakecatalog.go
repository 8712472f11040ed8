package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
)

type entry struct {
	ID         int    `json:"id"`
	MediaType  string `json:"media_type"`
	Title      string `json:"title,omitempty"`
	Name       string `json:"name,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
	Overview   string `json:"overview"`
}

var library = []entry{
	{ID: 550, MediaType: "movie", Title: "Fight Club", PosterPath: "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg", Overview: "An insomniac office worker and a soap maker form an underground fight club."},
	{ID: 603, MediaType: "movie", Title: "The Matrix", PosterPath: "/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg", Overview: "A hacker learns the true nature of his reality."},
	{ID: 27205, MediaType: "movie", Title: "Inception", PosterPath: "/9gk7adHYeDvHkCSEqAvQNLV5Uge.jpg", Overview: "A thief who steals corporate secrets through dream-sharing technology."},
	{ID: 157336, MediaType: "movie", Title: "Interstellar", Overview: "Explorers travel through a wormhole in space."},
	{ID: 1399, MediaType: "tv", Name: "Game of Thrones", PosterPath: "/1XS1oqL89opfnbLl8WnZY1O1uJx.jpg", Overview: "Nine noble families fight for control over Westeros."},
	{ID: 1396, MediaType: "tv", Name: "Breaking Bad", PosterPath: "/ggFHVNu6YYI5L9pCfOacjizRGt.jpg", Overview: "A chemistry teacher turns to manufacturing methamphetamine."},
	{ID: 66732, MediaType: "tv", Name: "Stranger Things", Overview: "A young boy vanishes and a small town uncovers a mystery."},
	{ID: 287, MediaType: "person", Name: "Brad Pitt", PosterPath: "/cckcYc2v0yh1tc9QjRelptcOBko.jpg"},
}

func main() {
	http.HandleFunc("/3/", catalogRouter)

	fmt.Println("Fake catalog server starting on :8090")
	fmt.Println("Point catalog.base_url at http://localhost:8090 and set any api_key.")
	log.Fatal(http.ListenAndServe(":8090", nil))
}

// catalogRouter answers the handful of catalog endpoints the app uses.
func catalogRouter(w http.ResponseWriter, r *http.Request) {
	log.Printf("Received request URL: %s", r.URL.String())

	if r.URL.Query().Get("api_key") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"status_code":    7,
			"status_message": "Invalid API key: You must be granted a valid key.",
			"success":        false,
		})
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/3/"), "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "search" && parts[1] == "multi":
		searchHandler(w, r)
	case len(parts) == 3 && parts[0] == "trending" && parts[2] == "week":
		trendingHandler(w, parts[1])
	case len(parts) == 2 && (parts[0] == "movie" || parts[0] == "tv"):
		detailsHandler(w, parts[0], parts[1])
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"status_code": 34, "status_message": "The resource you requested could not be found."})
	}
}

func searchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))

	results := []entry{}
	for _, e := range library {
		if query != "" && strings.Contains(strings.ToLower(e.Title+e.Name), query) {
			results = append(results, e)
		}
	}
	writePage(w, results)
}

func trendingHandler(w http.ResponseWriter, mediaType string) {
	// occasional failures exercise the error path
	if rand.Intn(10) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status_code": 43, "status_message": "Simulated outage."})
		return
	}

	results := []entry{}
	for _, e := range library {
		if e.MediaType == mediaType {
			results = append(results, e)
		}
	}
	rand.Shuffle(len(results), func(i, j int) { results[i], results[j] = results[j], results[i] })
	writePage(w, results)
}

func detailsHandler(w http.ResponseWriter, mediaType, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err == nil {
		for _, e := range library {
			if e.ID == id && e.MediaType == mediaType {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"id":          e.ID,
					"title":       e.Title,
					"name":        e.Name,
					"poster_path": e.PosterPath,
					"overview":    e.Overview,
					"videos":      map[string]interface{}{"results": []interface{}{}},
				})
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"status_code": 34, "status_message": "The resource you requested could not be found."})
}

func writePage(w http.ResponseWriter, results []entry) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":          1,
		"results":       results,
		"total_pages":   1,
		"total_results": len(results),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
