package apitest

import (
	"encoding/json"
	"net/http"
	"time"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, data any) {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"detail": message})
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, http.StatusNotFound, "Not found.")
}

func methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed.")
}

func invalidTokenResponse(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, http.StatusUnauthorized, "Invalid token.")
}

func postEnvelope(p *Post) envelope {
	return envelope{
		"pk":           p.Pk,
		"title":        p.Title,
		"slug":         p.Slug,
		"body":         p.Body,
		"image":        p.Image,
		"date_updated": p.DateUpdated.UTC().Format(time.RFC3339Nano),
		"username":     p.Username,
	}
}
