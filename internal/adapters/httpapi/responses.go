package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

type analyzeRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

type recommendRequest struct {
	ItemDescription string `json:"itemDescription"`
}

type outfitRequest struct {
	Items    []string `json:"items"`
	Occasion string   `json:"occasion"`
	Weather  string   `json:"weather"`
}

type analyzeMetadata struct {
	ProcessingTime int64  `json:"processingTime"`
	ImageSize      string `json:"imageSize,omitempty"`
	Cached         bool   `json:"cached"`
}

type analyzeResponse struct {
	Success  bool                  `json:"success"`
	Data     *core.GarmentAnalysis `json:"data"`
	Metadata analyzeMetadata       `json:"metadata"`
}

type recommendMetadata struct {
	ProcessingTime int64 `json:"processingTime"`
	Count          int   `json:"count"`
}

type recommendResponse struct {
	Success         bool                  `json:"success"`
	Recommendations []core.Recommendation `json:"recommendations"`
	Metadata        recommendMetadata     `json:"metadata"`
}

type outfitMetadata struct {
	ProcessingTime int64 `json:"processingTime"`
}

type outfitResponse struct {
	Success    bool           `json:"success"`
	Suggestion string         `json:"suggestion"`
	Metadata   outfitMetadata `json:"metadata"`
}

type errorResponse struct {
	Success         bool                   `json:"success"`
	Error           string                 `json:"error"`
	RawResponse     string                 `json:"rawResponse,omitempty"`
	RetryAfter      int                    `json:"retryAfter,omitempty"`
	Recommendations *[]core.Recommendation `json:"recommendations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}
