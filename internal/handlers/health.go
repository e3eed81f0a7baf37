package handlers

import "net/http"

// HealthInfo describes the service for GET /health.
type HealthInfo struct {
	Service             string
	Version             string
	OperationsSupported int
	// HistoryEntries reports the current history size.
	HistoryEntries func() int
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status              string `json:"status"`
	Service             string `json:"service"`
	Version             string `json:"version"`
	OperationsSupported int    `json:"operations_supported"`
	HistoryEntries      int    `json:"history_entries"`
}

// Health returns the liveness handler.
func Health(info HealthInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := 0
		if info.HistoryEntries != nil {
			entries = info.HistoryEntries()
		}
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:              "healthy",
			Service:             info.Service,
			Version:             info.Version,
			OperationsSupported: info.OperationsSupported,
			HistoryEntries:      entries,
		})
	}
}
