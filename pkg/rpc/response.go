package rpc

import (
	"encoding/json"
	"net/http"
	"time"
)

// writeArray writes the bare JSON array that is the tracker RPC wire
// contract: the array's element order and count are the response, not a
// JSON object wrapping it.
func writeArray(w http.ResponseWriter, tag string, fields ...string) {
	body := make([]string, 0, len(fields)+1)
	body = append(body, tag)
	body = append(body, fields...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// healthResponse is the envelope for the unauthenticated /health endpoints,
// kept distinct from the bare-array RPC contract above.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

func writeHealth(w http.ResponseWriter, status int, statusText, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:    statusText,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	})
}
