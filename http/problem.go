package handler

import (
	"net/http"
)

// Problem is an RFC 7807 problem detail.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	problem := Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	body, err := json.Marshal(problem)
	if err != nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeInternalError never carries the underlying error; it is logged by
// the caller instead.
func writeInternalError(w http.ResponseWriter) {
	writeProblem(w, http.StatusInternalServerError, "")
}
