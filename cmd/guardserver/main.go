// Command guardserver is a thin net/http driver over the guard package
// (spec.md §8): it exposes POST /evaluate, accepting a {rules, data}
// JSON body and returning the resulting Report as JSON. Follows the
// teacher's cmd/server shape (flag-based port, CORS middleware); like
// cmd/guard, this is explicitly out of the evaluator's correctness
// surface (spec.md §1).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	guard "github.com/ritamzico/guard"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var body struct {
			Rules           string `json:"rules"`
			Data            string `json:"data"`
			Format          string `json:"format"`
			InputParameters string `json:"input_parameters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.Rules == "" {
			writeError(w, http.StatusBadRequest, "missing field: rules")
			return
		}
		if body.Data == "" {
			writeError(w, http.StatusBadRequest, "missing field: data")
			return
		}

		rs, diags := guard.Parse(body.Rules)
		if len(diags) != 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"diagnostics": diags})
			return
		}

		format := guard.JSON
		if body.Format == "yaml" {
			format = guard.YAML
		}

		var opts []guard.EvalOptions
		if body.InputParameters != "" {
			params, err := guard.ParseData([]byte(body.InputParameters), format)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid input_parameters: "+err.Error())
				return
			}
			opts = append(opts, guard.EvalOptions{InputParameters: params})
		}

		rpt, err := rs.EvaluateBytes([]byte(body.Data), format, opts...)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, rpt)
	})

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("guard server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		fmt.Fprintf(flag.CommandLine.Output(), "server error: %v\n", err)
	}
}
