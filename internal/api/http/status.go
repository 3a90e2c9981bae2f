package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// POST /api/status  { "client_name": "..." }
func CreateStatusCheckHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientName string `json:"client_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ClientName) == "" {
			http.Error(w, "client_name required", http.StatusBadRequest)
			return
		}
		sc := StatusCheck{
			ID:         uuid.NewString(),
			ClientName: req.ClientName,
			Timestamp:  time.Now().UTC(),
		}
		if _, err := dbh.ExecContext(r.Context(),
			`INSERT INTO status_checks (id, client_name, created_at) VALUES ($1,$2,$3)`,
			sc.ID, sc.ClientName, sc.Timestamp.Unix()); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, sc)
	}
}

// GET /api/status
func ListStatusChecksHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbh.QueryContext(r.Context(),
			`SELECT id, client_name, created_at FROM status_checks ORDER BY created_at DESC LIMIT 1000`)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []StatusCheck{}
		for rows.Next() {
			var sc StatusCheck
			var created int64
			if err := rows.Scan(&sc.ID, &sc.ClientName, &created); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			sc.Timestamp = time.Unix(created, 0).UTC()
			out = append(out, sc)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, out)
	}
}
