package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	store := "memory"
	if a.Config != nil && a.Config.UsesDatabase() {
		store = "postgres"
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "store": store})
}
