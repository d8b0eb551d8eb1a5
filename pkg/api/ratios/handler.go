// Package ratios exposes the custom-ratio CRUD, import/export, and
// session preference endpoints.
package ratios

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"statement_analyzer/pkg/core/catalog"
	"statement_analyzer/pkg/models"
)

var (
	ratioStore *catalog.Store
	prefsStore *catalog.PrefsStore
)

// InitHandler wires the custom-ratio endpoints.
func InitHandler(store *catalog.Store, prefs *catalog.PrefsStore) {
	ratioStore = store
	prefsStore = prefs
}

func cors(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var validationErr *models.ValidationError
	var duplicateErr *models.DuplicateIDError
	var syntaxErr *models.FormulaSyntaxError
	switch {
	case errors.As(err, &duplicateErr):
		status = http.StatusConflict
	case errors.As(err, &validationErr), errors.As(err, &syntaxErr):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]interface{}{"success": false, "message": err.Error()})
}

// userID resolves the acting user: explicit query param first, then
// the persisted default identity.
func userID(r *http.Request) string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return id
	}
	return prefsStore.Load().UserID
}

// HandleCollection serves /api/custom-ratios: GET lists, POST adds.
func HandleCollection(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET, POST") {
		return
	}
	switch r.Method {
	case http.MethodGet:
		defs, err := ratioStore.List(userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "ratios": defs})
	case http.MethodPost:
		var def models.RatioDefinition
		if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body: " + err.Error()})
			return
		}
		created, err := ratioStore.Add(userID(r), def)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "ratio": created})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleItem serves /api/custom-ratios/{id}: PUT updates, DELETE
// removes, GET fetches one.
func HandleItem(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET, PUT, DELETE") {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/custom-ratios/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "ratio id required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		def, found, err := ratioStore.Get(userID(r), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "custom ratio not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "ratio": def})
	case http.MethodPut:
		var def models.RatioDefinition
		if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body: " + err.Error()})
			return
		}
		updated, err := ratioStore.Update(userID(r), id, def)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "ratio": updated})
	case http.MethodDelete:
		if err := ratioStore.Delete(userID(r), id); err != nil {
			// Absent id is reported, not fatal.
			var validationErr *models.ValidationError
			if errors.As(err, &validationErr) {
				writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": err.Error()})
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ImportRequest carries a definition list plus the combine mode.
type ImportRequest struct {
	Mode   string                   `json:"mode"` // "replace" or "merge"
	Ratios []models.RatioDefinition `json:"ratios"`
}

// HandleImport serves POST /api/custom-ratios/import.
func HandleImport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body: " + err.Error()})
		return
	}
	if req.Mode == "" {
		req.Mode = string(catalog.ImportMerge)
	}
	result, err := ratioStore.Import(userID(r), req.Ratios, catalog.ImportMode(req.Mode))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "result": result})
}

// HandleExport serves GET /api/custom-ratios/export. The payload is
// the canonical exchange format and round-trips through import.
func HandleExport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defs, err := ratioStore.Export(userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="custom_ratios.json"`)
	writeJSON(w, http.StatusOK, defs)
}

// HandlePrefs serves /api/prefs: GET reads the developer-mode flag
// and default user id, PUT updates them.
func HandlePrefs(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET, PUT") {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "prefs": prefsStore.Load()})
	case http.MethodPut:
		var prefs catalog.Prefs
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body: " + err.Error()})
			return
		}
		if prefs.UserID == "" {
			prefs.UserID = prefsStore.Load().UserID
		}
		if err := prefsStore.Save(prefs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "prefs": prefs})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
