// Package analysis exposes the upload/analyze and recalculate
// endpoints.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"statement_analyzer/pkg/core/extract"
	"statement_analyzer/pkg/core/formula"
	"statement_analyzer/pkg/core/ingest"
	"statement_analyzer/pkg/core/merge"
	"statement_analyzer/pkg/core/ratios"
	"statement_analyzer/pkg/core/store"
	"statement_analyzer/pkg/models"
)

var (
	ratioService *ratios.Service
	extractor    *extract.VisionExtractor
	textBackend  extract.Texter
	analysisRepo *store.AnalysisRepo
	mergeEngine  *merge.Engine
)

// InitHandler wires the analysis endpoints. analysisRepo may be nil
// when no database is configured; results are then session-only.
func InitHandler(service *ratios.Service, vision *extract.VisionExtractor, texter extract.Texter, repo *store.AnalysisRepo) {
	ratioService = service
	extractor = vision
	textBackend = texter
	analysisRepo = repo
	mergeEngine = merge.NewEngine()
}

// AnalyzeResponse is the contract surface for the UI.
type AnalyzeResponse struct {
	Success       bool                      `json:"success"`
	ExtractedData *models.MultiYearDocument `json:"extracted_data,omitempty"`
	Ratios        models.RatioSet           `json:"ratios,omitempty"`
	Comparison    interface{}               `json:"comparison,omitempty"`
	Fingerprint   string                    `json:"fingerprint,omitempty"`
	Conflicts     []merge.Conflict          `json:"conflicts,omitempty"`
	Warnings      []string                  `json:"warnings,omitempty"`
	Message       string                    `json:"message,omitempty"`
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

func failureStatus(err error) int {
	var inputErr *models.InputError
	var validationErr *models.ValidationError
	var syntaxErr *models.FormulaSyntaxError
	var transportErr *models.TransportError
	switch {
	case errors.As(err, &inputErr), errors.As(err, &validationErr), errors.As(err, &syntaxErr):
		return http.StatusBadRequest
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleAnalyze accepts a multipart upload of statement files (images
// and/or HTML exports), extracts each one, merges them in upload
// order, and returns the reconciled document with computed ratios.
func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Message: "invalid multipart request: " + err.Error()})
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Message: "no files to merge"})
		return
	}
	userID := r.FormValue("user_id")
	devMode := r.FormValue("dev_mode") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	var docs []models.MultiYearDocument
	var warnings []string
	for _, fh := range files {
		doc, err := extractFile(ctx, fh)
		if err != nil {
			// One unreadable file degrades the analysis, it does not
			// abort the upload.
			log.Printf("[Analysis] file %s failed: %v", fh.Filename, err)
			warnings = append(warnings, fmt.Sprintf("%s: %v", fh.Filename, err))
			continue
		}
		docs = append(docs, *doc)
	}
	if len(docs) == 0 {
		writeJSON(w, http.StatusBadGateway, AnalyzeResponse{Message: "no files could be extracted", Warnings: warnings})
		return
	}

	result, err := mergeEngine.Merge(docs)
	if err != nil {
		writeJSON(w, failureStatus(err), AnalyzeResponse{Message: err.Error(), Warnings: warnings})
		return
	}
	for _, c := range result.Conflicts {
		log.Printf("[Analysis] merge conflict year=%s field=%s kept=%v ignored=%v", c.Year, c.Field, c.Kept, c.Ignored)
	}

	analysis, err := ratioService.Compute(&result.Document, userID, devMode)
	if err != nil {
		writeJSON(w, failureStatus(err), AnalyzeResponse{Message: err.Error(), Warnings: warnings})
		return
	}
	persist(ctx, userID, analysis)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Success:       true,
		ExtractedData: analysis.Statements,
		Ratios:        analysis.Ratios,
		Comparison:    analysis.Comparison,
		Fingerprint:   analysis.Fingerprint,
		Conflicts:     result.Conflicts,
		Warnings:      append(warnings, analysis.Warnings...),
	})
}

func extractFile(ctx context.Context, fh *multipart.FileHeader) (*models.MultiYearDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(fh.Filename)
	contentType := fh.Header.Get("Content-Type")
	switch {
	case strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm") || strings.Contains(contentType, "text/html"):
		return ingest.ParseHTML(string(data))
	case strings.HasSuffix(name, ".txt") || strings.Contains(contentType, "text/plain"):
		return extract.FromText(ctx, textBackend, string(data))
	default:
		return extractor.Extract(ctx, extract.Image{Data: data, MIMEType: contentType})
	}
}

// RecalculateRequest re-runs ratio computation against an already
// reconciled document, typically after the custom ratio set or the
// developer-mode flag changed.
type RecalculateRequest struct {
	Statements *models.MultiYearDocument `json:"statements"`
	UserID     string                    `json:"user_id"`
	DevMode    bool                      `json:"dev_mode"`
}

// HandleRecalculate recomputes ratios for the posted document. The
// response carries the document fingerprint; clients discard any
// response whose fingerprint no longer matches their current
// document, which keeps stale async recalculations from landing.
func HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Message: "invalid request body: " + err.Error()})
		return
	}
	if req.Statements == nil {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Message: "statements are required"})
		return
	}

	analysis, err := ratioService.Compute(req.Statements, req.UserID, req.DevMode)
	if err != nil {
		writeJSON(w, failureStatus(err), AnalyzeResponse{Message: err.Error()})
		return
	}
	persist(r.Context(), req.UserID, analysis)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Success:       true,
		ExtractedData: analysis.Statements,
		Ratios:        analysis.Ratios,
		Comparison:    analysis.Comparison,
		Fingerprint:   analysis.Fingerprint,
		Warnings:      analysis.Warnings,
	})
}

func persist(ctx context.Context, userID string, analysis *ratios.Analysis) {
	if analysisRepo == nil || userID == "" {
		return
	}
	if err := analysisRepo.Save(ctx, userID, analysis); err != nil {
		log.Printf("[Analysis] persist failed for user=%s: %v", userID, err)
	}
}

// HandleLatest serves GET /api/analysis/latest: the persisted analysis
// for a returning user, so a session can reload statements and ratios
// without re-extracting. 404 when nothing is stored.
func HandleLatest(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if analysisRepo == nil {
		writeJSON(w, http.StatusNotFound, AnalyzeResponse{Message: "no persistence configured"})
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Message: "user_id is required"})
		return
	}

	analysis, err := analysisRepo.Load(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, AnalyzeResponse{Message: err.Error()})
		return
	}
	if analysis == nil {
		writeJSON(w, http.StatusNotFound, AnalyzeResponse{Message: "no stored analysis"})
		return
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Success:       true,
		ExtractedData: analysis.Statements,
		Ratios:        analysis.Ratios,
		Comparison:    analysis.Comparison,
		Fingerprint:   analysis.Fingerprint,
		Warnings:      analysis.Warnings,
	})
}

// HandleAvailableVariables lists the identifiers the formula language
// resolves, for the custom-ratio editor.
func HandleAvailableVariables(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"variables": formula.Variables(),
	})
}
