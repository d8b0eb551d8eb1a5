// Package report exposes the LaTeX report boundary.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"statement_analyzer/pkg/core/llm"
	"statement_analyzer/pkg/core/ratios"
	"statement_analyzer/pkg/core/report"
	"statement_analyzer/pkg/models"
)

var (
	ratioService *ratios.Service
	llmRegistry  *llm.Registry
)

// InitHandler wires the report endpoint. registry may be nil, in
// which case reports are generated without commentary.
func InitHandler(service *ratios.Service, registry *llm.Registry) {
	ratioService = service
	llmRegistry = registry
}

// Request rebuilds the analysis server-side from the client's current
// document so the report always reflects what the user sees.
type Request struct {
	Title          string                    `json:"title"`
	Statements     *models.MultiYearDocument `json:"statements"`
	UserID         string                    `json:"user_id"`
	DevMode        bool                      `json:"dev_mode"`
	WithCommentary bool                      `json:"with_commentary"`
}

// Response carries the render-ready report and its LaTeX rendering.
type Response struct {
	Success bool           `json:"success"`
	Report  *report.Report `json:"report,omitempty"`
	LaTeX   string         `json:"latex,omitempty"`
	Message string         `json:"message,omitempty"`
}

// HandleLatex serves POST /api/report/latex.
func HandleLatex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body: " + err.Error()})
		return
	}
	if req.Statements == nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "statements are required"})
		return
	}
	if req.Title == "" {
		req.Title = "Financial Analysis Report"
	}

	analysis, err := ratioService.Compute(req.Statements, req.UserID, req.DevMode)
	if err != nil {
		status := http.StatusInternalServerError
		var inputErr *models.InputError
		if errors.As(err, &inputErr) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, Response{Message: err.Error()})
		return
	}

	rpt := report.Assemble(req.Title, analysis)
	if req.WithCommentary && llmRegistry != nil {
		addCommentary(r, rpt, analysis)
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Report:  rpt,
		LaTeX:   rpt.RenderLaTeX(),
	})
}

// addCommentary asks the narrative model for a short written analysis
// of the computed ratios. Failures degrade to a report without
// commentary.
func addCommentary(r *http.Request, rpt *report.Report, analysis *ratios.Analysis) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	summary, err := json.Marshal(analysis.Ratios)
	if err != nil {
		return
	}
	prompt := "Write a short financial analysis commentary (3-5 paragraphs of markdown, no headings) for these computed ratios:\n\n" + string(summary)
	system := "You are a financial analyst. Be factual, reference only the figures given, and flag N/A ratios as data gaps."

	out, err := llmRegistry.Execute(ctx, "narrative", prompt, system, nil)
	if err != nil {
		log.Printf("[Report] commentary generation failed: %v", err)
		rpt.Warnings = append(rpt.Warnings, "commentary unavailable: "+err.Error())
		return
	}
	rpt.SetNarrative(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
