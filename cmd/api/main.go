package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apianalysis "statement_analyzer/pkg/api/analysis"
	apiconfig "statement_analyzer/pkg/api/config"
	apiratios "statement_analyzer/pkg/api/ratios"
	apireport "statement_analyzer/pkg/api/report"
	"statement_analyzer/pkg/core/catalog"
	"statement_analyzer/pkg/core/extract"
	"statement_analyzer/pkg/core/llm"
	"statement_analyzer/pkg/core/ratios"
	"statement_analyzer/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Provider configuration
	llmCfg := llm.LoadConfig("config/models.yaml")
	registry := llm.NewRegistry(llmCfg)

	// Data directory for file-backed storage and prefs
	dataDir := os.Getenv("RATIOS_DIR")
	if dataDir == "" {
		dataDir = "data/ratios"
	}
	prefs := catalog.NewPrefsStore(dataDir)

	// Custom ratio persistence: Postgres when DATABASE_URL is set,
	// file-backed otherwise.
	var backend catalog.Backend
	var analysisRepo *store.AnalysisRepo
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[FATAL] Database init failed: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		backend = store.NewRatiosRepo()
		analysisRepo = store.NewAnalysisRepo()
		fmt.Println("[Store] using Postgres persistence")
	} else {
		fb, err := catalog.NewFileBackend(dataDir)
		if err != nil {
			fmt.Printf("[FATAL] Ratios dir init failed: %v\n", err)
			os.Exit(1)
		}
		backend = fb
		fmt.Printf("[Store] using file persistence under %s\n", dataDir)
	}

	ratioStore := catalog.NewStore(backend)
	service := ratios.NewService(ratioStore)

	visionModel := ""
	if tc, ok := llmCfg.Tasks["extraction"]; ok {
		visionModel = tc.Model
	}
	vision := extract.NewVisionExtractor(visionModel)

	// Wire handlers
	apianalysis.InitHandler(service, vision, registry, analysisRepo)
	apiratios.InitHandler(ratioStore, prefs)
	apireport.InitHandler(service, registry)

	http.HandleFunc("/api/analyze", apianalysis.HandleAnalyze)
	http.HandleFunc("/api/recalculate", apianalysis.HandleRecalculate)
	http.HandleFunc("/api/analysis/latest", apianalysis.HandleLatest)
	http.HandleFunc("/api/available-variables", apianalysis.HandleAvailableVariables)

	http.HandleFunc("/api/custom-ratios", apiratios.HandleCollection)
	http.HandleFunc("/api/custom-ratios/import", apiratios.HandleImport)
	http.HandleFunc("/api/custom-ratios/export", apiratios.HandleExport)
	http.HandleFunc("/api/custom-ratios/", apiratios.HandleItem)
	http.HandleFunc("/api/prefs", apiratios.HandlePrefs)

	http.HandleFunc("/api/report/latex", apireport.HandleLatex)

	configHandler := apiconfig.NewHandler(registry)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/analyze            (multipart statement files)")
	fmt.Println("  - POST /api/recalculate")
	fmt.Println("  - GET  /api/available-variables")
	fmt.Println("  - GET/POST /api/custom-ratios  (+ /{id}, /import, /export)")
	fmt.Println("  - GET/PUT  /api/prefs")
	fmt.Println("  - POST /api/report/latex")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
