// Package llm abstracts the text-generation providers used for
// statement extraction and report commentary. Provider selection is
// configured per task in config/models.yaml.
package llm

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// Provider is the interface all text-generation backends implement.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// TaskConfig overrides the provider for one task.
type TaskConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

// Config is the models.yaml schema.
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Tasks          map[string]TaskConfig `yaml:"tasks"`
}

// LoadConfig reads the provider configuration file. A missing file is
// not fatal; the zero Config falls back to Gemini.
func LoadConfig(path string) Config {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[LLM] no provider config at %s, using defaults: %v", path, err)
		return cfg
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		log.Printf("[LLM] invalid provider config %s, using defaults: %v", path, err)
		return Config{}
	}
	return cfg
}

// Registry resolves tasks ("extraction", "narrative") to providers.
type Registry struct {
	config    Config
	providers map[string]Provider
}

// NewRegistry builds the registry with all known providers.
func NewRegistry(config Config) *Registry {
	return &Registry{
		config: config,
		providers: map[string]Provider{
			"gemini":   &GeminiProvider{},
			"deepseek": &DeepSeekProvider{},
			"qwen":     &QwenProvider{},
		},
	}
}

// ProviderFor returns the provider configured for a task, falling
// back to the global active provider and then to Gemini.
func (r *Registry) ProviderFor(task string) Provider {
	if tc, ok := r.config.Tasks[task]; ok && tc.Provider != "" {
		if p, ok := r.providers[tc.Provider]; ok {
			return p
		}
		log.Printf("[LLM] task %s names unknown provider %q", task, tc.Provider)
	}
	if p, ok := r.providers[r.config.ActiveProvider]; ok {
		return p
	}
	return r.providers["gemini"]
}

// ActiveProvider returns the global provider name.
func (r *Registry) ActiveProvider() string {
	if _, ok := r.providers[r.config.ActiveProvider]; ok {
		return r.config.ActiveProvider
	}
	return "gemini"
}

// SetActiveProvider switches the global provider at runtime.
func (r *Registry) SetActiveProvider(name string) error {
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	r.config.ActiveProvider = name
	log.Printf("[LLM] global provider set to %s", name)
	return nil
}

// Available lists the registered provider names, sorted.
func (r *Registry) Available() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs a prompt for a task with the configured provider,
// applying any per-task model override.
func (r *Registry) Execute(ctx context.Context, task, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := r.ProviderFor(task)
	if options == nil {
		options = map[string]interface{}{}
	}
	if tc, ok := r.config.Tasks[task]; ok && tc.Model != "" {
		if _, set := options["model"]; !set {
			options["model"] = tc.Model
		}
	}
	adapted := provider.AdaptInstructions(systemPrompt)
	out, err := provider.GenerateResponse(ctx, prompt, adapted, options)
	if err != nil {
		return "", fmt.Errorf("llm task %s: %w", task, err)
	}
	return out, nil
}
