package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/reclink-dev/reclink/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config
// template. Values are sourced from the domain package so the template
// and the code share one set of defaults.
type DefaultConfigValues struct {
	SimThreshold       float64
	ProbAtThreshold    float64
	MaxSignatureLength int
	Seed               int64
}

func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		SimThreshold:       domain.DefaultSimThreshold,
		ProbAtThreshold:    domain.DefaultProbAtThreshold,
		MaxSignatureLength: domain.DefaultMaxSignatureLength,
		Seed:               domain.DefaultSeed,
	}
}

// GenerateDefaultConfigTOML renders the default config template with
// domain values and returns the resulting TOML string.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}
