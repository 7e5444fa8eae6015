package dashboard

import "strings"

// Environment tags an item with the deployment stage it points at.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvQA          Environment = "qa"
	EnvDevelopment Environment = "development"
	EnvCommon      Environment = "common"
)

// EnvironmentInfo carries the presentation attributes of an environment.
type EnvironmentInfo struct {
	Value     Environment `json:"value"`
	Label     string      `json:"label"`
	Color     string      `json:"color"`
	TextColor string      `json:"text_color"`
}

var environmentInfo = map[Environment]EnvironmentInfo{
	EnvProduction:  {Value: EnvProduction, Label: "Production", Color: "#7f1d1d", TextColor: "#fca5a5"},
	EnvStaging:     {Value: EnvStaging, Label: "Staging", Color: "#9a3412", TextColor: "#fdba74"},
	EnvQA:          {Value: EnvQA, Label: "QA", Color: "#581c87", TextColor: "#d8b4fe"},
	EnvDevelopment: {Value: EnvDevelopment, Label: "Development", Color: "#14532d", TextColor: "#86efac"},
	EnvCommon:      {Value: EnvCommon, Label: "Common", Color: "#1e40af", TextColor: "#93c5fd"},
}

// Environments lists the known environments in display order.
func Environments() []EnvironmentInfo {
	order := []Environment{EnvProduction, EnvStaging, EnvQA, EnvDevelopment, EnvCommon}
	out := make([]EnvironmentInfo, 0, len(order))
	for _, env := range order {
		out = append(out, environmentInfo[env])
	}
	return out
}

// ParseEnvironment normalizes user input; ok is false for unknown values.
func ParseEnvironment(value string) (Environment, bool) {
	env := Environment(strings.ToLower(strings.TrimSpace(value)))
	_, ok := environmentInfo[env]
	return env, ok
}

// Valid reports whether env is a known environment.
func (env Environment) Valid() bool {
	_, ok := environmentInfo[env]
	return ok
}

// Info returns the presentation attributes, falling back to Common.
func (env Environment) Info() EnvironmentInfo {
	if info, ok := environmentInfo[env]; ok {
		return info
	}
	return environmentInfo[EnvCommon]
}
