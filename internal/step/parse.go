package step

import (
	"encoding/json"
	"strings"
)

// artifactEnvelope is the JSON shape the prompts ask the agent to respond
// with: a single path or an ordered list of phase files.
type artifactEnvelope struct {
	Path       string   `json:"path"`
	PhaseFiles []string `json:"phase_files"`
}

// extractEnvelope pulls the artifact envelope out of an LLM response. The
// response should be only the JSON object, but agents wrap it in prose often
// enough that the first balanced object in the text is tried as a fallback.
func extractEnvelope(output string) (artifactEnvelope, bool) {
	var env artifactEnvelope
	trimmed := strings.TrimSpace(output)
	if err := json.Unmarshal([]byte(trimmed), &env); err == nil {
		return env, true
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &env); err == nil {
			return env, true
		}
	}
	return artifactEnvelope{}, false
}

// extractPath returns the artifact path from an LLM response: the JSON
// envelope's path if present, otherwise the first markdown path mentioned in
// the text. Returns "" when nothing usable is found.
func extractPath(output string) string {
	if env, ok := extractEnvelope(output); ok && env.Path != "" {
		return env.Path
	}
	for _, field := range strings.Fields(output) {
		candidate := trimArtifact(field)
		if strings.HasSuffix(candidate, ".md") {
			return candidate
		}
	}
	return ""
}

// trimArtifact strips surrounding punctuation from a whitespace-split field.
// Trailing sentence punctuation is trimmed too, but never leading dots, which
// are part of dotted directory names.
func trimArtifact(field string) string {
	candidate := strings.TrimLeft(field, `"'(),:`+"`")
	return strings.TrimRight(candidate, `"'(),:.;`+"`")
}

// extractPhaseFiles returns the ordered phase-file list from an LLM
// response: the JSON envelope's phase_files if present, otherwise every
// markdown path mentioned in the text, in order of appearance.
func extractPhaseFiles(output string) []string {
	if env, ok := extractEnvelope(output); ok && len(env.PhaseFiles) > 0 {
		return env.PhaseFiles
	}

	var files []string
	seen := make(map[string]bool)
	for _, field := range strings.Fields(output) {
		candidate := trimArtifact(field)
		if strings.HasSuffix(candidate, ".md") && !seen[candidate] {
			seen[candidate] = true
			files = append(files, candidate)
		}
	}
	return files
}
