package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry represents one scene in the output manifest.
type ManifestEntry struct {
	Name       string   `json:"name"`
	Mode       string   `json:"mode"`
	Models     []string `json:"models"`
	Image      string   `json:"image,omitempty"`
	Light      string   `json:"light,omitempty"`
	ShadowDump string   `json:"shadow_dump,omitempty"`
	Pixels     int      `json:"pixels"`
	Error      string   `json:"error,omitempty"`
}

// WriteManifest writes manifest.json describing results to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Name:       r.Name,
			Mode:       r.Mode,
			Models:     r.Models,
			Image:      r.Image,
			Light:      r.Light,
			ShadowDump: r.ShadowDump,
			Pixels:     r.Stats.Drawn,
			Error:      r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: manifest: %w", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("batch: manifest %s: %w", path, err)
	}
	return entries, nil
}
