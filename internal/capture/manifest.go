package capture

import (
	"encoding/json"
	"os"
	"time"
)

// ManifestEntry represents one captured frame in manifest.json.
type ManifestEntry struct {
	Seq    uint64    `json:"seq"`
	Kind   string    `json:"kind"`
	Time   time.Time `json:"time"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Image  string    `json:"image"`
}

// WriteManifest writes the successful results to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Seq:    r.Seq,
			Kind:   r.Kind,
			Time:   r.Time,
			Width:  r.Width,
			Height: r.Height,
			Image:  r.Path,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
