package stickiesdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"howett.net/plist"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
)

// SidecarName is the optional property list mapping note ids to colours.
const SidecarName = ".SavedStickiesState"

var (
	idKeys    = []string{"UUID", "Identifier", "id", "Name"}
	colorKeys = []string{"Color", "RGB", "BackgroundColor"}
)

// ReadColors loads the sidecar at path. A missing file is not an error.
func ReadColors(path string) (map[string]stickies.Color, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]stickies.Color{}, nil
		}
		return nil, err
	}
	var raw any
	if _, err := plist.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	out := map[string]stickies.Color{}
	for _, rec := range records(stickies.NodeFromValue(raw)) {
		id := recordString(rec, idKeys)
		if id == "" {
			continue
		}
		for _, key := range colorKeys {
			node, ok := rec.Get(key)
			if !ok {
				continue
			}
			if c, ok := parseColor(node); ok {
				out[id] = c
				break
			}
		}
	}
	return out, nil
}

// records accepts either a top-level array of dictionaries or a dictionary
// whose first array value holds them.
func records(root stickies.Node) []stickies.Mapping {
	var seq stickies.Sequence
	switch n := root.(type) {
	case stickies.Sequence:
		seq = n
	case stickies.Mapping:
		for _, e := range n.Entries {
			if s, ok := e.Value.(stickies.Sequence); ok {
				seq = s
				break
			}
		}
	}
	out := make([]stickies.Mapping, 0, len(seq.Items))
	for _, item := range seq.Items {
		if m, ok := item.(stickies.Mapping); ok {
			out = append(out, m)
		}
	}
	return out
}

func recordString(m stickies.Mapping, keys []string) string {
	for _, key := range keys {
		node, ok := m.Get(key)
		if !ok {
			continue
		}
		if sc, ok := node.(stickies.Scalar); ok {
			if s, ok := sc.Value.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// parseColor reads an RGB triple given as a three-number array or as a
// red/green/blue dictionary. Channels all within 0-1 are scaled to 0-255.
func parseColor(node stickies.Node) (stickies.Color, bool) {
	var channels []float64
	switch n := node.(type) {
	case stickies.Sequence:
		if len(n.Items) < 3 {
			return stickies.ColorNone, false
		}
		for _, item := range n.Items[:3] {
			v, ok := number(item)
			if !ok {
				return stickies.ColorNone, false
			}
			channels = append(channels, v)
		}
	case stickies.Mapping:
		for _, keys := range [][]string{{"red", "r"}, {"green", "g"}, {"blue", "b"}} {
			found := false
			for _, key := range keys {
				if item, ok := n.Get(key); ok {
					if v, ok := number(item); ok {
						channels = append(channels, v)
						found = true
						break
					}
				}
			}
			if !found {
				return stickies.ColorNone, false
			}
		}
	default:
		return stickies.ColorNone, false
	}

	if channels[0] <= 1 && channels[1] <= 1 && channels[2] <= 1 {
		return stickies.ClassifyColorUnit(channels[0], channels[1], channels[2]), true
	}
	return stickies.ClassifyColor(clampByte(channels[0]), clampByte(channels[1]), clampByte(channels[2])), true
}

func number(n stickies.Node) (float64, bool) {
	sc, ok := n.(stickies.Scalar)
	if !ok {
		return 0, false
	}
	switch v := sc.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return int(v + 0.5)
	}
}
