package domain

import "encoding/base64"
import "encoding/json"

// EncodeMetadata serialises an arbitrary caller-provided mapping to JSON and
// base64-encodes it for storage. A nil map encodes as the empty mapping.
func EncodeMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

// DecodeMetadata reverses EncodeMetadata. An empty blob decodes to an empty
// mapping rather than an error.
func DecodeMetadata(blob []byte) (map[string]any, error) {
	if len(blob) == 0 {
		return map[string]any{}, nil
	}
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(blob)))
	n, err := base64.StdEncoding.Decode(raw, blob)
	if err != nil {
		return nil, err
	}
	raw = raw[:n]
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// MergeResult merges ResultMetadata fields into a caller metadata mapping,
// re-encoding it. Used by the Scheduler when a media transitions to
// SUCCESS: result fields must be visible in the same metadata blob the
// control plane reports.
func MergeResult(blob []byte, result ResultMetadata) ([]byte, error) {
	m, err := DecodeMetadata(blob)
	if err != nil {
		return nil, err
	}
	if result.ResultURI != "" {
		m["result_uri"] = result.ResultURI
	}
	if result.NumTracks != 0 {
		m["num_tracks"] = result.NumTracks
	}
	if result.ProcessingTimeSeconds != 0 {
		m["processing_time_seconds"] = result.ProcessingTimeSeconds
	}
	return EncodeMetadata(m)
}
