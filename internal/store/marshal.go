package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/netmut/internal/netlist"
)

// marshalArgs converts op args to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalArgs(args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	data, err := netlist.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// unmarshalArgs parses canonical JSON TEXT back into op args.
// Numbers stay json.Number so integers keep full precision; the op decoder
// converts them.
func unmarshalArgs(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return args, nil
}

// unmarshalSnapshot parses a canonical snapshot body.
func unmarshalSnapshot(data string) (netlist.Snapshot, error) {
	var snap netlist.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return netlist.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
