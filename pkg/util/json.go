package util

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawJSONProvider is an interface for SDK types that provide raw JSON responses.
type RawJSONProvider interface {
	RawJSON() string
}

// PrintPrettyJSON prints the raw JSON from an SDK response type with indentation.
// It uses the RawJSON() method to get the original API response, avoiding
// zero-value fields that would appear when re-marshaling the Go struct.
func PrintPrettyJSON(v RawJSONProvider) error {
	raw := v.RawJSON()
	if raw == "" {
		fmt.Println("{}")
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return err
	}
	fmt.Println(buf.String())
	return nil
}

// PrintJSON marshals any value with indentation and prints it. Used for
// local types that have no raw API response behind them.
func PrintJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
