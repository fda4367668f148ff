package cli

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

type DebugCmd struct {
	DBPath DebugDBPathCmd `cmd:"" name:"db-path" help:"Show database path."`
	Dump   DebugDumpCmd   `cmd:"" help:"Dump the raw stored records as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	output := map[string]string{
		"driver": driverName(ctx.Store),
		"path":   ctx.Store.GetConfigPath(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	ctx.println(string(jsonBytes))
	return nil
}

type DebugDumpCmd struct {
	Key string `arg:"" optional:"" help:"Only dump this key."`
}

func (cmd *DebugDumpCmd) Run(ctx *Context) error {
	bg := context.Background()
	keys := []string{cmd.Key}
	if cmd.Key == "" {
		var err error
		keys, err = ctx.Store.Keys(bg)
		if err != nil {
			return fmt.Errorf("failed to list keys: %w", err)
		}
	}

	output := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		raw, err := ctx.Store.Get(bg, key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if json.Valid([]byte(raw)) {
			output[key] = json.RawMessage(raw)
			continue
		}
		quoted, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		output[key] = quoted
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	ctx.println(string(jsonBytes))
	return nil
}
