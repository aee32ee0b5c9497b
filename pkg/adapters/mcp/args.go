package mcp

import (
	"fmt"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/mitchellh/mapstructure"
)

// TreeList is the result of list_trees.
type TreeList struct {
	Trees []string `json:"trees" jsonschema_description:"Ids of the available trees"`
}

// SelectionResult is the structured result of every session tool.
type SelectionResult struct {
	SessionID string                      `json:"session_id" jsonschema_description:"Session id"`
	TreeID    string                      `json:"tree_id" jsonschema_description:"Tree the session belongs to"`
	Version   uint64                      `json:"version" jsonschema_description:"Number of committed changes"`
	States    map[string]domain.ItemState `json:"states" jsonschema_description:"Checked, indeterminate and expanded flags per item"`
	Selected  []string                    `json:"selected" jsonschema_description:"Checked item ids"`
	Changed   bool                        `json:"changed" jsonschema_description:"False when the call left the session unchanged"`
}

// OpenArgs are the arguments of open_session.
type OpenArgs struct {
	TreeID    string `mapstructure:"tree_id"`
	SessionID string `mapstructure:"session_id"`
}

// SessionArgs are the arguments of tools addressing a whole session.
type SessionArgs struct {
	SessionID string `mapstructure:"session_id"`
}

// ItemArgs address one item of a session.
type ItemArgs struct {
	SessionID string `mapstructure:"session_id"`
	ItemID    string `mapstructure:"item_id"`
}

// CheckArgs are the arguments of set_checked.
type CheckArgs struct {
	SessionID string `mapstructure:"session_id"`
	ItemID    string `mapstructure:"item_id"`
	Checked   bool   `mapstructure:"checked"`
}

// decodeArgs decodes raw tool arguments into out and sanitizes its id fields.
// Weak typing accepts "true" or 1 for booleans, as some clients send them.
func decodeArgs(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	var fields []*string
	switch a := out.(type) {
	case *OpenArgs:
		fields = []*string{&a.TreeID, &a.SessionID}
	case *SessionArgs:
		fields = []*string{&a.SessionID}
	case *ItemArgs:
		fields = []*string{&a.SessionID, &a.ItemID}
	case *CheckArgs:
		fields = []*string{&a.SessionID, &a.ItemID}
	}
	for _, f := range fields {
		if *f == "" {
			continue
		}
		clean, err := runner.SanitizeID(*f)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		*f = clean
	}
	return nil
}
