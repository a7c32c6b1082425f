package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smart-prospective/spctl/spapi"
)

// paramsCmd lists the parameters accepted by add and edit calls
var paramsCmd = &cobra.Command{
	Use:         "params OPERATION",
	Short:       "List the parameters accepted by add_user, add_material, add_materialgroup, add_media or edit_media",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipClientAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		names := spapi.SupportedParameters(args[0])
		if names == nil {
			return fmt.Errorf("unknown operation %q", args[0])
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), names)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}

// paramFlags collects the parameters of add and edit commands
type paramFlags struct {
	set  []string
	list []string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&p.set, "set", nil, "parameter as key=value (repeatable); true/false, numbers and JSON objects are typed")
	cmd.Flags().StringArrayVar(&p.list, "list", nil, "list parameter as key=a,b,c (repeatable)")
}

// params builds the call parameters. A key given twice is an error.
func (p *paramFlags) params() (spapi.Params, error) {
	params := make(spapi.Params, len(p.set)+len(p.list))

	for _, raw := range p.set {
		key, value, err := splitParam(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := params[key]; dup {
			return nil, fmt.Errorf("parameter %s given more than once", key)
		}
		params[key] = typedValue(value)
	}

	for _, raw := range p.list {
		key, value, err := splitParam(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := params[key]; dup {
			return nil, fmt.Errorf("parameter %s given more than once", key)
		}
		items := []string{}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		params[key] = items
	}

	return params, nil
}

func splitParam(raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid parameter %q, expected key=value", raw)
	}
	return key, value, nil
}

// typedValue keeps the value as text unless it is a boolean, an integer or
// a JSON object
func typedValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil && strconv.Itoa(n) == value {
		return n
	}
	if strings.HasPrefix(strings.TrimSpace(value), "{") && json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	return value
}
