// cmd/task.go
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// payloadFlags maps flag names onto payload keys. Only flags the user set end
// up in the payload, so task defaults apply to everything else.
type payloadFlags map[string]string

func (p payloadFlags) build(fs *pflag.FlagSet, extra map[string]any) (json.RawMessage, error) {
	out := make(map[string]any, len(p)+len(extra))
	for name, key := range p {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		var (
			v   any
			err error
		)
		switch f.Value.Type() {
		case "string":
			v, err = fs.GetString(name)
		case "int":
			v, err = fs.GetInt(name)
		case "float64":
			v, err = fs.GetFloat64(name)
		case "bool":
			v, err = fs.GetBool(name)
		default:
			return nil, fmt.Errorf("unsupported flag type %q for --%s", f.Value.Type(), name)
		}
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return outputJSON.Marshal(out)
}

// argsOr joins positional args into a value for key unless a flag set it.
func argsOr(fs *pflag.FlagSet, flag string, args []string, key string) map[string]any {
	if fs.Changed(flag) || len(args) == 0 {
		return nil
	}
	return map[string]any{key: strings.Join(args, " ")}
}

// runTask executes one task through the worker and prints its output.
func runTask(cmd *cobra.Command, flags *globalFlags, name schemas.TaskName, payload json.RawMessage) error {
	w, cleanup, err := buildWorker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res := w.ProcessTask(cmd.Context(), schemas.Task{Name: name, Payload: payload})
	if res.Failed() {
		writeFailure(cmd.ErrOrStderr(), res.Error)
		return &TaskFailedError{Payload: res.Error}
	}
	return writeOutput(cmd.OutOrStdout(), flags.format, res.Output)
}

// taskCommand builds a command that turns its flags into a task payload.
func taskCommand(flags *globalFlags, name schemas.TaskName, fields payloadFlags, extra func(cmd *cobra.Command, args []string) (map[string]any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var more map[string]any
		if extra != nil {
			var err error
			if more, err = extra(cmd, args); err != nil {
				return err
			}
		}
		payload, err := fields.build(cmd.Flags(), more)
		if err != nil {
			return err
		}
		return runTask(cmd, flags, name, payload)
	}
}
