// cmd/batch.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// batchEntry is the YAML form of a task.
type batchEntry struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Payload map[string]any `yaml:"payload"`
}

func newBatchCmd(flags *globalFlags) *cobra.Command {
	var concurrency int

	batchCmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run a list of tasks from a JSON or YAML file ('-' reads JSON from stdin)",
		Example: `  quill batch tasks.yaml -o json
  echo '[{"name":"twitter.compose-tweet","payload":{"prompt":"launch"}}]' | quill batch -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := readTasks(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.SetWorkerConcurrency(concurrency)
			}

			w, cleanup, err := buildWorker(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			results := w.ProcessBatch(cmd.Context(), tasks)
			if err := writeOutput(cmd.OutOrStdout(), flags.format, results); err != nil {
				return err
			}

			failed := 0
			for _, res := range results {
				if res.Failed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d tasks failed", failed, len(results))
			}
			return nil
		},
	}

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "tasks run at once (default worker.concurrency)")
	return batchCmd
}

func readTasks(stdin io.Reader, path string) ([]schemas.Task, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var entries []batchEntry
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		tasks := make([]schemas.Task, len(entries))
		for i, e := range entries {
			payload, err := outputJSON.Marshal(e.Payload)
			if err != nil {
				return nil, fmt.Errorf("task %d: %w", i, err)
			}
			tasks[i] = schemas.Task{ID: e.ID, Name: schemas.TaskName(e.Name), Payload: payload}
		}
		return tasks, nil
	default:
		var tasks []schemas.Task
		if err := outputJSON.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return tasks, nil
	}
}
