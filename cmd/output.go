// cmd/output.go
package cmd

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/assembly"
)

var outputJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// TaskFailedError reports a task that ran and failed. Its payload has
// already been written to the error stream.
type TaskFailedError struct {
	Payload *schemas.ErrorPayload
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Payload.Kind, e.Payload.Message)
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := outputJSON.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "html":
		html, err := assembly.RenderHTML(renderText(v))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	default:
		_, err := fmt.Fprintln(w, renderText(v))
		return err
	}
}

// writeFailure prints the error payload as JSON so scripts can parse it.
func writeFailure(w io.Writer, p *schemas.ErrorPayload) {
	enc := outputJSON.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{"error": p})
}

// renderText is the human readable form of a task output.
func renderText(v any) string {
	switch r := v.(type) {
	case schemas.PostResult:
		return r.Rendered
	case schemas.TweetResult:
		return assembly.RenderTweet(r.Tweet)
	case schemas.AgentResult:
		return r.Rendered
	case schemas.MarketerResult:
		return r.Agent.Rendered
	case schemas.JudgeResult:
		if r.ShouldPublish {
			return "Ready to publish."
		}
		return "Needs revision: " + r.Feedback
	case schemas.SimulationResult:
		return fmt.Sprintf("Simulated %s post (%s) scheduled for %s", r.Channel, r.Status, r.ScheduledTime.Format("2006-01-02T15:04:05Z07:00"))
	case schemas.ResearchResult:
		var b strings.Builder
		if r.Title != "" {
			b.WriteString("# " + r.Title + "\n\n")
		}
		if r.Summary != nil {
			b.WriteString(*r.Summary + "\n\n")
		}
		b.WriteString(r.ContentMarkdown)
		return strings.TrimSpace(b.String())
	case []schemas.TaskResult:
		parts := make([]string, 0, len(r))
		for _, res := range r {
			if res.Failed() {
				parts = append(parts, fmt.Sprintf("[%s %s] failed: %s", res.Name, res.TaskID, res.Error.Message))
				continue
			}
			parts = append(parts, fmt.Sprintf("[%s %s]\n%s", res.Name, res.TaskID, renderText(res.Output)))
		}
		return strings.Join(parts, "\n\n")
	default:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimRight(string(out), "\n")
	}
}
