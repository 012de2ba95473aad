// cmd/post.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

func newPostCmd(flags *globalFlags) *cobra.Command {
	postCmd := &cobra.Command{
		Use:   "post [prompt...]",
		Short: "Write a LinkedIn thought-leadership post",
		Example: `  quill post "How we cut our build times in half"
  quill post --prompt "AI in hiring" --tone candid --max-hashtags 2 -o html`,
		RunE: taskCommand(flags, schemas.TaskCreatePost, payloadFlags{
			"prompt":       "prompt",
			"tone":         "tone",
			"audience":     "audience",
			"hashtags":     "include_hashtags",
			"max-hashtags": "max_hashtags",
			"model":        "model",
			"temperature":  "temperature",
		}, func(cmd *cobra.Command, args []string) (map[string]any, error) {
			return argsOr(cmd.Flags(), "prompt", args, "prompt"), nil
		}),
	}

	f := postCmd.Flags()
	f.String("prompt", "", "topic of the post")
	f.String("tone", "", "writing tone")
	f.String("audience", "", "intended readers")
	f.Bool("hashtags", true, "include hashtags")
	f.Int("max-hashtags", 3, "maximum number of hashtags (0-3)")
	f.String("model", "", "model override")
	f.Float64("temperature", 0, "sampling temperature 0-2 (default from config)")
	return postCmd
}

func newSimulateCmd(flags *globalFlags) *cobra.Command {
	simulateCmd := &cobra.Command{
		Use:   "simulate [post...]",
		Short: "Record a simulated publication without posting anything",
		Example: `  quill simulate --post "$(quill post 'launch day')" --schedule 2025-03-01T09:00:00`,
		RunE: taskCommand(flags, schemas.TaskSimulatePost, payloadFlags{
			"post":     "post",
			"channel":  "channel",
			"schedule": "schedule",
		}, func(cmd *cobra.Command, args []string) (map[string]any, error) {
			return argsOr(cmd.Flags(), "post", args, "post"), nil
		}),
	}

	f := simulateCmd.Flags()
	f.String("post", "", "post text")
	f.String("channel", "linkedin", "channel name")
	f.String("schedule", "", "ISO8601 time; naive times are read as UTC (default now)")
	return simulateCmd
}
