// cmd/research.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

func newResearchCmd(flags *globalFlags) *cobra.Command {
	researchCmd := &cobra.Command{
		Use:   "research URL",
		Short: "Fetch a web page and extract its readable content",
		Args:  cobra.MaximumNArgs(1),
		RunE: taskCommand(flags, schemas.TaskReadWebsite, payloadFlags{
			"url":            "url",
			"timeout":        "timeout_seconds",
			"model":          "model",
			"temperature":    "temperature",
			"max-characters": "max_characters",
		}, func(cmd *cobra.Command, args []string) (map[string]any, error) {
			return argsOr(cmd.Flags(), "url", args, "url"), nil
		}),
	}

	f := researchCmd.Flags()
	f.String("url", "", "page to read")
	f.Float64("timeout", 0, "fetch timeout in seconds, 1-60 (default from config)")
	f.String("model", "", "model override")
	f.Float64("temperature", 0, "sampling temperature 0-2 (default from config)")
	f.Int("max-characters", 0, "page text budget handed to the model (default from config)")
	return researchCmd
}

func newMarketCmd(flags *globalFlags) *cobra.Command {
	marketCmd := &cobra.Command{
		Use:   "market [message...]",
		Short: "Research an optional URL, then run the tweet agent on the result",
		RunE: taskCommand(flags, schemas.TaskMarketerAgent, payloadFlags{
			"message": "message",
			"url":     "url",
		}, func(cmd *cobra.Command, args []string) (map[string]any, error) {
			return argsOr(cmd.Flags(), "message", args, "message"), nil
		}),
	}

	f := marketCmd.Flags()
	f.String("message", "", "what to promote")
	f.String("url", "", "page to research first")
	return marketCmd
}
