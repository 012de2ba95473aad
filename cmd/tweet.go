// cmd/tweet.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

func newTweetCmd(flags *globalFlags) *cobra.Command {
	tweetCmd := &cobra.Command{
		Use:   "tweet",
		Short: "Compose, judge, or run the compose-judge loop for tweets",
	}
	tweetCmd.AddCommand(newTweetComposeCmd(flags), newTweetJudgeCmd(flags), newTweetAgentCmd(flags))
	return tweetCmd
}

func newTweetComposeCmd(flags *globalFlags) *cobra.Command {
	composeCmd := &cobra.Command{
		Use:   "compose [prompt...]",
		Short: "Compose a single tweet of at most 280 characters",
		RunE: taskCommand(flags, schemas.TaskComposeTweet, payloadFlags{
			"prompt":       "prompt",
			"tone":         "tone",
			"hashtags":     "include_hashtags",
			"max-hashtags": "max_hashtags",
			"model":        "model",
			"temperature":  "temperature",
		}, func(cmd *cobra.Command, args []string) (map[string]any, error) {
			return argsOr(cmd.Flags(), "prompt", args, "prompt"), nil
		}),
	}

	f := composeCmd.Flags()
	f.String("prompt", "", "topic of the tweet")
	f.String("tone", "", "writing tone")
	f.Bool("hashtags", true, "include hashtags")
	f.Int("max-hashtags", 3, "maximum number of hashtags (0-3)")
	f.String("model", "", "model override")
	f.Float64("temperature", 0, "sampling temperature 0-2 (default from config)")
	return composeCmd
}

func newTweetJudgeCmd(flags *globalFlags) *cobra.Command {
	judgeCmd := &cobra.Command{
		Use:   "judge [tweet...]",
		Short: "Ask the editor model whether a tweet is ready to publish",
		RunE: taskCommand(flags, schemas.TaskJudgeTweet, payloadFlags{
			"tweet":       "tweet",
			"model":       "model",
			"temperature": "temperature",
		}, func(cmd *cobra.Command, args []string) (map[string]any, error) {
			return argsOr(cmd.Flags(), "tweet", args, "tweet"), nil
		}),
	}

	f := judgeCmd.Flags()
	f.String("tweet", "", "tweet text to judge")
	f.String("model", "", "model override")
	f.Float64("temperature", 0, "sampling temperature 0-2 (default from config)")
	return judgeCmd
}

func newTweetAgentCmd(flags *globalFlags) *cobra.Command {
	agentCmd := &cobra.Command{
		Use:   "agent [message...]",
		Short: "Compose and revise a tweet until the judge accepts it",
		Example: `  quill tweet agent "We just shipped dark mode"
  quill research https://example.com -o json > page.json && quill tweet agent --research page.json`,
		RunE: taskCommand(flags, schemas.TaskTwitterAgent, payloadFlags{
			"message":      "message",
			"tone":         "tone",
			"max-attempts": "max_attempts",
		}, func(cmd *cobra.Command, args []string) (map[string]any, error) {
			extra := argsOr(cmd.Flags(), "message", args, "message")
			path, _ := cmd.Flags().GetString("research")
			if path == "" {
				return extra, nil
			}
			research, err := readResearch(path)
			if err != nil {
				return nil, err
			}
			if extra == nil {
				extra = map[string]any{}
			}
			extra["researcher_result"] = research
			return extra, nil
		}),
	}

	f := agentCmd.Flags()
	f.String("message", "", "what the tweet should be about")
	f.String("tone", "", "writing tone")
	f.Int("max-attempts", 0, "compose attempts before giving up (default agent.max_attempts)")
	f.String("research", "", "JSON file holding a research result to ground the tweet on")
	return agentCmd
}

func readResearch(path string) (schemas.ResearchResult, error) {
	var research schemas.ResearchResult
	data, err := os.ReadFile(path)
	if err != nil {
		return research, fmt.Errorf("failed to read research file: %w", err)
	}
	if err := outputJSON.Unmarshal(data, &research); err != nil {
		return research, fmt.Errorf("failed to parse research file %s: %w", path, err)
	}
	return research, nil
}
