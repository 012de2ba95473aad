// api/schemas/schemas.go

// Package schemas holds the data model shared by every layer of quill: the
// caller-facing requests, the validated artifacts, the declared response
// schemas sent to the model, the raw completion shapes and the error taxonomy.
package schemas

import (
	"encoding/json"
	"time"
)

// TaskName identifies a unit of work the worker knows how to run.
type TaskName string

const (
	TaskCreatePost    TaskName = "linkedin.create-post"
	TaskSimulatePost  TaskName = "linkedin.simulate-post"
	TaskComposeTweet  TaskName = "twitter.compose-tweet"
	TaskJudgeTweet    TaskName = "twitter.judge-tweet"
	TaskTwitterAgent  TaskName = "twitter.twitter-agent"
	TaskReadWebsite   TaskName = "researcher.read-website"
	TaskMarketerAgent TaskName = "marketer.marketer"
)

// AllTasks lists every task name in registration order.
var AllTasks = []TaskName{
	TaskCreatePost,
	TaskSimulatePost,
	TaskComposeTweet,
	TaskJudgeTweet,
	TaskTwitterAgent,
	TaskReadWebsite,
	TaskMarketerAgent,
}

// Task is one invocation request handed to the worker by a host.
type Task struct {
	ID      string          `json:"id" yaml:"id"`
	Name    TaskName        `json:"name" yaml:"name"`
	Payload json.RawMessage `json:"payload" yaml:"-"`
}

// TaskResult is the envelope returned to the host for a single task.
// Exactly one of Output and Error is set.
type TaskResult struct {
	TaskID    string        `json:"task_id" yaml:"task_id"`
	Name      TaskName      `json:"name" yaml:"name"`
	Output    any           `json:"output,omitempty" yaml:"output,omitempty"`
	Error     *ErrorPayload `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Failed reports whether the task ended in error.
func (r TaskResult) Failed() bool { return r.Error != nil }
