// internal/worker/adapters/adapters.go
package adapters

import (
	"context"
	"encoding/json"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/agent"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

// Handler runs one kind of task from its raw JSON payload.
type Handler interface {
	Name() schemas.TaskName
	Handle(ctx context.Context, payload json.RawMessage) (any, error)
}

// TaskAdapter binds a typed task function to a task name. Payloads are
// decoded over the request returned by defaults.
type TaskAdapter[Req, Res any] struct {
	name     schemas.TaskName
	defaults func() Req
	run      func(context.Context, Req) (Res, error)
}

func NewTaskAdapter[Req, Res any](name schemas.TaskName, defaults func() Req, run func(context.Context, Req) (Res, error)) *TaskAdapter[Req, Res] {
	return &TaskAdapter[Req, Res]{name: name, defaults: defaults, run: run}
}

func (a *TaskAdapter[Req, Res]) Name() schemas.TaskName { return a.name }

func (a *TaskAdapter[Req, Res]) Handle(ctx context.Context, payload json.RawMessage) (any, error) {
	req := a.defaults()
	if err := decodeParams(payload, &req); err != nil {
		return nil, err
	}
	res, err := a.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Tasks groups the task implementations the default adapters dispatch to.
type Tasks struct {
	LinkedIn   *agent.LinkedIn
	Twitter    *agent.Twitter
	Researcher *agent.Researcher
	Marketer   *agent.Marketer
}

// Defaults builds one adapter per known task. Request defaults come from cfg.
func Defaults(cfg config.AgentConfig, t Tasks) []Handler {
	return []Handler{
		NewTaskAdapter(schemas.TaskCreatePost,
			func() schemas.PostRequest { return agent.PostDefaults(cfg) }, t.LinkedIn.CreatePost),
		NewTaskAdapter(schemas.TaskSimulatePost,
			schemas.DefaultSimulateRequest, t.LinkedIn.SimulatePost),
		NewTaskAdapter(schemas.TaskComposeTweet,
			func() schemas.TweetRequest { return agent.TweetDefaults(cfg) }, t.Twitter.ComposeTweet),
		NewTaskAdapter(schemas.TaskJudgeTweet,
			func() schemas.JudgeRequest { return agent.JudgeDefaults(cfg) }, t.Twitter.JudgeTweet),
		NewTaskAdapter(schemas.TaskTwitterAgent,
			func() schemas.AgentRequest { return schemas.AgentRequest{} }, t.Twitter.Run),
		NewTaskAdapter(schemas.TaskReadWebsite,
			func() schemas.ReadWebsiteRequest { return agent.ReadWebsiteDefaults(cfg) }, t.Researcher.ReadWebsite),
		NewTaskAdapter(schemas.TaskMarketerAgent,
			func() schemas.MarketerRequest { return schemas.MarketerRequest{} }, t.Marketer.Run),
	}
}
