// internal/agent/marketer.go
package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

// WebsiteReader is the research step the marketer delegates to.
type WebsiteReader interface {
	ReadWebsite(ctx context.Context, req schemas.ReadWebsiteRequest) (schemas.ResearchResult, error)
}

// TweetAgent is the writing step the marketer delegates to.
type TweetAgent interface {
	Run(ctx context.Context, req schemas.AgentRequest) (schemas.AgentResult, error)
}

// Marketer researches an optional source page and turns the message, plus
// whatever the research found, into an approved tweet.
type Marketer struct {
	reader WebsiteReader
	writer TweetAgent
	cfg    config.AgentConfig
	logger *zap.Logger
}

func NewMarketer(reader WebsiteReader, writer TweetAgent, cfg config.AgentConfig, logger *zap.Logger) *Marketer {
	return &Marketer{reader: reader, writer: writer, cfg: cfg, logger: logger.Named("marketer")}
}

func (m *Marketer) Run(ctx context.Context, req schemas.MarketerRequest) (schemas.MarketerResult, error) {
	if err := schemas.Validate(req); err != nil {
		return schemas.MarketerResult{}, err
	}
	m.logger.Info("Marketer received message", zap.String("message", req.Message), zap.String("url", req.URL))

	var research *schemas.ResearchResult
	if req.URL != "" {
		rr := ReadWebsiteDefaults(m.cfg)
		rr.URL = req.URL
		res, err := m.reader.ReadWebsite(ctx, rr)
		if err != nil {
			return schemas.MarketerResult{}, err
		}
		research = &res
	}

	out, err := m.writer.Run(ctx, schemas.AgentRequest{Message: req.Message, Research: research})
	if err != nil {
		return schemas.MarketerResult{Research: research}, err
	}
	return schemas.MarketerResult{Research: research, Agent: out}, nil
}
