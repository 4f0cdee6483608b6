package cmd

import (
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/copilotmesh"
	"github.com/hupe1980/copilotmesh/config"
	"github.com/hupe1980/copilotmesh/copilot"
	"github.com/hupe1980/copilotmesh/history"
	"github.com/hupe1980/copilotmesh/logging"
	"github.com/hupe1980/copilotmesh/model"
	anthropicmodel "github.com/hupe1980/copilotmesh/model/anthropic"
	openaimodel "github.com/hupe1980/copilotmesh/model/openai"
)

type app struct {
	cfg    *config.Config
	logger *logging.CopilotLogger
	agent  *copilotmesh.Agent
}

type wireOptions struct {
	conversationID string
	planningMode   bool
	logOutput      io.Writer
}

func wireApp(configPath string, opts wireOptions) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	lc, err := cfg.LoggerConfig()
	if err != nil {
		return nil, err
	}
	if opts.logOutput != nil {
		lc.Output = opts.logOutput
	}
	logger := logging.NewLogger(lc).WithComponent("pals")

	def, err := config.ParseDefinition(cfg.Agent.Definition)
	if err != nil {
		return nil, err
	}

	m, err := newModel(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("wire model: %w", err)
	}

	responder := copilot.NewModelResponder(m, func(o *copilot.Options) {
		o.AgentName = def.Name()
		o.Roster = cfg.Roster()
		o.DevilsAdvocate = cfg.Ledger.DevilsAdvocate
		o.Stream = cfg.Model.Stream
	})

	var store history.Store = history.NewInMemoryStore()
	if cfg.History.Dir != "" {
		fs, err := history.NewFileStore(cfg.History.Dir)
		if err != nil {
			return nil, fmt.Errorf("wire history store: %w", err)
		}
		store = fs
	}

	agent, err := copilotmesh.FromConfig(cfg, responder, func(o *copilotmesh.Options) {
		o.Definition = def
		o.History = store
		o.ConversationID = opts.conversationID
		o.Logger = logger
		if opts.planningMode {
			o.PlanningMode = true
		}
	})
	if err != nil {
		return nil, fmt.Errorf("wire agent: %w", err)
	}

	logger.Debug("agent wired", "provider", cfg.Model.Provider, "roster", cfg.Ledger.Roster, "conversation_id", agent.ConversationID())

	return &app{cfg: cfg, logger: logger, agent: agent}, nil
}

func newModel(mc config.ModelConfig) (model.Model, error) {
	switch mc.Provider {
	case config.ProviderOpenAI:
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
			o.Temperature = mc.Temperature
			o.MaxCompletionTokens = mc.MaxTokens
			o.BaseURL = mc.BaseURL
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if mc.Name != "" {
				o.Model = anthropic.Model(mc.Name)
			}
			o.Temperature = mc.Temperature
			o.MaxTokens = mc.MaxTokens
		}), nil
	case config.ProviderMock:
		return model.NewMockModel("mock", config.ProviderMock), nil
	default:
		return nil, fmt.Errorf("%w: unknown model provider %q", config.ErrInvalidConfig, mc.Provider)
	}
}
