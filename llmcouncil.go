// Package llmcouncil provides a high-level façade over the deliberation
// engine and its services (configuration, metadata, reporting, history &
// logging). Most applications interact with this package by:
//  1. Creating a Council via New() with a model invoker (optionally
//     overriding default in-memory services)
//  2. Convening the council on a query (Convene) or a stored prompt
//     (ConvenePrompt)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a metadata store, a
// durable finding sink and a structured logger.
package llmcouncil

import (
	"context"

	"github.com/hupe1980/llmcouncil/config"
	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/engine"
	"github.com/hupe1980/llmcouncil/history"
	"github.com/hupe1980/llmcouncil/logging"
	"github.com/hupe1980/llmcouncil/model"
	"github.com/hupe1980/llmcouncil/stage"
)

// Options configures the Council instance.
type Options struct {
	// Defaults is the process-wide default run configuration.
	Defaults *config.Defaults

	// Stages overrides the built-in stage definitions.
	Stages map[stage.Role]*stage.Definition

	// ConfigLoader supplies per-prompt raw configuration documents.
	ConfigLoader core.ConfigLoader

	// PersonaLoader resolves persona references, typically a metadata.Store.
	PersonaLoader core.PersonaLoader

	// Reporter receives the finding stream of every run.
	Reporter core.Reporter

	// History stores completed run results (defaults to in-memory).
	History history.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Council is the high-level façade aggregating the engine and its services.
type Council struct {
	opts    Options
	engine  *engine.Engine
	history history.Store
}

// New creates a Council bound to a model invoker with optional overrides.
// Any unset service is initialized with a safe default.
func New(invoker model.Invoker, optFns ...func(o *Options)) (*Council, error) {
	opts := Options{
		Defaults: config.NewDefaults(),
		Stages:   stage.BuiltinSet(),
		Reporter: core.NoOpReporter{},
		History:  history.NewInMemoryStore(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	eng, err := engine.New(invoker, func(o *engine.Options) {
		o.Defaults = opts.Defaults
		o.Stages = opts.Stages
		o.ConfigLoader = opts.ConfigLoader
		o.PersonaLoader = opts.PersonaLoader
		o.Reporter = opts.Reporter
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &Council{opts: opts, engine: eng, history: opts.History}, nil
}

// Convene runs one full deliberation over the query and stores the result.
func (c *Council) Convene(ctx context.Context, promptID, query string, council engine.Council) (*core.RunResult, error) {
	return c.run(ctx, engine.RunInput{
		PromptID: promptID,
		Query:    query,
		Council:  council,
	})
}

// ConveneWithConfig is Convene with an explicit raw configuration document,
// bypassing the configured ConfigLoader.
func (c *Council) ConveneWithConfig(ctx context.Context, promptID, query string, council engine.Council, rawConfig map[string]any) (*core.RunResult, error) {
	return c.run(ctx, engine.RunInput{
		PromptID:  promptID,
		Query:     query,
		Council:   council,
		RawConfig: rawConfig,
	})
}

func (c *Council) run(ctx context.Context, in engine.RunInput) (*core.RunResult, error) {
	res, err := c.engine.Run(ctx, in)
	if res != nil {
		if saveErr := c.history.Save(res); saveErr != nil {
			c.opts.Logger.Warn("save run history", "run_id", res.RunID, "error", saveErr)
		}
	}
	return res, err
}

// History returns the run store for later inspection of results.
func (c *Council) History() history.Store {
	return c.history
}
