package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	agentsx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/agents"
	orchestratorx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/agents/orchestrator"
	llmx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/llm"
	promptx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/prompt"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
	apix "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/api"
	configx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/pkg/config"
	_ "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/pkg/logger/autoload"
	openaix "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/pkg/openai"
)

type AppConfig struct {
	Port           string   `default:"8080"`
	AllowedOrigins []string `split_words:"true" default:"*"`
	SeedSampleData bool     `split_words:"true" default:"false"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")

	openaiCfg := configx.MustNew[openaix.Config]("OPENAI")
	openaiClient := openaix.NewClient(*openaiCfg)
	if openaiClient == nil {
		log.Fatal().Msg("failed to initialize openai client")
	}

	completer, err := llmx.New(openaiClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize completion service")
	}

	storeCfg := configx.MustNew[storex.Config]("STORE")
	recordStore := storex.New(ctx, *storeCfg)

	if appCfg.SeedSampleData {
		if err := storex.Seed(ctx, recordStore); err != nil {
			log.Warn().Err(err).Msg("sample data seeding failed")
		}
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	prompts := promptx.LoadPromptSet()

	registry, err := agentsx.NewRegistry(completer, recordStore, *llmCfg, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build agent registry")
	}

	orch, err := orchestratorx.New(recordStore, registry, completer, *llmCfg, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	handler, err := apix.NewHandler(orch, registry, recordStore)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build http handler")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	handler.RegisterRoutes(r)

	addr := ":" + appCfg.Port
	log.Info().Str("addr", addr).Str("backend", recordStore.Backend()).Msg("starting server")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
