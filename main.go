package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gamenerd/server/internal/agent"
	"github.com/gamenerd/server/internal/agent/model"
	"github.com/gamenerd/server/internal/agent/repo"
	"github.com/gamenerd/server/internal/agent/search"
	"github.com/gamenerd/server/internal/core"
	logx "github.com/gamenerd/server/pkg/logger"
	pkgredis "github.com/gamenerd/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent example,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Environment string `envconfig:"APP_ENV" default:"development"`
	Redis       pkgredis.Config

	// LLM provider
	Provider string `envconfig:"LLM_PROVIDER" default:"gemini"`
	APIKey   string `envconfig:"LLM_API_KEY" required:"true"`
	BaseURL  string `envconfig:"LLM_BASE_URL"`

	// Agent configs
	Classifier   model.ClassifierModelConfig
	Evidence     model.EvidenceModelConfig
	Responder    model.ResponderModelConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig
	Search       search.Config
}

func main() {
	fmt.Println("Testing sports assistant pipeline...")
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}

	// Redis when configured, in-memory otherwise
	var conversationRepo model.ConversationRepository
	if envCfg.Redis.URL != "" {
		rdb, err := envCfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		fmt.Println("Connected to Redis successfully")
		conversationRepo = repo.NewRedisConversationRepository(rdb, ttl)
	} else {
		fmt.Println("REDIS_URL not set, using in-memory conversation store")
		conversationRepo = repo.NewMemoryConversationRepository(envCfg.Conversation.MaxSessions)
	}

	orchestrator, err := agent.New(ctx, agent.Config{
		Provider:         envCfg.Provider,
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		Classifier:       envCfg.Classifier,
		Evidence:         envCfg.Evidence,
		Responder:        envCfg.Responder,
		Prompt:           envCfg.Prompt,
		Conversation:     envCfg.Conversation,
		ConversationRepo: conversationRepo,
		Search:           envCfg.Search,
	})
	if err != nil {
		log.Fatalf("Failed to build orchestrator: %v", err)
	}

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "Simple greeting",
			query:       "hi",
		},
		{
			description: "Schedule request",
			query:       "When do the Lakers play next?",
		},
		{
			description: "Follow-up standings request",
			query:       "and how are they doing in the standings?",
		},
		{
			description: "Out of scope request",
			query:       "What is the capital of France?",
		},
		{
			description: "Acknowledgment",
			query:       "thanks!",
		},
	}

	userID := "demo-user-1"

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)
		fmt.Println("Processing...")

		result, err := orchestrator.HandleTurn(ctx, userID, test.query)
		if err != nil {
			log.Fatalf("Failed to handle turn for test %d: %v", i+1, err)
		}

		fmt.Printf("Reply %d: %s\n", i+1, result.Reply)
		if b, err := json.MarshalIndent(result.UI, "", "  "); err == nil {
			fmt.Printf("UI: %s\n", string(b))
		}
		fmt.Println("------------------------------------------------")

		// slight delay between tests for readability
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("All pipeline tests completed.")
}
