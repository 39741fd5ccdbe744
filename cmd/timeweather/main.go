// Package main runs the Time & Weather assistant: an interactive chat (or a
// scripted demo with -demo) backed by a completion model, two MCP capability
// providers and two local clock tools.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/RicardoNiepel/frontier-agents-workshop/agent"
	"github.com/RicardoNiepel/frontier-agents-workshop/internal/config"
	"github.com/RicardoNiepel/frontier-agents-workshop/log"
	"github.com/RicardoNiepel/frontier-agents-workshop/model"
	"github.com/RicardoNiepel/frontier-agents-workshop/model/openai"
	"github.com/RicardoNiepel/frontier-agents-workshop/timeweather"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
	mcptool "github.com/RicardoNiepel/frontier-agents-workshop/tool/mcp"
)

var (
	demo           = flag.Bool("demo", false, "Run the scripted demo conversation instead of the interactive prompt")
	enableParallel = flag.Bool("enable-parallel", false, "Enable parallel tool execution (default: false, serial execution)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	log.SetLevel(cfg.LogLevel)

	// An interrupt cancels the in-flight turn; the thread stays consistent
	// because a cancelled turn is rolled back.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &chatApp{cfg: cfg, parallel: *enableParallel}
	if err := app.run(ctx, *demo); err != nil {
		log.Fatalf("chat failed: %v", err)
	}
}

// chatApp wires the model, the MCP tool sets and the agent together and
// drives the conversation loop.
type chatApp struct {
	cfg      *config.Config
	parallel bool

	agent     *agent.Agent
	toolSets  []tool.ToolSet
	sessionID string
}

func (c *chatApp) run(ctx context.Context, demoMode bool) error {
	if err := c.setup(ctx); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	defer c.close()

	if demoMode {
		return c.runDemo(ctx)
	}
	return c.runInteractive(ctx)
}

func (c *chatApp) setup(ctx context.Context) error {
	apiKey, baseURL := c.cfg.Credentials()
	if baseURL == config.GitHubModelsBaseURL {
		fmt.Println("Using GitHub token for authentication")
	} else {
		fmt.Println("Using Azure OpenAI key for authentication")
	}

	modelInstance := openai.New(c.cfg.MediumModel,
		openai.WithAPIKey(apiKey),
		openai.WithBaseURL(baseURL),
	)

	// UserService provides get_current_user, get_current_location,
	// get_current_time and move; WeatherService provides the weather tools.
	// The order is fixed: tool declarations keep it, and some backends use
	// declaration order as a tie-break.
	providers := []struct {
		name string
		url  string
	}{
		{"UserService", c.cfg.UserMCPURL},
		{"WeatherService", c.cfg.WeatherMCPURL},
	}
	for _, provider := range providers {
		ts := mcptool.NewToolSet(mcptool.ConnectionConfig{
			Name:      provider.name,
			Transport: mcptool.TransportStreamable,
			ServerURL: provider.url,
		})
		if err := ts.Connect(ctx); err != nil {
			c.close()
			return fmt.Errorf("cannot reach %s at %s: %w", provider.name, provider.url, err)
		}
		c.toolSets = append(c.toolSets, ts)
	}

	genConfig := model.GenerationConfig{
		MaxTokens:   intPtr(2000),
		Temperature: floatPtr(0.7),
	}

	a, err := agent.New("TimeWeatherAgent",
		agent.WithModel(modelInstance),
		agent.WithInstruction(timeweather.Instructions),
		agent.WithTools(timeweather.LocalTools()...),
		agent.WithToolSets(c.toolSets...),
		agent.WithGenerationConfig(genConfig),
		agent.WithParallelTools(c.parallel),
	)
	if err != nil {
		c.close()
		return err
	}
	c.agent = a
	c.sessionID = fmt.Sprintf("session-%s", uuid.New().String())

	fmt.Printf("Chat ready! Session: %s, model: %s\n", c.sessionID, c.cfg.MediumModel)
	return nil
}

func (c *chatApp) runInteractive(ctx context.Context) error {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Time & Weather Agent")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
	fmt.Println("This agent remembers your location and can tell you the time")
	fmt.Println("and weather. Try these example queries:")
	for _, query := range timeweather.DemoQueries {
		fmt.Printf("  - %q\n", query)
	}
	fmt.Println()
	fmt.Println("Type 'quit' or 'exit' to end the conversation.")
	fmt.Println(strings.Repeat("=", 60))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Println("\nGoodbye! Have a great day!")
			return nil
		}

		if err := c.processTurn(ctx, input); err != nil {
			if ctx.Err() != nil {
				fmt.Println("\nConversation interrupted. Goodbye!")
				return nil
			}
			fmt.Printf("\nError: %v\n", err)
			fmt.Println("Please try again or type 'quit' to exit.")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input scanner error: %w", err)
	}
	return nil
}

func (c *chatApp) runDemo(ctx context.Context) error {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Time & Weather Agent - Demo Mode")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Running through the example queries...")

	for _, query := range timeweather.DemoQueries {
		fmt.Printf("\n%s\n", strings.Repeat("-", 50))
		fmt.Printf("You: %s\n", query)
		if err := c.processTurn(ctx, query); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Printf("\nError: %v\n", err)
		}
		// Small delay for readability.
		time.Sleep(time.Second)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 60))
	fmt.Println("Demo complete!")
	return nil
}

func (c *chatApp) processTurn(ctx context.Context, input string) error {
	reply, err := c.agent.Run(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("\nAgent: %s\n", reply)
	return nil
}

func (c *chatApp) close() {
	for _, ts := range c.toolSets {
		if err := ts.Close(); err != nil {
			log.Warnf("failed to close tool set %s: %v", ts.Name(), err)
		}
	}
}

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
