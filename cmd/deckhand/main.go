// Command deckhand drives the slide-deck completion pipeline from the
// terminal: plain completions, paced streaming, structured deck generation,
// patch merging, and a view of the model catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deckhandhq/deckhand-llm-go"
	"github.com/deckhandhq/deckhand-llm-go/providers/anthropic"
	"github.com/deckhandhq/deckhand-llm-go/providers/lorem"
	"github.com/deckhandhq/deckhand-llm-go/providers/openrouter"
)

var (
	flagProvider string
	flagModel    string
	flagBaseURL  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deckhand",
		Short: "Structured LLM pipeline for slide decks",
		Long: `deckhand sends prompts to a completion provider and handles the answer:
plain text, paced streaming, or a validated slide-deck JSON document.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is a convenience, not a requirement; real env wins.
			_ = godotenv.Load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "lorem", "completion provider (anthropic, openrouter, lorem)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model id (defaults per provider)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override the provider endpoint")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newStreamCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newModelsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveProvider builds the provider selected by the persistent flags and
// returns it with the effective model id.
func resolveProvider() (llmpipeline.Provider, string, error) {
	id, err := llmpipeline.ParseProviderID(flagProvider)
	if err != nil {
		return nil, "", err
	}

	model := flagModel
	switch id {
	case llmpipeline.ProviderAnthropic:
		var opts []anthropic.Option
		if flagBaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(flagBaseURL))
		}
		p, err := anthropic.NewProvider(os.Getenv("ANTHROPIC_API_KEY"), opts...)
		if err != nil {
			return nil, "", fmt.Errorf("anthropic: %w (set ANTHROPIC_API_KEY)", err)
		}
		if model == "" {
			model = "claude-sonnet-4-5"
		}
		return p, model, nil

	case llmpipeline.ProviderOpenRouter:
		var opts []openrouter.Option
		if flagBaseURL != "" {
			opts = append(opts, openrouter.WithBaseURL(flagBaseURL))
		}
		p, err := openrouter.NewProvider(os.Getenv("OPENROUTER_API_KEY"), opts...)
		if err != nil {
			return nil, "", fmt.Errorf("openrouter: %w (set OPENROUTER_API_KEY)", err)
		}
		if model == "" {
			model = "anthropic/claude-sonnet-4-5"
		}
		return p, model, nil

	default:
		if model == "" {
			model = "lorem-fast"
		}
		return lorem.NewProvider(), model, nil
	}
}

// interruptibleContext returns a context cancelled by Ctrl-C, so streams
// stop cleanly mid-flight.
func interruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func promptFromArgs(args []string) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}
	return prompt, nil
}

func newAskCmd() *cobra.Command {
	var system string
	var maxTokens int

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a prompt and print the full reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := promptFromArgs(args)
			if err != nil {
				return err
			}

			provider, model, err := resolveProvider()
			if err != nil {
				return err
			}

			orch, err := newOrchestrator(provider, model, system, maxTokens)
			if err != nil {
				return err
			}

			ctx, stop := interruptibleContext()
			defer stop()

			text, err := orch.Ask(ctx, prompt)
			if err != nil {
				return err
			}

			fmt.Println(text)
			return nil
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "system prompt")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "output token budget (0 uses the default)")
	return cmd
}

func newStreamCmd() *cobra.Command {
	var system string
	var maxTokens int
	var chunkSize int
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "stream [prompt...]",
		Short: "Send a prompt and print the reply as paced chunks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := promptFromArgs(args)
			if err != nil {
				return err
			}

			provider, model, err := resolveProvider()
			if err != nil {
				return err
			}

			orch, err := newOrchestrator(provider, model, system, maxTokens,
				llmpipeline.WithPacerConfig(llmpipeline.PacerConfig{
					ChunkSize:   chunkSize,
					MinInterval: interval,
				}))
			if err != nil {
				return err
			}

			ctx, stop := interruptibleContext()
			defer stop()

			_, err = orch.Stream(ctx, prompt, func(chunk string) {
				fmt.Print(chunk)
			})
			if err != nil {
				if llmpipeline.IsCancellation(err) {
					fmt.Fprintln(os.Stderr, "\ninterrupted")
					return nil
				}
				return err
			}

			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "system prompt")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "output token budget (0 uses the default)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", llmpipeline.DefaultChunkSize, "chunk size in runes")
	cmd.Flags().DurationVar(&interval, "interval", llmpipeline.DefaultMinInterval, "minimum spacing between chunks")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var system string
	var maxTokens int
	var schemaName string
	var contextFile string

	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate a slide-deck JSON document from a prompt",
		Long: `generate asks the model for a single JSON document matching the chosen
schema, extracts it from the reply, and prints it to stdout. Validation
warnings and the patch flag go to stderr, so stdout stays pipeable.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := promptFromArgs(args)
			if err != nil {
				return err
			}

			provider, model, err := resolveProvider()
			if err != nil {
				return err
			}

			orch, err := newOrchestrator(provider, model, system, maxTokens)
			if err != nil {
				return err
			}

			var contextObj any
			if contextFile != "" {
				data, err := os.ReadFile(contextFile)
				if err != nil {
					return fmt.Errorf("read context file: %w", err)
				}
				contextObj = string(data)
			}

			ctx, stop := interruptibleContext()
			defer stop()

			result, err := orch.GenerateStructured(ctx, prompt, contextObj, schemaName)
			if err != nil {
				return err
			}

			fmt.Println(result.RawJSON)

			if result.IsPatch {
				fmt.Fprintln(os.Stderr, "note: model replied with a patch document")
			}
			for _, w := range result.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Code, w.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "extra system prompt, appended to the built-in preamble")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "output token budget (0 uses the default)")
	cmd.Flags().StringVar(&schemaName, "schema", llmpipeline.SchemaDeck, "registered schema to request")
	cmd.Flags().StringVar(&contextFile, "context", "", "JSON file sent as request context (e.g. the current deck)")
	return cmd
}

func newMergeCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "merge BASE PATCH",
		Short: "Apply a patch document to a base deck and print the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read base: %w", err)
			}
			patch, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read patch: %w", err)
			}

			if !llmpipeline.IsPatchDocument(string(patch)) {
				fmt.Fprintln(os.Stderr, "note: patch file has no patch flag; applying anyway")
			}

			merged, err := llmpipeline.ApplyPatch(string(base), string(patch))
			if err != nil {
				return err
			}

			fmt.Println(merged)

			if check {
				for _, w := range llmpipeline.ValidateDeck(merged) {
					fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Code, w.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", true, "validate the merged document and print warnings")
	return cmd
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known models and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := llmpipeline.GetCapabilityRegistry()

			// Without an explicit --provider, show every catalog we have.
			providers := []string{
				llmpipeline.ProviderAnthropic.String(),
				llmpipeline.ProviderOpenRouter.String(),
				llmpipeline.ProviderLorem.String(),
			}
			if cmd.Flags().Changed("provider") {
				providers = []string{flagProvider}
			}

			printed := 0
			for _, provider := range providers {
				models := registry.ListModels(provider)
				if len(models) == 0 {
					continue
				}
				if printed > 0 {
					fmt.Println()
				}
				fmt.Printf("%s:\n", provider)
				for _, model := range models {
					capability, err := registry.GetModelCapability(provider, model)
					if err != nil {
						continue
					}
					fmt.Printf("  %-34s ctx %-7d out %-6d stream %-3s structured %-3s $%.2f/$%.2f per 1M\n",
						model,
						capability.ContextWindow,
						capability.MaxOutputTokens,
						yesNo(capability.Features.Streaming),
						yesNo(capability.Features.StructuredOutput),
						capability.Pricing.InputPer1M,
						capability.Pricing.OutputPer1M,
					)
				}
				printed++
			}
			if printed == 0 {
				return fmt.Errorf("no capability data for provider %q", flagProvider)
			}
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// newOrchestrator applies the optional CLI knobs on top of any extra
// options a command needs.
func newOrchestrator(provider llmpipeline.Provider, model, system string, maxTokens int, extra ...llmpipeline.OrchestratorOption) (*llmpipeline.Orchestrator, error) {
	opts := extra
	if system != "" {
		opts = append(opts, llmpipeline.WithSystemPrompt(system))
	}
	if maxTokens > 0 {
		opts = append(opts, llmpipeline.WithMaxTokens(maxTokens))
	}
	return llmpipeline.NewOrchestrator(provider, model, opts...)
}
