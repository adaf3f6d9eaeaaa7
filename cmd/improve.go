package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	promptimprove "yumcut-cheap-image-generation/modules/prompt-improve"
)

type improveFlags struct {
	prompt     string
	promptFile string
	output     string
	workspace  string
	rolePrompt string
	model      string
	reasoning  string
	provider   string
	apiKey     string
}

var improveOpts improveFlags

var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Improve a prompt with an LLM",
	RunE:  runImprove,
}

func init() {
	f := improveCmd.Flags()
	f.StringVar(&improveOpts.prompt, "prompt", "", "Prompt text")
	f.StringVar(&improveOpts.promptFile, "prompt-file", "", "Read prompt text from a file")
	f.StringVar(&improveOpts.output, "output", "", "Write the improved prompt to this file")
	f.StringVar(&improveOpts.workspace, "workspace", "", "Directory for request/response logs")
	f.StringVar(&improveOpts.rolePrompt, "role-prompt", "", "System prompt file")
	f.StringVar(&improveOpts.model, "model", "", "LLM model id (default: OPENROUTER_MODEL or openai/gpt-oss-120b)")
	f.StringVar(&improveOpts.reasoning, "reasoning", promptimprove.DefaultReasoning, "Reasoning effort: low|medium|high")
	f.StringVar(&improveOpts.provider, "provider", "", "LLM provider: openrouter|gemini (default: LLM_PROVIDER)")
	f.StringVar(&improveOpts.apiKey, "api-key", "", "Override the provider API key")
}

func runImprove(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	o := improveOpts

	switch o.reasoning {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("invalid --reasoning %q (use low, medium or high)", o.reasoning)
	}

	result, err := promptimprove.RunPromptImprove(ctx, promptimprove.ImproveOptions{
		Prompt:          o.prompt,
		PromptFile:      o.promptFile,
		RolePromptPath:  o.rolePrompt,
		OutputPath:      o.output,
		WorkspaceDir:    o.workspace,
		ProviderName:    o.provider,
		Model:           o.model,
		APIKey:          o.apiKey,
		ReasoningEffort: o.reasoning,
	})
	if err != nil {
		return err
	}

	if result.OutputPath != "" {
		fmt.Printf("Saved improved prompt to %s\n", result.OutputPath)
		return nil
	}
	fmt.Println(result.Text)
	return nil
}
