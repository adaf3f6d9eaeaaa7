package promptimprove

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yumcut-cheap-image-generation/modules/common/config"
	"yumcut-cheap-image-generation/modules/llm"
)

const (
	DefaultReasoning = "low"
	DefaultLabel     = "prompt-improve"

	DefaultRolePrompt = "You are an elite prompt engineer. Improve user prompts to be vivid, specific, and ready for creative generation. Return only the improved prompt."
)

// ImproveOptions - 프롬프트 개선 옵션
type ImproveOptions struct {
	Prompt         string
	PromptFile     string
	RolePromptPath string
	OutputPath     string
	WorkspaceDir   string
	Label          string
	Metadata       map[string]any

	Provider        llm.Provider
	ProviderName    string
	Model           string
	APIKey          string
	ReasoningEffort string
}

// ImproveResult - 개선 결과
type ImproveResult struct {
	Text            string
	LLMResponse     *llm.Response
	OutputPath      string
	RequestLogPath  string
	ResponseLogPath string
	Model           string
	WorkspaceDir    string
	SystemPrompt    string
}

// RunPromptImprove - 프롬프트를 읽어 개선하고 필요하면 파일로 저장
func RunPromptImprove(ctx context.Context, opts ImproveOptions) (*ImproveResult, error) {
	prompt, err := resolvePrompt(opts.Prompt, opts.PromptFile)
	if err != nil {
		return nil, err
	}
	systemPrompt, err := ResolveRolePrompt(opts.RolePromptPath)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" && opts.Provider == nil && !strings.EqualFold(opts.ProviderName, llm.ProviderGemini) {
		model = strings.TrimSpace(config.GetConfig().OpenRouterModel)
		if model == "" {
			model = config.DefaultOpenRouterModel
		}
	}
	reasoning := opts.ReasoningEffort
	if reasoning == "" {
		reasoning = DefaultReasoning
	}
	label := opts.Label
	if label == "" {
		label = DefaultLabel
	}

	run, err := RunInstruction(ctx, InstructionOptions{
		Instruction:     prompt,
		SystemPrompt:    systemPrompt,
		WorkspaceDir:    opts.WorkspaceDir,
		Label:           label,
		Metadata:        opts.Metadata,
		Provider:        opts.Provider,
		ProviderName:    opts.ProviderName,
		Model:           model,
		APIKey:          opts.APIKey,
		ReasoningEffort: reasoning,
	})
	if err != nil {
		return nil, err
	}

	result := &ImproveResult{
		Text:            run.Text,
		LLMResponse:     run.LLMResponse,
		RequestLogPath:  run.RequestLogPath,
		ResponseLogPath: run.ResponseLogPath,
		Model:           run.Model,
		WorkspaceDir:    run.WorkspaceDir,
		SystemPrompt:    systemPrompt,
	}

	if opts.OutputPath != "" {
		out, err := filepath.Abs(opts.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output path %s: %w", opts.OutputPath, err)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := os.WriteFile(out, []byte(run.Text), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", out, err)
		}
		result.OutputPath = out
	}

	return result, nil
}

// ResolveRolePrompt - 역할 프롬프트 파일 읽기 (경로가 없거나 비어 있으면 기본값)
func ResolveRolePrompt(path string) (string, error) {
	if path == "" {
		return DefaultRolePrompt, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read role prompt %s: %w", abs, err)
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text, nil
	}
	return DefaultRolePrompt, nil
}

func resolvePrompt(inline, file string) (string, error) {
	if text := strings.TrimSpace(inline); text != "" {
		return text, nil
	}
	if file == "" {
		return "", fmt.Errorf("prompt improve requires prompt text or a prompt file path")
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", abs, err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("prompt file is empty: %s", abs)
	}
	return text, nil
}

// Improver - dual.Improver 구현 (같은 공급자/역할 프롬프트로 반복 개선)
type Improver struct {
	provider     llm.Provider
	systemPrompt string
	workspaceDir string
	reasoning    string
}

// NewImprover - workspaceDir가 있으면 요청/응답 로그를 기록
func NewImprover(provider llm.Provider, systemPrompt, workspaceDir string) *Improver {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultRolePrompt
	}
	return &Improver{
		provider:     provider,
		systemPrompt: systemPrompt,
		workspaceDir: workspaceDir,
		reasoning:    DefaultReasoning,
	}
}

// WithWorkspace - 로그 디렉토리를 바꾼 복사본
func (im *Improver) WithWorkspace(dir string) *Improver {
	cp := *im
	cp.workspaceDir = dir
	return &cp
}

// Improve - 프롬프트 하나 개선
func (im *Improver) Improve(ctx context.Context, prompt string) (string, error) {
	run, err := RunInstruction(ctx, InstructionOptions{
		Instruction:     prompt,
		SystemPrompt:    im.systemPrompt,
		WorkspaceDir:    im.workspaceDir,
		Label:           DefaultLabel,
		Provider:        im.provider,
		ReasoningEffort: im.reasoning,
	})
	if err != nil {
		return "", err
	}
	return run.Text, nil
}
