package promptimprove

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yumcut-cheap-image-generation/modules/llm"
)

const defaultInstructionLabel = "instruction"

// InstructionOptions - 단일 LLM 지시 실행 옵션
type InstructionOptions struct {
	Instruction  string
	SystemPrompt string
	WorkspaceDir string // 비어 있으면 로그 파일을 쓰지 않음
	Label        string
	Metadata     map[string]any

	// Provider가 nil이면 아래 값으로 생성
	Provider        llm.Provider
	ProviderName    string
	Model           string
	APIKey          string
	ReasoningEffort string
}

// InstructionResult - 실행 결과
type InstructionResult struct {
	Text            string
	LLMResponse     *llm.Response
	RequestLogPath  string
	ResponseLogPath string
	Model           string
	WorkspaceDir    string
}

type requestRecord struct {
	Timestamp    string         `json:"timestamp"`
	Model        string         `json:"model"`
	Instruction  string         `json:"instruction"`
	SystemPrompt string         `json:"systemPrompt,omitempty"`
	Metadata     map[string]any `json:"metadata"`
}

type responseRecord struct {
	Timestamp    string         `json:"timestamp"`
	Model        string         `json:"model"`
	Metadata     map[string]any `json:"metadata"`
	Instruction  string         `json:"instruction"`
	SystemPrompt string         `json:"systemPrompt,omitempty"`
	Text         string         `json:"text"`
	Cost         any            `json:"cost,omitempty"`
	Usage        any            `json:"usage,omitempty"`
	LLMResponse  *llm.Response  `json:"llmResponse"`
}

// RunInstruction - 지시를 LLM에 보내고 요청/응답을 JSON으로 기록
func RunInstruction(ctx context.Context, opts InstructionOptions) (*InstructionResult, error) {
	instruction := strings.TrimSpace(opts.Instruction)
	if instruction == "" {
		return nil, fmt.Errorf("instruction text cannot be empty")
	}

	workspaceDir := ""
	if opts.WorkspaceDir != "" {
		abs, err := filepath.Abs(opts.WorkspaceDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace %s: %w", opts.WorkspaceDir, err)
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create workspace %s: %w", abs, err)
		}
		workspaceDir = abs
	}

	provider := opts.Provider
	if provider == nil {
		p, err := llm.NewProvider(ctx, llm.Options{
			Provider:        opts.ProviderName,
			Model:           opts.Model,
			APIKey:          opts.APIKey,
			ReasoningEffort: opts.ReasoningEffort,
		})
		if err != nil {
			return nil, err
		}
		provider = p
	}

	label := opts.Label
	if label == "" {
		label = defaultInstructionLabel
	}
	metadata := opts.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	timestamp := logTimestamp(time.Now())
	model := provider.Model()

	result := &InstructionResult{Model: model, WorkspaceDir: workspaceDir}
	if workspaceDir != "" {
		result.RequestLogPath = filepath.Join(workspaceDir, fmt.Sprintf("%s-request-%s.json", label, timestamp))
		result.ResponseLogPath = filepath.Join(workspaceDir, fmt.Sprintf("%s-response-%s.json", label, timestamp))

		if err := writeJSON(result.RequestLogPath, requestRecord{
			Timestamp:    timestamp,
			Model:        model,
			Instruction:  instruction,
			SystemPrompt: opts.SystemPrompt,
			Metadata:     metadata,
		}); err != nil {
			return nil, err
		}
	}

	reasoning := ""
	if opts.ReasoningEffort != "" {
		reasoning = fmt.Sprintf(" (reasoning: %s)", opts.ReasoningEffort)
	}
	log.Printf("🪄 [PromptImprove] Calling %s:%s%s...", provider.Name(), model, reasoning)

	resp, err := provider.GetResponse(ctx, llm.Request{Prompt: instruction, System: opts.SystemPrompt})
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, fmt.Errorf("LLM returned an empty response")
	}
	result.Text = text
	result.LLMResponse = resp

	if result.ResponseLogPath != "" {
		if err := writeJSON(result.ResponseLogPath, responseRecord{
			Timestamp:    timestamp,
			Model:        model,
			Metadata:     metadata,
			Instruction:  instruction,
			SystemPrompt: opts.SystemPrompt,
			Text:         text,
			Cost:         resp.Cost,
			Usage:        resp.Usage,
			LLMResponse:  resp,
		}); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// logTimestamp - 파일명에 쓸 수 있는 ISO 타임스탬프 (':' '.' → '-')
func logTimestamp(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(iso)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
