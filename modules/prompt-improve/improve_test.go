package promptimprove

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yumcut-cheap-image-generation/modules/llm"
)

// fakeProvider - 고정 응답을 돌려주는 llm.Provider
type fakeProvider struct {
	text     string
	err      error
	requests []llm.Request
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) GetResponse(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text, Cost: 0.01, ID: "r-1"}, nil
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRunInstruction(t *testing.T) {
	t.Run("요청/응답 로그 기록", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")
		provider := &fakeProvider{text: "  better prompt "}

		res, err := RunInstruction(context.Background(), InstructionOptions{
			Instruction:  "  a cat ",
			SystemPrompt: "sys",
			WorkspaceDir: dir,
			Label:        "test",
			Metadata:     map[string]any{"side": "left"},
			Provider:     provider,
		})
		require.NoError(t, err)
		assert.Equal(t, "better prompt", res.Text)
		assert.Equal(t, "fake-model", res.Model)
		assert.Equal(t, []llm.Request{{Prompt: "a cat", System: "sys"}}, provider.requests)

		assert.True(t, strings.HasPrefix(filepath.Base(res.RequestLogPath), "test-request-"))
		req := readJSON(t, res.RequestLogPath)
		assert.Equal(t, "a cat", req["instruction"])
		assert.Equal(t, "sys", req["systemPrompt"])
		assert.Equal(t, map[string]any{"side": "left"}, req["metadata"])

		resp := readJSON(t, res.ResponseLogPath)
		assert.Equal(t, "better prompt", resp["text"])
		assert.Equal(t, 0.01, resp["cost"])
		assert.Equal(t, req["timestamp"], resp["timestamp"])
		assert.NotNil(t, resp["llmResponse"])
	})

	t.Run("workspace 없으면 로그 없음", func(t *testing.T) {
		res, err := RunInstruction(context.Background(), InstructionOptions{
			Instruction: "x",
			Provider:    &fakeProvider{text: "y"},
		})
		require.NoError(t, err)
		assert.Empty(t, res.RequestLogPath)
		assert.Empty(t, res.ResponseLogPath)
	})

	t.Run("빈 지시는 에러", func(t *testing.T) {
		provider := &fakeProvider{text: "y"}
		_, err := RunInstruction(context.Background(), InstructionOptions{Instruction: "   ", Provider: provider})
		assert.Error(t, err)
		assert.Empty(t, provider.requests)
	})

	t.Run("빈 응답은 에러", func(t *testing.T) {
		_, err := RunInstruction(context.Background(), InstructionOptions{Instruction: "x", Provider: &fakeProvider{text: " "}})
		assert.Error(t, err)
	})

	t.Run("공급자 에러 전파", func(t *testing.T) {
		_, err := RunInstruction(context.Background(), InstructionOptions{Instruction: "x", Provider: &fakeProvider{err: errors.New("boom")}})
		assert.EqualError(t, err, "boom")
	})
}

func TestLogTimestamp(t *testing.T) {
	ts := logTimestamp(time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC))
	assert.Equal(t, "2024-05-06T07-08-09-123Z", ts)
}

func TestRunPromptImprove(t *testing.T) {
	t.Run("파일 프롬프트와 출력 파일", func(t *testing.T) {
		dir := t.TempDir()
		promptFile := filepath.Join(dir, "prompt.txt")
		require.NoError(t, os.WriteFile(promptFile, []byte("  draw a fox \n"), 0o644))
		outPath := filepath.Join(dir, "out", "improved.txt")
		provider := &fakeProvider{text: "A vivid fox"}

		res, err := RunPromptImprove(context.Background(), ImproveOptions{
			PromptFile: promptFile,
			OutputPath: outPath,
			Provider:   provider,
		})
		require.NoError(t, err)
		assert.Equal(t, "A vivid fox", res.Text)
		assert.Equal(t, DefaultRolePrompt, res.SystemPrompt)
		assert.Equal(t, "draw a fox", provider.requests[0].Prompt)

		saved, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, "A vivid fox", string(saved))
	})

	t.Run("역할 프롬프트 파일", func(t *testing.T) {
		dir := t.TempDir()
		role := filepath.Join(dir, "role.txt")
		require.NoError(t, os.WriteFile(role, []byte("be terse"), 0o644))
		provider := &fakeProvider{text: "ok"}

		_, err := RunPromptImprove(context.Background(), ImproveOptions{Prompt: "x", RolePromptPath: role, Provider: provider})
		require.NoError(t, err)
		assert.Equal(t, "be terse", provider.requests[0].System)
	})

	t.Run("빈 역할 프롬프트는 기본값", func(t *testing.T) {
		role := filepath.Join(t.TempDir(), "role.txt")
		require.NoError(t, os.WriteFile(role, []byte("  \n"), 0o644))
		text, err := ResolveRolePrompt(role)
		require.NoError(t, err)
		assert.Equal(t, DefaultRolePrompt, text)
	})

	t.Run("로그 라벨은 prompt-improve", func(t *testing.T) {
		dir := t.TempDir()
		res, err := RunPromptImprove(context.Background(), ImproveOptions{Prompt: "x", WorkspaceDir: dir, Provider: &fakeProvider{text: "y"}})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filepath.Base(res.RequestLogPath), "prompt-improve-request-"))
	})

	t.Run("프롬프트가 없으면 에러", func(t *testing.T) {
		_, err := RunPromptImprove(context.Background(), ImproveOptions{Provider: &fakeProvider{text: "y"}})
		assert.Error(t, err)
	})

	t.Run("빈 프롬프트 파일은 에러", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		_, err := RunPromptImprove(context.Background(), ImproveOptions{PromptFile: file, Provider: &fakeProvider{text: "y"}})
		assert.ErrorContains(t, err, "empty")
	})
}

func TestImprover(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{text: "improved"}
	im := NewImprover(provider, "", "").WithWorkspace(dir)

	text, err := im.Improve(context.Background(), "left")
	require.NoError(t, err)
	assert.Equal(t, "improved", text)
	assert.Equal(t, DefaultRolePrompt, provider.requests[0].System)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
