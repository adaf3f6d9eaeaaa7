package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/common/config"
	"yumcut-cheap-image-generation/modules/common/storage"
	"yumcut-cheap-image-generation/modules/common/utils"
	"yumcut-cheap-image-generation/modules/common/validator"
	"yumcut-cheap-image-generation/modules/dual"
	"yumcut-cheap-image-generation/modules/llm"
	promptimprove "yumcut-cheap-image-generation/modules/prompt-improve"
	"yumcut-cheap-image-generation/modules/runware"
)

type dualFlags struct {
	left, leftFile       string
	right, rightFile     string
	context, contextFile string

	stylePrompt        string
	systemPrompt       string
	negativePromptFile string
	templateImage      string

	outDir string
	size   string
	width  string
	height string

	model     string
	steps     int
	cfg       float64
	scheduler string

	improve           bool
	improveModel      string
	improveRolePrompt string
	upload            bool
}

var dualOpts dualFlags

var dualCmd = &cobra.Command{
	Use:   "dual",
	Short: "Generate one composite image for two prompts and split it into left/right halves",
	RunE:  runDual,
}

func init() {
	f := dualCmd.Flags()
	f.StringVar(&dualOpts.left, "left", "", "Left prompt text")
	f.StringVar(&dualOpts.leftFile, "left-file", "", "Read left prompt from a file")
	f.StringVar(&dualOpts.right, "right", "", "Right prompt text")
	f.StringVar(&dualOpts.rightFile, "right-file", "", "Read right prompt from a file")
	f.StringVar(&dualOpts.context, "context", "", "Shared context (not depicted)")
	f.StringVar(&dualOpts.contextFile, "context-file", "", "Read context from a file")

	f.StringVar(&dualOpts.stylePrompt, "style-prompt", "", "Style prompt file prepended to the composed prompt")
	f.StringVar(&dualOpts.systemPrompt, "system-prompt", "", "System template file ({{SENTENCE1}}, {{SENTENCE2}}, {{CONTEXT}})")
	f.StringVar(&dualOpts.negativePromptFile, "negative-prompt-file", "", "Negative prompt override file")
	f.StringVar(&dualOpts.templateImage, "template-image", "", "Template image used as the reference (required)")

	addOutputFlags(f, &dualOpts.outDir, &dualOpts.size, &dualOpts.width, &dualOpts.height)
	addSamplerFlags(f, &dualOpts.model, &dualOpts.steps, &dualOpts.cfg, &dualOpts.scheduler, "Runware model id (default: "+dual.DefaultModel+")")

	f.BoolVar(&dualOpts.improve, "improve", false, "Improve left/right prompts before generating")
	f.StringVar(&dualOpts.improveModel, "improve-model", "", "LLM model id for improvement")
	f.StringVar(&dualOpts.improveRolePrompt, "improve-role-prompt", "", "System prompt file for improvement")
	f.BoolVar(&dualOpts.upload, "upload", false, "Upload results to Supabase Storage")
}

func runDual(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GetConfig()
	o := dualOpts

	apiKey, err := cfg.ResolveRunwareKey(runwareAPIKey)
	if err != nil {
		return err
	}

	// 1. 프롬프트 / 템플릿 읽기
	left, err := validator.ResolvePromptText(o.left, o.leftFile, "left")
	if err != nil {
		return err
	}
	right, err := validator.ResolvePromptText(o.right, o.rightFile, "right")
	if err != nil {
		return err
	}
	contextText := o.context
	if contextText == "" {
		if contextText, err = validator.ReadTextFile(o.contextFile); err != nil {
			return err
		}
	}
	style, err := validator.ReadTextFile(o.stylePrompt)
	if err != nil {
		return err
	}
	system, err := validator.ReadTextFile(o.systemPrompt)
	if err != nil {
		return err
	}
	negative, err := validator.ReadTextFile(o.negativePromptFile)
	if err != nil {
		return err
	}

	// 2. 길이 검증
	if err := validator.ValidatePromptLength(left, "left"); err != nil {
		return err
	}
	if err := validator.ValidatePromptLength(right, "right"); err != nil {
		return err
	}

	// 3. 템플릿 이미지
	template, mime, err := readImageFile(o.templateImage, "template-image")
	if err != nil {
		return err
	}
	if template == nil {
		return apperror.NewValidation("template-image", "Missing --template-image=PATH.")
	}

	// 4. 사이즈
	width, height, err := validator.ParseSize(o.size, o.width, o.height)
	if err != nil {
		return err
	}

	outDir, err := resolveOutDir(o.outDir, cfg.OutputDir, "runware-dual")
	if err != nil {
		return err
	}

	var improver dual.Improver
	if o.improve {
		im, err := newImprover(ctx, o.improveModel, o.improveRolePrompt, filepath.Join(outDir, "prompt-improve-logs"))
		if err != nil {
			return err
		}
		improver = im
	}

	var uploader dual.Uploader
	if o.upload {
		if !cfg.HasSupabase() {
			return fmt.Errorf("--upload requires SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
		uploader = storage.NewClient(cfg, utils.ConvertToWebP)
	}

	steps, cfgScale := samplerValues(cmd.Flags(), o.steps, o.cfg)

	images := runware.NewClient(apiKey, runware.WithEndpoint(cfg.RunwareAPIURL))
	runner := dual.NewRunner(dual.NewService(images), improver, uploader)

	out, err := runner.Run(ctx, dual.Job{
		ID: uuid.New().String(),
		Options: dual.Options{
			PromptComposition: dual.PromptComposition{
				Left:         left,
				Right:        right,
				Context:      contextText,
				StylePrompt:  style,
				SystemPrompt: system,
			},
			Width:             width,
			Height:            height,
			Model:             o.model,
			Steps:             steps,
			CFGScale:          cfgScale,
			Scheduler:         o.scheduler,
			NegativePrompt:    negative,
			TemplateImage:     template,
			TemplateImageMime: mime,
			OnStage: func(stage dual.Stage, detail string) {
				log.Printf("🔄 [Dual] %s %s", stage, detail)
			},
		},
		Improve: o.improve,
		Upload:  o.upload,
		OutDir:  outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Saved outputs to %s\n", out.OutDir)
	for _, f := range out.Files {
		fmt.Printf("- %s\n", f)
	}
	for _, p := range out.StoredPaths {
		fmt.Printf("- storage: %s\n", p)
	}
	return nil
}

// newImprover - 설정된 LLM 공급자로 Improver 생성
func newImprover(ctx context.Context, model, rolePromptPath, logsDir string) (*promptimprove.Improver, error) {
	provider, err := llm.NewProvider(ctx, llm.Options{
		Model:           model,
		ReasoningEffort: promptimprove.DefaultReasoning,
	})
	if err != nil {
		return nil, err
	}
	role, err := promptimprove.ResolveRolePrompt(rolePromptPath)
	if err != nil {
		return nil, err
	}
	return promptimprove.NewImprover(provider, role, logsDir), nil
}

// readImageFile - 이미지 파일 읽기 (경로가 없으면 nil)
func readImageFile(path, field string) ([]byte, string, error) {
	if path == "" {
		return nil, "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", abs, err)
	}
	if len(data) == 0 {
		return nil, "", apperror.NewValidation(field, "image file is empty: %s", abs)
	}
	return data, utils.GuessMimeByPath(abs), nil
}

// resolveOutDir - 지정이 없으면 <root>/<prefix>-<unixms>
func resolveOutDir(outDir, root, prefix string) (string, error) {
	if outDir == "" {
		outDir = filepath.Join(root, fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli()))
	}
	return filepath.Abs(outDir)
}
