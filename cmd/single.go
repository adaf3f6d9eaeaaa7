package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"yumcut-cheap-image-generation/modules/common/config"
	"yumcut-cheap-image-generation/modules/common/validator"
	"yumcut-cheap-image-generation/modules/runware"
	"yumcut-cheap-image-generation/modules/single"
)

type singleFlags struct {
	prompt, promptFile string

	outDir string
	size   string
	width  string
	height string

	model     string
	steps     int
	cfg       float64
	scheduler string

	negativePromptFile string
	referenceImage     string

	improve           bool
	noImprove         bool
	improveModel      string
	improveRolePrompt string
}

var singleOpts singleFlags

var singleCmd = &cobra.Command{
	Use:   "single",
	Short: "Generate a single image from one prompt",
	RunE:  runSingle,
}

func init() {
	f := singleCmd.Flags()
	f.StringVar(&singleOpts.prompt, "prompt", "", "Prompt text")
	f.StringVar(&singleOpts.promptFile, "prompt-file", "", "Read prompt text from a file")

	addOutputFlags(f, &singleOpts.outDir, &singleOpts.size, &singleOpts.width, &singleOpts.height)
	addSamplerFlags(f, &singleOpts.model, &singleOpts.steps, &singleOpts.cfg, &singleOpts.scheduler,
		"Runware model id (default: "+single.DefaultModel+", or "+single.DefaultReferenceModel+" with --reference-image)")

	f.StringVar(&singleOpts.negativePromptFile, "negative-prompt-file", "", "Negative prompt override file")
	f.StringVar(&singleOpts.referenceImage, "reference-image", "", "Optional reference image")

	f.BoolVar(&singleOpts.improve, "improve", true, "Improve prompt before generating")
	f.BoolVar(&singleOpts.noImprove, "no-improve", false, "Skip prompt improvement")
	f.StringVar(&singleOpts.improveModel, "improve-model", "", "LLM model id for improvement")
	f.StringVar(&singleOpts.improveRolePrompt, "improve-role-prompt", "", "System prompt file for improvement")
}

func runSingle(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GetConfig()
	o := singleOpts

	apiKey, err := cfg.ResolveRunwareKey(runwareAPIKey)
	if err != nil {
		return err
	}

	prompt, err := validator.ResolvePromptText(o.prompt, o.promptFile, "prompt")
	if err != nil {
		return err
	}
	if err := validator.ValidatePromptLength(prompt, "prompt"); err != nil {
		return err
	}

	negative, err := validator.ReadTextFile(o.negativePromptFile)
	if err != nil {
		return err
	}
	reference, mime, err := readImageFile(o.referenceImage, "reference-image")
	if err != nil {
		return err
	}
	width, height, err := validator.ParseSize(o.size, o.width, o.height)
	if err != nil {
		return err
	}

	outDir, err := resolveOutDir(o.outDir, cfg.OutputDir, "runware-single")
	if err != nil {
		return err
	}

	steps, cfgScale := samplerValues(cmd.Flags(), o.steps, o.cfg)

	opts := single.Options{
		Prompt:             prompt,
		Width:              width,
		Height:             height,
		Model:              o.model,
		Steps:              steps,
		CFGScale:           cfgScale,
		Scheduler:          o.scheduler,
		NegativePrompt:     negative,
		ReferenceImage:     reference,
		ReferenceImageMime: mime,
		OutDir:             outDir,
	}
	if o.improve && !o.noImprove {
		im, err := newImprover(ctx, o.improveModel, o.improveRolePrompt, filepath.Join(outDir, single.ImproveLogsDir))
		if err != nil {
			return err
		}
		opts.Improver = im
	}

	images := runware.NewClient(apiKey, runware.WithEndpoint(cfg.RunwareAPIURL))
	out, err := single.Run(ctx, images, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Saved outputs to %s\n", out.OutDir)
	fmt.Printf("- %s\n", out.ImagePath)
	return nil
}
