package cmd

import "github.com/spf13/pflag"

// samplerValues - 명시적으로 지정된 --steps/--cfg만 포인터로 전달 (나머지는 기본값)
func samplerValues(f *pflag.FlagSet, steps int, cfg float64) (*int, *float64) {
	var stepsPtr *int
	var cfgPtr *float64
	if f.Changed("steps") {
		stepsPtr = &steps
	}
	if f.Changed("cfg") {
		cfgPtr = &cfg
	}
	return stepsPtr, cfgPtr
}

// addOutputFlags - --out-dir, --size, --width, --height
func addOutputFlags(f *pflag.FlagSet, outDir, size, width, height *string) {
	f.StringVar(outDir, "out-dir", "", "Output directory (default: <OUTPUT_DIR>/<mode>-<timestamp>)")
	f.StringVar(size, "size", "", "Output size WIDTHxHEIGHT (default: 1024x1024)")
	f.StringVar(width, "width", "", "Output width (use with --height)")
	f.StringVar(height, "height", "", "Output height (use with --width)")
}

// addSamplerFlags - --model, --steps, --cfg, --scheduler
func addSamplerFlags(f *pflag.FlagSet, model *string, steps *int, cfg *float64, scheduler *string, modelUsage string) {
	f.StringVar(model, "model", "", modelUsage)
	f.IntVar(steps, "steps", 0, "Sampling steps (default: 8)")
	f.Float64Var(cfg, "cfg", 0, "Guidance scale (default: 1)")
	f.StringVar(scheduler, "scheduler", "", "Scheduler (default: UniPC)")
}
