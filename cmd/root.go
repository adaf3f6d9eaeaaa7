package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

// --runware-api-key (모든 서브커맨드 공통)
var runwareAPIKey string

var rootCmd = &cobra.Command{
	Use:           "yumcut",
	Short:         "Cheap image generation on top of Runware",
	Long:          "듀얼/단일 이미지 생성, 프롬프트 개선, 작업 서버를 제공하는 CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&runwareAPIKey, "runware-api-key", "", "Override RUNWARE_API_KEY")
	rootCmd.AddCommand(dualCmd, singleCmd, improveCmd, serveCmd)
}

// Execute - main.go에서 호출
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}
