package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "llmadapter",
	Short: "Generic LLM adapter - one conversational API over many backends",
	Long: `llmadapter exposes a single conversational API in front of several
wire-incompatible LLM backends (OpenAI, DeepSeek, HuggingFace, local vLLM)
and persists multi-turn conversation history per session and user.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
