package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "codeact",
		Short: "CodeAct: a turn-based agent for code execution and web research",
	}
	root.AddCommand(runCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
