// umactl UMA CTF 适配器命令行工具
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "umactl exited with error: %v\n", err)
		os.Exit(1)
	}
}
