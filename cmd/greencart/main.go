package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/greencart/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
