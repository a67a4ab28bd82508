package main

import (
	"log/slog"
	"os"

	"github.com/Sagar-1103/taskify/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		slog.Error("taskify failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
