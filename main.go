package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/xfunc/cli"
	"github.com/ardnew/xfunc/log"
)

func main() {
	if err := cli.Run(context.Background(), os.Exit, os.Args[1:]...); err != nil {
		log.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}
