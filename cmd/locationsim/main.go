package main

import (
	"context"
	"fmt"
	"os"

	"github.com/LeoCommon/locationsim/internal/app"
	"github.com/LeoCommon/locationsim/internal/config"
	"github.com/LeoCommon/locationsim/pkg/log"
	"go.uber.org/zap"
)

func main() {
	flags, err := config.ParseCLIFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	a, err := app.Setup(flags, false)
	if err != nil || a == nil {
		fmt.Printf("Initialization failed, error: %s\n", err)
		os.Exit(1)
	}

	exitCode := 0
	if err := a.Run(context.Background()); err != nil {
		log.Error("provider could not be started", zap.Error(err))
		exitCode = 1
	}

	if err := a.Shutdown(); err != nil {
		log.Error("shutdown failed", zap.Error(err))
		exitCode = 1
	}

	// os.Exit skips deferred calls
	_ = log.Sync()
	os.Exit(exitCode)
}
