package main

import (
	"fmt"
	"os"

	"clicksim/internal/observability"

	"go.uber.org/zap"
)

const (
	appName = "clicksim"
	appID   = "io.clicksim.app"
)

func main() {
	defer observability.Sync()
	if err := newRootCmd().Execute(); err != nil {
		observability.GetLogger().Error("Command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		observability.Sync()
		os.Exit(1)
	}
}
