package main

import (
	"os"

	"github.com/hearingscribe/hearingscribe/cmd/hearingscribe/cmd"
	"github.com/hearingscribe/hearingscribe/pkg/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Application execution failed")
		os.Exit(1)
	}
}
