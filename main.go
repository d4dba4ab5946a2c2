// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package main

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/crossenv-gateway/pkg/cli"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if err := cli.NewCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("crossenv gateway exited with error")
	}
}
