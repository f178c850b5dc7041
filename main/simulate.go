// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanche-consensus/config"
	"github.com/ava-labs/avalanche-consensus/snow/networking/local"
	"github.com/ava-labs/avalanche-consensus/trace"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
)

const simulationLoggerName = "simulation"

func simulateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Runs honest and byzantine engines over an in-memory network until every transaction is decided",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	cmd.Flags().AddFlagSet(config.BuildFlagSet())
	return cmd
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.GetConfig(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logFactory := logging.NewFactory(cfg.LoggingConfig)
	defer logFactory.Close()

	log, err := logFactory.Make(simulationLoggerName)
	if err != nil {
		return fmt.Errorf("couldn't create logger: %w", err)
	}
	defer log.StopOnPanic()

	tracer, err := trace.New(cfg.TraceConfig)
	if err != nil {
		return fmt.Errorf("couldn't create tracer: %w", err)
	}
	defer func() {
		if err := tracer.Close(); err != nil {
			log.Warn("failed to close tracer", zap.Error(err))
		}
	}()

	sim, err := local.NewSimulation(cfg.SimulationConfig, log, tracer)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting simulation",
		zap.Int("numNodes", cfg.SimulationConfig.NumNodes),
		zap.Int("numByzantine", cfg.SimulationConfig.NumByzantine),
		zap.Int("numTxs", cfg.SimulationConfig.NumTxs),
		zap.Int64("seed", cfg.SimulationConfig.Seed),
	)
	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
