// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ava-labs/avalanche-consensus/snow/consensus/snowball"
	"github.com/ava-labs/avalanche-consensus/snow/networking/local"
	"github.com/ava-labs/avalanche-consensus/trace"
	"github.com/ava-labs/avalanche-consensus/utils/logging"

	avaeng "github.com/ava-labs/avalanche-consensus/snow/engine/avalanche"
)

var errInvalidTimeout = errors.New("timeout must be positive")

// Config is everything the simulate command needs to run.
type Config struct {
	LoggingConfig    logging.Config         `json:"loggingConfig"`
	TraceConfig      trace.Config           `json:"traceConfig"`
	SimulationConfig local.SimulationConfig `json:"simulationConfig"`
	// Timeout bounds the whole simulation.
	Timeout time.Duration `json:"timeout"`
}

func getConsensusParameters(v *viper.Viper) snowball.Parameters {
	return snowball.Parameters{
		K:                     v.GetInt(SnowSampleSizeKey),
		Alpha:                 v.GetInt(SnowQuorumSizeKey),
		BetaVirtuous:          v.GetInt(SnowVirtuousCommitThresholdKey),
		BetaRogue:             v.GetInt(SnowRogueCommitThresholdKey),
		ConcurrentRepolls:     v.GetInt(SnowConcurrentRepollsKey),
		OptimalProcessing:     v.GetInt(SnowOptimalProcessingKey),
		MaxOutstandingItems:   v.GetInt(SnowMaxProcessingKey),
		MaxItemProcessingTime: v.GetDuration(SnowMaxTimeProcessingKey),
		BatchSize:             v.GetInt(SnowBatchSizeKey),
	}
}

// getEngineConfig returns the engine template. The context, validators and
// sender are provided by whoever creates the engine.
func getEngineConfig(v *viper.Viper) (avaeng.Config, error) {
	params := getConsensusParameters(v)
	if err := params.Verify(); err != nil {
		return avaeng.Config{}, err
	}

	policy, err := avaeng.ParseInsufficientPeersPolicy(v.GetString(SnowInsufficientPeersPolicyKey))
	if err != nil {
		return avaeng.Config{}, err
	}

	config := avaeng.Config{
		Params:                  params,
		RoundTimeout:            v.GetDuration(SnowRoundTimeoutKey),
		RetryDelay:              v.GetDuration(SnowRetryDelayKey),
		InsufficientPeersPolicy: policy,
		QueryRateLimit:          v.GetFloat64(QueryRateLimitKey),
		QueryBurst:              v.GetInt(QueryBurstKey),
	}
	switch {
	case config.RoundTimeout <= 0:
		return avaeng.Config{}, fmt.Errorf("%w: %s = %s", errInvalidTimeout, SnowRoundTimeoutKey, config.RoundTimeout)
	case config.RetryDelay <= 0:
		return avaeng.Config{}, fmt.Errorf("%w: %s = %s", errInvalidTimeout, SnowRetryDelayKey, config.RetryDelay)
	default:
		return config, nil
	}
}

func getLoggingConfig(v *viper.Viper) (logging.Config, error) {
	loggingConfig := logging.Config{}
	loggingConfig.Directory = v.GetString(LogsDirKey)
	if loggingConfig.Directory != "" {
		loggingConfig.Directory = filepath.Clean(os.ExpandEnv(loggingConfig.Directory))
	} else {
		loggingConfig.DisableFileLogging = true
	}

	var err error
	loggingConfig.LogLevel, err = logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return loggingConfig, err
	}

	logDisplayLevel := v.GetString(LogLevelKey)
	if v.IsSet(LogDisplayLevelKey) {
		logDisplayLevel = v.GetString(LogDisplayLevelKey)
	}
	loggingConfig.DisplayLevel, err = logging.ToLevel(logDisplayLevel)
	if err != nil {
		return loggingConfig, err
	}

	logFormat := v.GetString(LogFormatKey)
	if !v.IsSet(LogFormatKey) && v.GetString(LogDisplayHighlightKey) != "" {
		logFormat = v.GetString(LogDisplayHighlightKey)
	}
	loggingConfig.LogFormat, err = logging.ToFormat(logFormat, os.Stdout.Fd())
	if err != nil {
		return loggingConfig, err
	}

	loggingConfig.MaxSize = int(v.GetUint(LogRotaterMaxSizeKey))
	loggingConfig.MaxFiles = int(v.GetUint(LogRotaterMaxFilesKey))
	loggingConfig.MaxAge = int(v.GetUint(LogRotaterMaxAgeKey))
	loggingConfig.Compress = v.GetBool(LogRotaterCompressKey)
	return loggingConfig, nil
}

func getTraceConfig(v *viper.Viper) (trace.Config, error) {
	exporterType, err := trace.ExporterTypeFromString(v.GetString(TracingExporterTypeKey))
	if err != nil {
		return trace.Config{}, err
	}
	if exporterType == trace.NoOp {
		return trace.Config{}, nil
	}

	return trace.Config{
		ExporterConfig: trace.ExporterConfig{
			Type:     exporterType,
			Endpoint: v.GetString(TracingEndpointKey),
			Insecure: v.GetBool(TracingInsecureKey),
			Headers:  v.GetStringMapString(TracingHeadersKey),
		},
		Enabled:         true,
		TraceSampleRate: v.GetFloat64(TracingSampleRateKey),
	}, nil
}

func getSimulationConfig(v *viper.Viper) (local.SimulationConfig, error) {
	engineConfig, err := getEngineConfig(v)
	if err != nil {
		return local.SimulationConfig{}, err
	}

	seed := v.GetInt64(SimSeedKey)
	config := local.SimulationConfig{
		NumNodes:            v.GetInt(SimNodesKey),
		NumByzantine:        v.GetInt(SimByzantineKey),
		RandomByzantine:     v.GetBool(SimRandomByzantineKey),
		NumTxs:              v.GetInt(SimTxsKey),
		ConflictProbability: v.GetFloat64(SimConflictProbabilityKey),
		ParentProbability:   v.GetFloat64(SimParentProbabilityKey),
		Seed:                seed,
		Vertices:            v.GetBool(SimVerticesKey),
		Network: local.Config{
			Latency:          v.GetDuration(SimLatencyKey),
			Jitter:           v.GetDuration(SimJitterKey),
			DropProbability:  v.GetFloat64(SimDropProbabilityKey),
			InboundRateLimit: v.GetFloat64(SimInboundRateLimitKey),
			InboundBurst:     v.GetInt(SimInboundBurstKey),
			Seed:             seed,
		},
		Engine: engineConfig,
	}
	return config, config.Verify()
}

// GetConfig reads the configuration from [v] and verifies it.
func GetConfig(v *viper.Viper) (Config, error) {
	var (
		config Config
		err    error
	)
	config.LoggingConfig, err = getLoggingConfig(v)
	if err != nil {
		return Config{}, err
	}

	config.TraceConfig, err = getTraceConfig(v)
	if err != nil {
		return Config{}, err
	}

	config.SimulationConfig, err = getSimulationConfig(v)
	if err != nil {
		return Config{}, err
	}

	config.Timeout = v.GetDuration(SimTimeoutKey)
	if config.Timeout <= 0 {
		return Config{}, fmt.Errorf("%w: %s = %s", errInvalidTimeout, SimTimeoutKey, config.Timeout)
	}
	return config, nil
}
