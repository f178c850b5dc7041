// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ava-labs/avalanche-consensus/snow/consensus/snowball"

	avaeng "github.com/ava-labs/avalanche-consensus/snow/engine/avalanche"
)

const appName = "avalanche-consensus"

func addConsensusFlags(fs *pflag.FlagSet) {
	fs.Int(SnowSampleSizeKey, snowball.DefaultParameters.K, "Number of nodes to query for each network poll")
	fs.Int(SnowQuorumSizeKey, snowball.DefaultParameters.Alpha, "Alpha value to use for required number positive results")
	fs.Int(SnowVirtuousCommitThresholdKey, snowball.DefaultParameters.BetaVirtuous, "Beta value to use for virtuous transactions")
	fs.Int(SnowRogueCommitThresholdKey, snowball.DefaultParameters.BetaRogue, "Beta value to use for rogue transactions")
	fs.Int(SnowConcurrentRepollsKey, snowball.DefaultParameters.ConcurrentRepolls, "Minimum number of concurrent polls for finalizing consensus")
	fs.Int(SnowOptimalProcessingKey, snowball.DefaultParameters.OptimalProcessing, "Optimal number of processing items in consensus")
	fs.Int(SnowMaxProcessingKey, snowball.DefaultParameters.MaxOutstandingItems, "Maximum number of processing items to be considered healthy")
	fs.Duration(SnowMaxTimeProcessingKey, snowball.DefaultParameters.MaxItemProcessingTime, "Maximum amount of time an item should be processing and still be healthy")
	fs.Int(SnowBatchSizeKey, snowball.DefaultParameters.BatchSize, "Maximum number of frontier items queried in a round")
	fs.Duration(SnowRoundTimeoutKey, avaeng.DefaultRoundTimeout, "Time a round waits for query responses before treating the missing ones as silent")
	fs.Duration(SnowRetryDelayKey, avaeng.DefaultRetryDelay, "Time to wait before retrying a round that could not be issued")
	fs.String(SnowInsufficientPeersPolicyKey, avaeng.Degrade.String(), fmt.Sprintf("Behavior when fewer than k peers can be sampled. Should be one of {%s, %s}", avaeng.Degrade, avaeng.Stall))
	fs.Float64(QueryRateLimitKey, 0, "Maximum number of outbound queries per second. 0 disables the limit")
	fs.Int(QueryBurstKey, 1, "Number of outbound queries that may be sent at once when rate limited")
}

func addLoggingFlags(fs *pflag.FlagSet) {
	fs.String(LogsDirKey, "", "Logging directory. File logging is disabled when empty")
	fs.String(LogLevelKey, "info", "The log level. Should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogDisplayLevelKey, "", "The log display level. If left blank, will inherit the value of log-level. Otherwise, should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogFormatKey, "auto", "The structure of log format. Defaults to 'auto' which formats terminal-like logs, when the output is a terminal. Otherwise, should be one of {auto, plain, colors, json}")
	fs.String(LogDisplayHighlightKey, "", fmt.Sprintf("Deprecated: use --%s", LogFormatKey))
	fs.Uint(LogRotaterMaxSizeKey, 8, "The maximum file size in megabytes of the log file before it gets rotated.")
	fs.Uint(LogRotaterMaxFilesKey, 7, "The maximum number of old log files to retain. 0 means retain all old log files.")
	fs.Uint(LogRotaterMaxAgeKey, 0, "The maximum number of days to retain old log files based on the timestamp encoded in their filename. 0 means retain all old log files.")
	fs.Bool(LogRotaterCompressKey, false, "Enables the compression of rotated log files through gzip.")
}

func addTracingFlags(fs *pflag.FlagSet) {
	fs.String(TracingExporterTypeKey, "", "Type of exporter to use for tracing. Options are [, grpc, http]. Tracing is disabled when empty")
	fs.String(TracingEndpointKey, "localhost:4317", "The endpoint to send trace data to")
	fs.Bool(TracingInsecureKey, true, "If true, don't use TLS when sending trace data")
	fs.Float64(TracingSampleRateKey, 0.1, "The fraction of traces to sample. If >= 1, always sample. If <= 0, never sample")
	fs.StringToString(TracingHeadersKey, map[string]string{}, "The headers to provide the trace indexer")
}

func addSimulationFlags(fs *pflag.FlagSet) {
	fs.Int(SimNodesKey, 20, "Number of nodes in the simulated network")
	fs.Int(SimByzantineKey, 0, "Number of simulated nodes that answer queries adversarially")
	fs.Bool(SimRandomByzantineKey, false, "If true, byzantine nodes vote for random queried items. Otherwise they vote for nothing")
	fs.Int(SimTxsKey, 100, "Number of transactions submitted to every honest node")
	fs.Float64(SimConflictProbabilityKey, 0.1, "Probability that a transaction conflicts with an earlier one")
	fs.Float64(SimParentProbabilityKey, 0.3, "Probability that a transaction depends on an earlier one")
	fs.Int64(SimSeedKey, 0, "Seed of the simulated workload and network")
	fs.Duration(SimLatencyKey, 5*time.Millisecond, "One-way latency of every simulated message")
	fs.Duration(SimJitterKey, 5*time.Millisecond, "Maximum random delay added to every simulated message")
	fs.Float64(SimDropProbabilityKey, 0, "Probability that a simulated query is lost")
	fs.Float64(SimInboundRateLimitKey, 0, "Maximum number of queries per second a simulated node answers. 0 disables the limit")
	fs.Int(SimInboundBurstKey, 1, "Number of queries a simulated node answers at once when rate limited")
	fs.Duration(SimTimeoutKey, 5*time.Minute, "Maximum duration of the simulation")
	fs.Bool(SimVerticesKey, false, "If true, every transaction is wrapped in its own encoded vertex")
}

// BuildFlagSet returns the complete set of flags
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.String(ConfigFileKey, "", "Specifies a config file. Supported formats are the ones viper reads, selected by extension")
	addConsensusFlags(fs)
	addLoggingFlags(fs)
	addTracingFlags(fs)
	addSimulationFlags(fs)
	return fs
}

// BuildViper returns the viper environment from parsing the config file, the
// environment and [args]. Flags take precedence over the environment, which
// takes precedence over the config file.
func BuildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return NewViper(fs)
}

// NewViper binds the already parsed [fs] to a new viper environment.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if configFile := v.GetString(ConfigFileKey); configFile != "" {
		v.SetConfigFile(os.ExpandEnv(configFile))
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}
