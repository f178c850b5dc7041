// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

// #nosec G101
const (
	EnvPrefix     = "avacon"
	ConfigFileKey = "config-file"

	// Consensus
	SnowSampleSizeKey              = "snow-sample-size"
	SnowQuorumSizeKey              = "snow-quorum-size"
	SnowVirtuousCommitThresholdKey = "snow-virtuous-commit-threshold"
	SnowRogueCommitThresholdKey    = "snow-rogue-commit-threshold"
	SnowConcurrentRepollsKey       = "snow-concurrent-repolls"
	SnowOptimalProcessingKey       = "snow-optimal-processing"
	SnowMaxProcessingKey           = "snow-max-processing"
	SnowMaxTimeProcessingKey       = "snow-max-time-processing"
	SnowBatchSizeKey               = "snow-batch-size"
	SnowRoundTimeoutKey            = "snow-round-timeout"
	SnowRetryDelayKey              = "snow-retry-delay"
	SnowInsufficientPeersPolicyKey = "snow-insufficient-peers-policy"
	QueryRateLimitKey              = "query-rate-limit"
	QueryBurstKey                  = "query-burst"

	// Logging
	LogLevelKey            = "log-level"
	LogDisplayLevelKey     = "log-display-level"
	LogDisplayHighlightKey = "log-display-highlight"
	LogFormatKey           = "log-format"
	LogsDirKey             = "log-dir"
	LogRotaterMaxSizeKey   = "log-rotater-max-size"
	LogRotaterMaxFilesKey  = "log-rotater-max-files"
	LogRotaterMaxAgeKey    = "log-rotater-max-age"
	LogRotaterCompressKey  = "log-rotater-compress-enabled"

	// Tracing
	TracingExporterTypeKey = "tracing-exporter-type"
	TracingEndpointKey     = "tracing-endpoint"
	TracingInsecureKey     = "tracing-insecure"
	TracingSampleRateKey   = "tracing-sample-rate"
	TracingHeadersKey      = "tracing-headers"

	// Simulation
	SimNodesKey               = "sim-nodes"
	SimByzantineKey           = "sim-byzantine"
	SimRandomByzantineKey     = "sim-random-byzantine"
	SimTxsKey                 = "sim-txs"
	SimConflictProbabilityKey = "sim-conflict-probability"
	SimParentProbabilityKey   = "sim-parent-probability"
	SimSeedKey                = "sim-seed"
	SimLatencyKey             = "sim-latency"
	SimJitterKey              = "sim-jitter"
	SimDropProbabilityKey     = "sim-drop-probability"
	SimInboundRateLimitKey    = "sim-inbound-rate-limit"
	SimInboundBurstKey        = "sim-inbound-burst"
	SimTimeoutKey             = "sim-timeout"
	SimVerticesKey            = "sim-vertices"
)
