// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package local

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/avalanche-consensus/health"
	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/avalanche"
	"github.com/ava-labs/avalanche-consensus/snow/engine/avalanche/vertex"
	"github.com/ava-labs/avalanche-consensus/snow/validators"
	"github.com/ava-labs/avalanche-consensus/trace"
	"github.com/ava-labs/avalanche-consensus/utils/hashing"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
	"github.com/ava-labs/avalanche-consensus/utils/sampler"

	avaeng "github.com/ava-labs/avalanche-consensus/snow/engine/avalanche"
)

const (
	simulationNetworkID = 1337
	decisionCheckPeriod = 10 * time.Millisecond
)

var (
	errNoHonestNodes       = errors.New("simulation needs at least one honest node")
	errNegativeByzantine   = errors.New("number of byzantine nodes must not be negative")
	errInvalidProbability  = errors.New("probability must be in [0, 1]")
	errDisagreement        = errors.New("honest nodes decided differently")
	errSimulationCancelled = errors.New("simulation stopped before every item was decided")
	errUnknownTx           = errors.New("unknown simulated tx")
)

// SimulationConfig describes a set of engines connected by a Network.
type SimulationConfig struct {
	NumNodes     int `json:"numNodes"`
	NumByzantine int `json:"numByzantine"`
	// RandomByzantine makes byzantine nodes vote for random queried items.
	// Otherwise they answer with an ID that matches no item.
	RandomByzantine bool `json:"randomByzantine"`

	NumTxs int `json:"numTxs"`
	// ConflictProbability is the probability that a tx spends the input of an
	// earlier tx.
	ConflictProbability float64 `json:"conflictProbability"`
	// ParentProbability is the probability that a non-conflicting tx depends
	// on an earlier tx.
	ParentProbability float64 `json:"parentProbability"`
	Seed              int64   `json:"seed"`
	// Vertices wraps every tx in its own vertex. The vertex is encoded and
	// parsed back before it is submitted.
	Vertices bool `json:"vertices"`

	Network Config `json:"network"`
	// Engine is the template every honest engine is created from. Ctx,
	// Validators and Sender are set per node.
	Engine avaeng.Config `json:"-"`
}

func (c *SimulationConfig) Verify() error {
	switch {
	case c.NumByzantine < 0:
		return errNegativeByzantine
	case c.NumNodes <= c.NumByzantine:
		return fmt.Errorf("%w: %d nodes, %d byzantine", errNoHonestNodes, c.NumNodes, c.NumByzantine)
	case c.ConflictProbability < 0 || c.ConflictProbability > 1:
		return fmt.Errorf("%w: conflict probability %f", errInvalidProbability, c.ConflictProbability)
	case c.ParentProbability < 0 || c.ParentProbability > 1:
		return fmt.Errorf("%w: parent probability %f", errInvalidProbability, c.ParentProbability)
	default:
		return c.Network.Verify()
	}
}

// SimulationResult is what the honest nodes agreed on.
type SimulationResult struct {
	Accepted []ids.ID                 `json:"accepted"`
	Rejected []ids.ID                 `json:"rejected"`
	Duration time.Duration            `json:"duration"`
	Healthy  bool                     `json:"healthy"`
	Health   map[string]health.Result `json:"health"`
}

type txSpec struct {
	parents  []ids.ID
	inputIDs []ids.ID
	bytes    []byte
	height   uint64
}

type simNode struct {
	nodeID ids.NodeID
	ctx    *snow.ConsensusContext
	engine *avaeng.Engine

	lock     sync.Mutex
	accepted []ids.ID
	rejected []ids.ID
}

// Simulation runs honest engines and byzantine responders over a Network
// until every honest engine decided every tx.
type Simulation struct {
	config  SimulationConfig
	log     logging.Logger
	network *Network
	nodes   []*simNode
	chainID ids.ID
	txs     []txSpec
	parser  vertex.Parser
	health  health.Health
}

func NewSimulation(config SimulationConfig, log logging.Logger, tracer trace.Tracer) (*Simulation, error) {
	if err := config.Verify(); err != nil {
		return nil, err
	}

	network, err := NewNetwork(config.Network, log)
	if err != nil {
		return nil, err
	}

	nodeIDs := make([]ids.NodeID, config.NumNodes)
	for i := range nodeIDs {
		nodeIDs[i] = ids.NodeIDFromPublicKey([]byte(fmt.Sprintf("simulation-%d-node-%d", config.Seed, i)))
	}
	chainID := ids.ID(hashing.ComputeHash256Array([]byte(fmt.Sprintf("simulation-%d", config.Seed))))

	txs, err := generateTxs(config, chainID)
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		config:  config,
		log:     log,
		network: network,
		chainID: chainID,
		txs:     txs,
		parser:  vertex.NewParser(chainID, txInputIDs(txs)),
		health:  health.New(log),
	}

	numHonest := config.NumNodes - config.NumByzantine
	for i, nodeID := range nodeIDs {
		if i >= numHonest {
			handler := NewFixed(ids.Empty.Prefix(uint64(i)))
			if config.RandomByzantine {
				handler = NewRandom(sampler.NewSource(config.Seed + int64(i)))
			}
			if err := network.Register(nodeID, handler); err != nil {
				return nil, err
			}
			continue
		}

		n, err := s.newNode(i, nodeID, nodeIDs, tracer)
		if err != nil {
			return nil, err
		}
		if err := network.Register(nodeID, n.engine); err != nil {
			return nil, err
		}
		if err := s.health.Register(nodeID.String(), n.engine); err != nil {
			return nil, err
		}
		s.nodes = append(s.nodes, n)
	}
	return s, nil
}

func (s *Simulation) newNode(
	index int,
	nodeID ids.NodeID,
	nodeIDs []ids.NodeID,
	tracer trace.Tracer,
) (*simNode, error) {
	log := s.log.With(zap.Stringer("nodeID", nodeID))
	n := &simNode{
		nodeID: nodeID,
		ctx: &snow.ConsensusContext{
			Context: &snow.Context{
				NetworkID: simulationNetworkID,
				ChainID:   s.chainID,
				NodeID:    nodeID,
				Log:       log,
			},
			PrimaryAlias: s.chainID.String(),
			Registerer:   prometheus.NewRegistry(),
			Tracer:       tracer,
			Decisions:    snow.NewAcceptorGroup(log),
		},
	}

	err := n.ctx.Decisions.RegisterAcceptor("simulation", snow.AcceptorFunc(
		func(_ *snow.ConsensusContext, id ids.ID, _ []byte) error {
			n.lock.Lock()
			defer n.lock.Unlock()

			n.accepted = append(n.accepted, id)
			return nil
		},
	), true)
	if err != nil {
		return nil, err
	}
	err = n.ctx.Decisions.RegisterRejector("simulation-rejector", snow.RejectorFunc(
		func(_ *snow.ConsensusContext, id ids.ID) error {
			n.lock.Lock()
			defer n.lock.Unlock()

			n.rejected = append(n.rejected, id)
			return nil
		},
	), true)
	if err != nil {
		return nil, err
	}

	source := sampler.NewSource(s.config.Seed + int64(index))
	vdrs := validators.NewSetWithSampler(sampler.NewDeterministicWeightedWithoutReplacement(source))
	for _, vdrID := range nodeIDs {
		if err := vdrs.Add(vdrID, 1); err != nil {
			return nil, err
		}
	}

	config := s.config.Engine
	config.Ctx = n.ctx
	config.Validators = vdrs
	config.Sender = s.network.Sender(nodeID)
	n.engine, err = avaeng.New(config)
	return n, err
}

// Run submits every tx to every honest engine and waits until all of them are
// decided.
func (s *Simulation) Run(ctx context.Context) (*SimulationResult, error) {
	start := time.Now()
	defer s.network.Close()

	eg, egCtx := errgroup.WithContext(ctx)
	for _, n := range s.nodes {
		n := n
		eg.Go(func() error {
			return n.engine.Run(egCtx)
		})
	}

	decideErr := s.submitAndWait(egCtx)
	for _, n := range s.nodes {
		n.engine.Stop()
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if decideErr != nil {
		return nil, decideErr
	}

	result, err := s.result()
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	result.Health, result.Healthy = s.health.Results(ctx)
	s.log.Info("simulation finished",
		zap.Int("numAccepted", len(result.Accepted)),
		zap.Int("numRejected", len(result.Rejected)),
		zap.Duration("duration", result.Duration),
		zap.Bool("healthy", result.Healthy),
	)
	return result, nil
}

func (s *Simulation) submitAndWait(ctx context.Context) error {
	for _, n := range s.nodes {
		for _, spec := range s.txs {
			item, err := s.newItem(spec)
			if err != nil {
				return err
			}
			if err := n.engine.Submit(ctx, item); err != nil {
				return fmt.Errorf("failed to submit %s to %s: %w", item.ID(), n.nodeID, err)
			}
		}
	}

	ticker := time.NewTicker(decisionCheckPeriod)
	defer ticker.Stop()

	for {
		if s.decided() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", errSimulationCancelled, ctx.Err())
		case <-ticker.C:
		}
	}
}

// newItem returns a fresh copy of [spec], so every node decides its own
// instance.
func (s *Simulation) newItem(spec txSpec) (avalanche.Decidable, error) {
	if !s.config.Vertices {
		return avalanche.NewTx(spec.parents, spec.inputIDs, spec.bytes), nil
	}
	vtx, err := buildVertex(s.chainID, spec)
	if err != nil {
		return nil, err
	}
	return s.parser.ParseVtx(vtx.Bytes())
}

func buildVertex(chainID ids.ID, spec txSpec) (*vertex.StatelessVertex, error) {
	parents := append([]ids.ID(nil), spec.parents...)
	return vertex.Build(chainID, spec.height, parents, [][]byte{spec.bytes})
}

// txInputIDs returns the inputs consumed by the simulated txs in a vertex.
func txInputIDs(specs []txSpec) vertex.InputIDsFunc {
	inputs := make(map[string][]ids.ID, len(specs))
	for _, spec := range specs {
		inputs[string(spec.bytes)] = spec.inputIDs
	}
	return func(txs [][]byte) ([]ids.ID, error) {
		var inputIDs []ids.ID
		for _, tx := range txs {
			txInputs, ok := inputs[string(tx)]
			if !ok {
				return nil, errUnknownTx
			}
			inputIDs = append(inputIDs, txInputs...)
		}
		return inputIDs, nil
	}
}

func (s *Simulation) decided() bool {
	for _, n := range s.nodes {
		if n.engine.NumProcessing() > 0 {
			return false
		}
	}
	return true
}

// result returns the decisions of the first honest node, after checking that
// every other honest node made the same decisions.
func (s *Simulation) result() (*SimulationResult, error) {
	first := s.nodes[0]
	first.lock.Lock()
	result := &SimulationResult{
		Accepted: append([]ids.ID(nil), first.accepted...),
		Rejected: append([]ids.ID(nil), first.rejected...),
	}
	first.lock.Unlock()

	accepted := make(map[ids.ID]struct{}, len(result.Accepted))
	for _, id := range result.Accepted {
		accepted[id] = struct{}{}
	}
	for _, n := range s.nodes[1:] {
		n.lock.Lock()
		numAccepted := len(n.accepted)
		var missing []ids.ID
		for _, id := range n.accepted {
			if _, ok := accepted[id]; !ok {
				missing = append(missing, id)
			}
		}
		n.lock.Unlock()

		if numAccepted != len(result.Accepted) || len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s accepted %d items, %s accepted %d",
				errDisagreement, first.nodeID, len(result.Accepted), n.nodeID, numAccepted)
		}
	}
	return result, nil
}

// generateTxs returns a deterministic set of txs. A tx that spends the input
// of an earlier tx has no parents, so it never conflicts with its own
// ancestors.
func generateTxs(config SimulationConfig, chainID ids.ID) ([]txSpec, error) {
	var (
		source = sampler.NewSource(config.Seed)
		float  = func() float64 {
			return float64(source.Uint64()>>11) / (1 << 53)
		}
		intn = func(n int) int {
			return int(source.Uint64() % uint64(n))
		}
		specs   = make([]txSpec, 0, config.NumTxs)
		itemIDs = make([]ids.ID, 0, config.NumTxs)
	)
	for i := 0; i < config.NumTxs; i++ {
		spec := txSpec{
			bytes: []byte(fmt.Sprintf("simulation-%d-tx-%d", config.Seed, i)),
		}
		switch {
		case i > 0 && float() < config.ConflictProbability:
			spec.inputIDs = specs[intn(i)].inputIDs
		default:
			inputID := ids.ID(hashing.ComputeHash256Array([]byte(fmt.Sprintf("simulation-%d-input-%d", config.Seed, i))))
			spec.inputIDs = []ids.ID{inputID}
			if i > 0 && float() < config.ParentProbability {
				parent := intn(i)
				spec.parents = []ids.ID{itemIDs[parent]}
				spec.height = specs[parent].height + 1
			}
		}

		itemID := avalanche.NewTx(spec.parents, spec.inputIDs, spec.bytes).ID()
		if config.Vertices {
			vtx, err := buildVertex(chainID, spec)
			if err != nil {
				return nil, err
			}
			itemID = vtx.ID()
		}
		specs = append(specs, spec)
		itemIDs = append(itemIDs, itemID)
	}
	return specs, nil
}
