// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validators

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/sampler"
	"github.com/ava-labs/avalanche-consensus/utils/set"

	safemath "github.com/ava-labs/avalanche-consensus/utils/math"
)

var (
	_ Set = (*vdrSet)(nil)

	ErrInsufficientPeers = errors.New("insufficient peers")
	errZeroWeight        = errors.New("weight must be non-zero")
	errDuplicateNodeID   = errors.New("duplicate node ID")
)

// Set of peers that can be sampled
type Set interface {
	fmt.Stringer

	// Add a new peer to the set.
	Add(nodeID ids.NodeID, weight uint64) error

	// AddWeight to an existing peer.
	AddWeight(nodeID ids.NodeID, weight uint64) error

	// RemoveWeight from a peer. A peer whose weight drops to zero is removed.
	RemoveWeight(nodeID ids.NodeID, weight uint64) error

	// GetWeight retrieves the peer weight from the set.
	GetWeight(nodeID ids.NodeID) uint64

	// SubsetWeight returns the sum of the weights of the peers.
	SubsetWeight(subset set.Set[ids.NodeID]) (uint64, error)

	// Contains returns true if there is a peer with the specified ID currently
	// in the set.
	Contains(nodeID ids.NodeID) bool

	// Len returns the number of peers currently in the set.
	Len() int

	// List all the peers in this set.
	List() []Validator

	// Weight returns the cumulative weight of all peers in the set.
	Weight() uint64

	// SampleableWeight returns the cumulative weight of the peers that aren't
	// masked.
	SampleableWeight() uint64

	// SampleableLen returns the number of peers that aren't masked.
	SampleableLen() int

	// Sample returns [size] distinct node IDs, weighted by stake. Masked peers
	// are never returned. If fewer than [size] peers can be sampled,
	// ErrInsufficientPeers is returned.
	Sample(size int) ([]ids.NodeID, error)

	// Mask hides the peer from future samples, for example when it
	// disconnects.
	Mask(nodeID ids.NodeID)

	// Reveal undoes Mask.
	Reveal(nodeID ids.NodeID)
}

// NewSet returns a new, empty set of peers.
func NewSet() Set {
	return NewSetWithSampler(sampler.NewWeightedWithoutReplacement())
}

// NewSetWithSampler returns a new, empty set of peers that samples with [s].
func NewSetWithSampler(s sampler.WeightedWithoutReplacement) Set {
	return &vdrSet{
		vdrMap:  make(map[ids.NodeID]int),
		sampler: s,
	}
}

type vdrSet struct {
	lock sync.RWMutex

	vdrMap           map[ids.NodeID]int
	vdrSlice         []*Validator
	vdrMaskedWeights []uint64
	maskedVdrs       set.Set[ids.NodeID]

	totalWeight      uint64
	sampleableWeight uint64
	numSampleable    int

	samplerInitialized bool
	sampler            sampler.WeightedWithoutReplacement
}

func (s *vdrSet) Add(nodeID ids.NodeID, weight uint64) error {
	if weight == 0 {
		return errZeroWeight
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vdrMap[nodeID]; ok {
		return fmt.Errorf("%w: %s", errDuplicateNodeID, nodeID)
	}

	newTotalWeight, err := safemath.Add64(s.totalWeight, weight)
	if err != nil {
		return err
	}
	s.totalWeight = newTotalWeight

	s.vdrMap[nodeID] = len(s.vdrSlice)
	s.vdrSlice = append(s.vdrSlice, &Validator{
		NodeID: nodeID,
		Weight: weight,
	})
	s.vdrMaskedWeights = append(s.vdrMaskedWeights, 0)
	if !s.maskedVdrs.Contains(nodeID) {
		s.vdrMaskedWeights[len(s.vdrMaskedWeights)-1] = weight
		s.sampleableWeight += weight
		s.numSampleable++
	}
	s.samplerInitialized = false
	return nil
}

func (s *vdrSet) AddWeight(nodeID ids.NodeID, weight uint64) error {
	if weight == 0 {
		return nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	i, ok := s.vdrMap[nodeID]
	if !ok {
		return nil
	}
	newTotalWeight, err := safemath.Add64(s.totalWeight, weight)
	if err != nil {
		return err
	}
	s.totalWeight = newTotalWeight

	vdr := s.vdrSlice[i]
	vdr.Weight += weight
	if !s.maskedVdrs.Contains(nodeID) {
		s.vdrMaskedWeights[i] += weight
		s.sampleableWeight += weight
	}
	s.samplerInitialized = false
	return nil
}

func (s *vdrSet) RemoveWeight(nodeID ids.NodeID, weight uint64) error {
	if weight == 0 {
		return nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	i, ok := s.vdrMap[nodeID]
	if !ok {
		return nil
	}

	vdr := s.vdrSlice[i]
	weight = min(vdr.Weight, weight)
	vdr.Weight -= weight
	s.totalWeight -= weight
	if !s.maskedVdrs.Contains(nodeID) {
		s.vdrMaskedWeights[i] -= weight
		s.sampleableWeight -= weight
	}
	if vdr.Weight == 0 {
		s.remove(nodeID)
	}
	s.samplerInitialized = false
	return nil
}

// remove swaps the last peer into the slot of [nodeID].
func (s *vdrSet) remove(nodeID ids.NodeID) {
	i := s.vdrMap[nodeID]
	e := len(s.vdrSlice) - 1
	last := s.vdrSlice[e]

	if !s.maskedVdrs.Contains(nodeID) {
		s.numSampleable--
	}

	s.vdrMap[last.NodeID] = i
	s.vdrSlice[i] = last
	s.vdrMaskedWeights[i] = s.vdrMaskedWeights[e]

	delete(s.vdrMap, nodeID)
	s.vdrSlice[e] = nil
	s.vdrSlice = s.vdrSlice[:e]
	s.vdrMaskedWeights = s.vdrMaskedWeights[:e]
}

func (s *vdrSet) GetWeight(nodeID ids.NodeID) uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if i, ok := s.vdrMap[nodeID]; ok {
		return s.vdrSlice[i].Weight
	}
	return 0
}

func (s *vdrSet) SubsetWeight(subset set.Set[ids.NodeID]) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var (
		totalWeight uint64
		err         error
	)
	for nodeID := range subset {
		i, ok := s.vdrMap[nodeID]
		if !ok {
			continue
		}
		totalWeight, err = safemath.Add64(totalWeight, s.vdrSlice[i].Weight)
		if err != nil {
			return 0, err
		}
	}
	return totalWeight, nil
}

func (s *vdrSet) Contains(nodeID ids.NodeID) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	_, ok := s.vdrMap[nodeID]
	return ok
}

func (s *vdrSet) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vdrSlice)
}

func (s *vdrSet) List() []Validator {
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]Validator, len(s.vdrSlice))
	for i, vdr := range s.vdrSlice {
		list[i] = *vdr
	}
	return list
}

func (s *vdrSet) Weight() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.totalWeight
}

func (s *vdrSet) SampleableWeight() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.sampleableWeight
}

func (s *vdrSet) SampleableLen() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.numSampleable
}

func (s *vdrSet) Sample(size int) ([]ids.NodeID, error) {
	if size == 0 {
		return nil, nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if size > s.numSampleable {
		return nil, fmt.Errorf("%w: requested %d but only %d can be sampled",
			ErrInsufficientPeers, size, s.numSampleable)
	}
	if !s.samplerInitialized {
		if err := s.sampler.Initialize(s.vdrMaskedWeights); err != nil {
			return nil, err
		}
		s.samplerInitialized = true
	}

	indices, err := s.sampler.Sample(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientPeers, err)
	}

	nodeIDs := make([]ids.NodeID, size)
	for i, index := range indices {
		nodeIDs[i] = s.vdrSlice[index].NodeID
	}
	return nodeIDs, nil
}

func (s *vdrSet) Mask(nodeID ids.NodeID) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.maskedVdrs.Contains(nodeID) {
		return
	}
	s.maskedVdrs.Add(nodeID)

	i, ok := s.vdrMap[nodeID]
	if !ok {
		return
	}
	s.sampleableWeight -= s.vdrMaskedWeights[i]
	s.vdrMaskedWeights[i] = 0
	s.numSampleable--
	s.samplerInitialized = false
}

func (s *vdrSet) Reveal(nodeID ids.NodeID) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.maskedVdrs.Contains(nodeID) {
		return
	}
	s.maskedVdrs.Remove(nodeID)

	i, ok := s.vdrMap[nodeID]
	if !ok {
		return
	}
	weight := s.vdrSlice[i].Weight
	s.vdrMaskedWeights[i] = weight
	s.sampleableWeight += weight
	s.numSampleable++
	s.samplerInitialized = false
}

func (s *vdrSet) String() string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Validator Set: (Size = %d, SampleableWeight = %d, Weight = %d)",
		len(s.vdrSlice),
		s.sampleableWeight,
		s.totalWeight,
	))
	for i, vdr := range s.vdrSlice {
		sb.WriteString(fmt.Sprintf("\n    Validator[%d]: %s, %d/%d",
			i,
			vdr.NodeID,
			s.vdrMaskedWeights[i],
			vdr.Weight,
		))
	}
	return sb.String()
}
