// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go.uber.org/zap"

	"golang.org/x/exp/maps"

	"github.com/ava-labs/avalanche-consensus/cache"
	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/metrics"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/snowball"
	"github.com/ava-labs/avalanche-consensus/utils"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
	"github.com/ava-labs/avalanche-consensus/utils/iterator"
	"github.com/ava-labs/avalanche-consensus/utils/set"
	"github.com/ava-labs/avalanche-consensus/utils/timer/mockable"
	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

const (
	namespace = "avalanche"

	rejectedCacheSize = 16384
)

var (
	_ Consensus = (*Topological)(nil)

	ErrDuplicateID   = errors.New("duplicate item ID")
	ErrUnknownParent = errors.New("unknown parent")
	ErrCycle         = errors.New("item depends on itself")
)

// rejection is what is remembered about a rejected item after it leaves the
// arena.
type rejection struct {
	height uint64
	// preference is the item to vote for when asked about the rejected one. It
	// is empty when there is nothing to vote for.
	preference ids.ID
}

// Topological implements the Avalanche interface over an arena-backed DAG.
// It is not safe for concurrent use.
type Topological struct {
	ctx    *snow.ConsensusContext
	params snowball.Parameters

	latency         metrics.Latency
	polls           metrics.Polls
	numConflictSets prometheus.Gauge

	clock mockable.Clock

	// pollNumber is the number of polls that have been recorded
	pollNumber uint64

	dag       *dag
	frontier  *frontier
	conflicts *conflicts

	// Accepted items and the inputs they consumed are never forgotten, so
	// late children always find their parents and a spent input can't be
	// spent again.
	//
	// Key: Item ID
	// Value: Height of the accepted item
	accepted map[ids.ID]uint64
	// Key: Input ID
	// Value: The accepted item that consumed the input
	consumed map[ids.ID]ids.ID

	// Key: Item ID
	// Value: The most recently rejected items
	rejected cache.Cacher[ids.ID, rejection]

	// errs is set once an invariant is violated. Every later call returns it.
	errs wrappers.Errs
}

func NewTopological(ctx *snow.ConsensusContext, params snowball.Parameters) (*Topological, error) {
	return newTopological(ctx, params, snowball.SnowballFactory, rejectedCacheSize)
}

func newTopological(
	ctx *snow.ConsensusContext,
	params snowball.Parameters,
	factory snowball.Factory,
	rejectedCacheSize int,
) (*Topological, error) {
	if err := params.Verify(); err != nil {
		return nil, err
	}

	t := &Topological{
		ctx:       ctx,
		params:    params,
		dag:       newDAG(),
		frontier:  newFrontier(),
		conflicts: newConflicts(params, factory),
		accepted:  make(map[ids.ID]uint64),
		consumed:  make(map[ids.ID]ids.ID),
		rejected:  &cache.LRU[ids.ID, rejection]{Size: rejectedCacheSize},
		numConflictSets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conflict_sets",
			Help:      "Number of conflict sets with processing items",
		}),
	}

	latency, err := metrics.NewLatency("items", "item", ctx.Log, &t.clock, namespace, ctx.Registerer)
	if err != nil {
		return nil, err
	}
	polls, err := metrics.NewPolls(namespace, ctx.Registerer)
	if err != nil {
		return nil, err
	}
	if err := ctx.Registerer.Register(t.numConflictSets); err != nil {
		return nil, err
	}
	t.latency = latency
	t.polls = polls
	return t, nil
}

func (t *Topological) Add(ctx context.Context, item Decidable) error {
	if t.errs.Errored() {
		return t.errs.Err
	}

	itemID := item.ID()
	if status := item.Status(); status != choices.Processing {
		return fmt.Errorf("%w: can't add %s item %s", choices.ErrInvalidStateTransition, status, itemID)
	}
	if _, _, ok := t.dag.Get(itemID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, itemID)
	}
	if _, ok := t.accepted[itemID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, itemID)
	}
	if _, ok := t.rejected.Get(itemID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, itemID)
	}

	var (
		parentIDs      set.Set[ids.ID]
		parentIndices  []int
		height         uint64
		rejectedParent bool
	)
	for _, parentID := range item.Parents() {
		if parentID == itemID {
			return fmt.Errorf("%w: %s", ErrCycle, itemID)
		}
		if parentIDs.Contains(parentID) {
			continue
		}
		parentIDs.Add(parentID)

		if parent, index, ok := t.dag.Get(parentID); ok {
			parentIndices = append(parentIndices, index)
			height = max(height, parent.height+1)
			continue
		}
		if parentHeight, ok := t.accepted[parentID]; ok {
			height = max(height, parentHeight+1)
			continue
		}
		r, ok := t.rejected.Get(parentID)
		if !ok {
			return fmt.Errorf("%w: %s depends on %s", ErrUnknownParent, itemID, parentID)
		}
		height = max(height, r.height+1)
		rejectedParent = true
	}

	item.bind(t.Status)
	t.latency.Issued(itemID, t.pollNumber)

	t.ctx.Log.Verbo("adding item",
		zap.Stringer("kind", item.Kind()),
		zap.Stringer("itemID", itemID),
		zap.Uint64("height", height),
	)

	// A child of a rejected item, or an item spending an input that was
	// already consumed, can never be accepted.
	if rejectedParent {
		return t.fatal(t.rejectItem(ctx, item, height, ids.Empty))
	}
	if winnerID, ok := t.consumedBy(item.InputIDs()); ok {
		return t.fatal(t.rejectItem(ctx, item, height, winnerID))
	}
	if ancestorID, ok := t.conflictingAncestor(itemID, item.InputIDs(), parentIndices); ok {
		t.ctx.Log.Debug("rejecting item that conflicts with its ancestor",
			zap.Stringer("itemID", itemID),
			zap.Stringer("ancestorID", ancestorID),
		)
		return t.fatal(t.rejectItem(ctx, item, height, ids.Empty))
	}

	n := &node{
		item:    item,
		height:  height,
		parents: parentIndices,
	}
	t.dag.Insert(n)
	t.conflicts.Add(itemID, item.InputIDs())
	if n.unaccepted == 0 {
		t.frontier.Add(height, itemID)
	}
	t.numConflictSets.Set(float64(t.conflicts.NumSets()))
	return nil
}

func (t *Topological) RecordPoll(ctx context.Context, votes map[ids.ID]bag.Bag[ids.ID]) error {
	if t.errs.Errored() {
		return t.errs.Err
	}

	t.pollNumber++

	queried := maps.Keys(votes)
	utils.Sort(queried)

	var (
		polled    = make(map[*ConflictSet]struct{}, len(queried))
		finalized []*ConflictSet
	)
	for _, itemID := range queried {
		cs, ok := t.conflicts.Get(itemID)
		if !ok {
			// The item was decided after it was queried.
			continue
		}
		if _, ok := polled[cs]; ok {
			continue
		}
		polled[cs] = struct{}{}
		if cs.Finalized() {
			continue
		}

		if cs.RecordPoll(votes[itemID]) {
			t.polls.Successful()
		} else {
			t.polls.Failed()
		}
		if cs.Finalized() {
			finalized = append(finalized, cs)
		}
	}

	for _, cs := range finalized {
		// Decisions made earlier in this loop may have changed this set.
		winnerID := cs.Preference()
		current, ok := t.conflicts.Get(winnerID)
		if !ok || current != cs || !cs.Finalized() {
			continue
		}
		n, _, ok := t.dag.Get(winnerID)
		if !ok {
			continue
		}

		n.pendingAccept = true
		if n.unaccepted > 0 {
			t.ctx.Log.Debug("deferring acceptance until dependencies are accepted",
				zap.Stringer("itemID", winnerID),
				zap.Int("numUnacceptedParents", n.unaccepted),
			)
			continue
		}
		if err := t.fatal(t.accept(ctx, winnerID)); err != nil {
			return err
		}
	}
	t.numConflictSets.Set(float64(t.conflicts.NumSets()))
	return nil
}

func (t *Topological) Frontier() iterator.Iterator[ids.ID] {
	return iterator.FromSlice(t.frontier.List()...)
}

func (t *Topological) PollTargets(maxTargets int) []ids.ID {
	var (
		targets = make([]ids.ID, 0, maxTargets)
		sets    = make(map[*ConflictSet]struct{}, maxTargets)
	)
	t.frontier.Ascend(func(itemID ids.ID) bool {
		if len(targets) >= maxTargets {
			return false
		}
		cs, ok := t.conflicts.Get(itemID)
		if !ok || cs.Finalized() {
			return true
		}
		if _, ok := sets[cs]; ok {
			return true
		}
		sets[cs] = struct{}{}
		targets = append(targets, itemID)
		return true
	})
	return targets
}

func (t *Topological) Preferences() set.Set[ids.ID] {
	preferences := set.NewSet[ids.ID](len(t.conflicts.sets))
	for itemID, cs := range t.conflicts.sets {
		if cs.IsPreferred(itemID) {
			preferences.Add(itemID)
		}
	}
	return preferences
}

func (t *Topological) Preference(id ids.ID) (ids.ID, bool) {
	if cs, ok := t.conflicts.Get(id); ok {
		return cs.Preference(), true
	}
	if n, _, ok := t.dag.Get(id); ok && n.item.Status() == choices.Accepted {
		return id, true
	}
	if _, ok := t.accepted[id]; ok {
		return id, true
	}
	if r, ok := t.rejected.Get(id); ok && r.preference != ids.Empty {
		return r.preference, true
	}
	return ids.Empty, false
}

func (t *Topological) IsVirtuous(id ids.ID) bool {
	cs, ok := t.conflicts.Get(id)
	return ok && cs.Virtuous()
}

func (t *Topological) Status(id ids.ID) choices.Status {
	if n, _, ok := t.dag.Get(id); ok {
		return n.item.Status()
	}
	if _, ok := t.accepted[id]; ok {
		return choices.Accepted
	}
	if _, ok := t.rejected.Get(id); ok {
		return choices.Rejected
	}
	return choices.Unknown
}

func (t *Topological) Get(id ids.ID) (Decidable, bool) {
	n, _, ok := t.dag.Get(id)
	if !ok {
		return nil, false
	}
	return n.item, true
}

func (t *Topological) NumProcessing() int {
	return len(t.conflicts.sets)
}

func (t *Topological) ProcessingTime() time.Duration {
	return t.latency.MeasureAndGetOldestDuration()
}

func (t *Topological) Finalized() bool {
	return t.NumProcessing() == 0
}

func (t *Topological) String() string {
	return fmt.Sprintf("Topological(Processing = %d, ConflictSets = %d, Frontier = %d, Polls = %d)",
		t.NumProcessing(), t.conflicts.NumSets(), t.frontier.Len(), t.pollNumber)
}

// accept [itemID] along with every pending descendant that becomes
// acceptable.
func (t *Topological) accept(ctx context.Context, itemID ids.ID) error {
	toAccept := []ids.ID{itemID}
	for len(toAccept) > 0 {
		acceptID := toAccept[0]
		toAccept = toAccept[1:]

		n, _, ok := t.dag.Get(acceptID)
		if !ok || n.item.Status() != choices.Processing {
			continue
		}

		item := n.item
		losers := t.conflicts.Decide(acceptID, t.inputIDs)
		t.frontier.Remove(n.height, acceptID)

		t.ctx.Log.Trace("accepting item",
			zap.Stringer("kind", item.Kind()),
			zap.Stringer("itemID", acceptID),
		)
		if err := t.ctx.Decisions.Accept(t.ctx, acceptID, item.Bytes()); err != nil {
			return err
		}
		if err := item.Accept(ctx); err != nil {
			return err
		}
		t.latency.Accepted(acceptID, t.pollNumber, len(item.Bytes()))
		t.accepted[acceptID] = n.height
		for _, inputID := range item.InputIDs() {
			t.consumed[inputID] = acceptID
		}

		for _, loserID := range losers {
			if err := t.reject(ctx, loserID, acceptID); err != nil {
				return err
			}
		}

		// Rejecting the losers may have removed some children.
		for _, childIndex := range n.children {
			child := t.dag.At(childIndex)
			child.unaccepted--
			if child.unaccepted > 0 || child.item.Status() != choices.Processing {
				continue
			}

			childID := child.item.ID()
			if child.pendingAccept {
				if cs, ok := t.conflicts.Get(childID); ok && cs.Finalized() && cs.IsPreferred(childID) {
					toAccept = append(toAccept, childID)
					continue
				}
				// The decision was undone by a merge.
				child.pendingAccept = false
			}
			t.frontier.Add(child.height, childID)
		}

		if current, index, ok := t.dag.Get(acceptID); ok && current == n && len(n.children) == 0 {
			t.dag.Remove(index)
		}
	}
	return nil
}

// reject [itemID] and every processing descendant. Rejected items leave the
// arena. Rejecting an item that isn't processing is a no-op.
func (t *Topological) reject(ctx context.Context, itemID ids.ID, preference ids.ID) error {
	_, index, ok := t.dag.Get(itemID)
	if !ok {
		return nil
	}

	var (
		visited set.Set[ids.ID]
		queue   = []int{index}
	)
	for len(queue) > 0 {
		index := queue[0]
		queue = queue[1:]

		n := t.dag.At(index)
		if n == nil {
			continue
		}
		id := n.item.ID()
		if visited.Contains(id) || n.item.Status() != choices.Processing {
			continue
		}
		visited.Add(id)
		queue = append(queue, n.children...)

		t.conflicts.Remove(id, n.item.InputIDs())
		t.frontier.Remove(n.height, id)
		if err := t.rejectItem(ctx, n.item, n.height, preference); err != nil {
			return err
		}
		// Only the conflicting item has an alternative to vote for.
		preference = ids.Empty
		t.dag.Remove(index)
	}
	return nil
}

func (t *Topological) rejectItem(ctx context.Context, item Decidable, height uint64, preference ids.ID) error {
	itemID := item.ID()
	t.ctx.Log.Trace("rejecting item",
		zap.Stringer("kind", item.Kind()),
		zap.Stringer("itemID", itemID),
	)
	if err := t.ctx.Decisions.Reject(t.ctx, itemID); err != nil {
		return err
	}
	if err := item.Reject(ctx); err != nil {
		return err
	}
	t.latency.Rejected(itemID, t.pollNumber, len(item.Bytes()))
	t.rejected.Put(itemID, rejection{
		height:     height,
		preference: preference,
	})
	return nil
}

// conflictingAncestor returns a processing ancestor of the item that spends
// one of [inputIDs]. Accepting the item would require accepting the ancestor,
// which would reject the item.
func (t *Topological) conflictingAncestor(id ids.ID, inputIDs []ids.ID, parents []int) (ids.ID, bool) {
	conflicts := t.conflicts.Conflicts(id, inputIDs)
	if conflicts.Len() == 0 {
		return ids.Empty, false
	}

	var (
		visited set.Set[int]
		stack   = append([]int(nil), parents...)
	)
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Contains(index) {
			continue
		}
		visited.Add(index)

		n := t.dag.At(index)
		if n.item.Status() != choices.Processing {
			continue
		}
		ancestorID := n.item.ID()
		if conflicts.Contains(ancestorID) {
			return ancestorID, true
		}
		stack = append(stack, n.parents...)
	}
	return ids.Empty, false
}

func (t *Topological) consumedBy(inputIDs []ids.ID) (ids.ID, bool) {
	for _, inputID := range inputIDs {
		if winnerID, ok := t.consumed[inputID]; ok {
			return winnerID, true
		}
	}
	return ids.Empty, false
}

func (t *Topological) inputIDs(id ids.ID) []ids.ID {
	n, _, ok := t.dag.Get(id)
	if !ok {
		return nil
	}
	return n.item.InputIDs()
}

// fatal records [err] as an invariant violation.
func (t *Topological) fatal(err error) error {
	if err == nil {
		return nil
	}
	t.ctx.Log.Error("consensus invariant violated",
		zap.Error(err),
	)
	t.errs.Add(err)
	return err
}
