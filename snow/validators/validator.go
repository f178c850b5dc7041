// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validators

import "github.com/ava-labs/avalanche-consensus/ids"

// Validator is a peer that can be sampled for queries. Peers with more weight
// are sampled more often.
type Validator struct {
	NodeID ids.NodeID
	Weight uint64
}
