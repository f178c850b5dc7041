// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

import "github.com/ava-labs/avalanche-consensus/ids"

var SnowballFactory Factory = snowballFactory{}

// Factory produces Nnary instances
type Factory interface {
	NewNnary(params Parameters, choice ids.ID) Nnary
}

type snowballFactory struct{}

func (snowballFactory) NewNnary(params Parameters, choice ids.ID) Nnary {
	sb := newNnarySnowball(params.BetaVirtuous, params.BetaRogue, choice)
	return &sb
}
