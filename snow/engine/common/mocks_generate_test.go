// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package common

//go:generate go run github.com/golang/mock/mockgen@v1.6.0 -package=${GOPACKAGE} -destination=mock_sender.go github.com/ava-labs/avalanche-consensus/snow/engine/common Sender
