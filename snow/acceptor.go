// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snow

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
)

var (
	_ AcceptorGroup = (*acceptorGroup)(nil)

	errDuplicateAcceptor = errors.New("acceptor already registered")
	errUnknownAcceptor   = errors.New("unknown acceptor")
)

// Acceptor is implemented when a struct is monitoring if a message is
// accepted
type Acceptor interface {
	// Accept must be called before [containerID] is committed to the VM as
	// accepted.
	//
	// If the returned error is non-nil, the chain associated with [ctx] should
	// shut down and not commit [container] or any other container to its
	// database as accepted.
	Accept(ctx *ConsensusContext, containerID ids.ID, container []byte) error
}

// Rejector is implemented when a struct is monitoring if a message is
// rejected
type Rejector interface {
	Reject(ctx *ConsensusContext, containerID ids.ID) error
}

// AcceptorFunc adapts a function to the Acceptor interface.
type AcceptorFunc func(ctx *ConsensusContext, containerID ids.ID, container []byte) error

func (f AcceptorFunc) Accept(ctx *ConsensusContext, containerID ids.ID, container []byte) error {
	return f(ctx, containerID, container)
}

// RejectorFunc adapts a function to the Rejector interface.
type RejectorFunc func(ctx *ConsensusContext, containerID ids.ID) error

func (f RejectorFunc) Reject(ctx *ConsensusContext, containerID ids.ID) error {
	return f(ctx, containerID)
}

type AcceptorGroup interface {
	Acceptor
	Rejector

	// RegisterAcceptor causes [acceptor] to be called every time an item is
	// accepted. If [dieOnError], an error returned by [acceptor] is returned
	// to the caller of Accept.
	RegisterAcceptor(name string, acceptor Acceptor, dieOnError bool) error
	// RegisterRejector causes [rejector] to be called every time an item is
	// rejected.
	RegisterRejector(name string, rejector Rejector, dieOnError bool) error
	// Deregister removes the acceptor and rejector registered as [name].
	Deregister(name string) error
}

type listener struct {
	acceptor   Acceptor
	rejector   Rejector
	dieOnError bool
}

type acceptorGroup struct {
	log logging.Logger

	lock sync.RWMutex
	// Registration order is preserved so that notifications are delivered
	// deterministically.
	names     []string
	listeners map[string]*listener
}

func NewAcceptorGroup(log logging.Logger) AcceptorGroup {
	return &acceptorGroup{
		log:       log,
		listeners: make(map[string]*listener),
	}
}

func (a *acceptorGroup) Accept(ctx *ConsensusContext, containerID ids.ID, container []byte) error {
	a.lock.RLock()
	defer a.lock.RUnlock()

	for _, name := range a.names {
		l := a.listeners[name]
		if l.acceptor == nil {
			continue
		}
		if err := l.acceptor.Accept(ctx, containerID, container); err != nil {
			a.log.Error("failed accepting container",
				zap.String("acceptorName", name),
				zap.Stringer("containerID", containerID),
				zap.Error(err),
			)
			if l.dieOnError {
				return fmt.Errorf("acceptor %s on container %s errored: %w", name, containerID, err)
			}
		}
	}
	return nil
}

func (a *acceptorGroup) Reject(ctx *ConsensusContext, containerID ids.ID) error {
	a.lock.RLock()
	defer a.lock.RUnlock()

	for _, name := range a.names {
		l := a.listeners[name]
		if l.rejector == nil {
			continue
		}
		if err := l.rejector.Reject(ctx, containerID); err != nil {
			a.log.Error("failed rejecting container",
				zap.String("rejectorName", name),
				zap.Stringer("containerID", containerID),
				zap.Error(err),
			)
			if l.dieOnError {
				return fmt.Errorf("rejector %s on container %s errored: %w", name, containerID, err)
			}
		}
	}
	return nil
}

func (a *acceptorGroup) RegisterAcceptor(name string, acceptor Acceptor, dieOnError bool) error {
	return a.register(name, &listener{
		acceptor:   acceptor,
		dieOnError: dieOnError,
	})
}

func (a *acceptorGroup) RegisterRejector(name string, rejector Rejector, dieOnError bool) error {
	return a.register(name, &listener{
		rejector:   rejector,
		dieOnError: dieOnError,
	})
}

func (a *acceptorGroup) register(name string, l *listener) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.listeners[name]; ok {
		return fmt.Errorf("%w: %s", errDuplicateAcceptor, name)
	}
	a.names = append(a.names, name)
	a.listeners[name] = l
	return nil
}

func (a *acceptorGroup) Deregister(name string) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.listeners[name]; !ok {
		return fmt.Errorf("%w: %s", errUnknownAcceptor, name)
	}
	delete(a.listeners, name)
	for i, n := range a.names {
		if n == name {
			a.names = append(a.names[:i], a.names[i+1:]...)
			break
		}
	}
	return nil
}
