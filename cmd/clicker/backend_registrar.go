//go:build windows || darwin

package main

import (
	"errors"

	"burstclicker/internal/adapters/hotkeyreg"
	"burstclicker/internal/core/autoclicker"
)

type inputRuntime interface {
	autoclicker.Poller
	autoclicker.Injector
	Close() error
}

// registrarBackend pairs a button runtime with OS-level hotkey registration
// on platforms where the two come from different libraries.
type registrarBackend struct {
	inputRuntime
	*hotkeyreg.Registrar
}

func (b *registrarBackend) Close() error {
	return errors.Join(b.Registrar.Close(), b.inputRuntime.Close())
}
