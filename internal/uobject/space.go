// Package uobject provides typed views over the reflection objects of a
// target address space.
//
// Every view is a handle holding an address; accessors read the target on
// each call and nothing is cached. The null address is the absent handle.
package uobject

import (
	"iter"
	"log/slog"

	"github.com/skdltmxn/uedump/internal/names"
	"github.com/skdltmxn/uedump/memory"
	"github.com/skdltmxn/uedump/profile"
)

// MaxChain bounds every linked-list walk.
const MaxChain = 1 << 16

// Space binds handles to the memory they are read from.
type Space struct {
	Mem   *memory.Accessor
	Names *names.Pool
	Off   *profile.Offsets
	Log   *slog.Logger
}

// NewSpace returns a Space. A nil logger means slog.Default().
func NewSpace(mem *memory.Accessor, pool *names.Pool, off *profile.Offsets, log *slog.Logger) *Space {
	if log == nil {
		log = slog.Default()
	}
	return &Space{Mem: mem, Names: pool, Off: off, Log: log}
}

// Node is implemented by every handle.
type Node interface {
	Addr() memory.Address
	Space() *Space
}

// Walk yields first, next(first), ... and stops at the absent handle, at
// the first address seen twice or after MaxChain nodes.
func Walk[T Node](first T, next func(T) T) iter.Seq[T] {
	return func(yield func(T) bool) {
		seen := make(map[memory.Address]struct{})
		for n := first; !n.Addr().IsNull(); n = next(n) {
			if _, dup := seen[n.Addr()]; dup {
				n.Space().Log.Debug("chain cycle", "start", first.Addr(), "at", n.Addr())
				return
			}
			if len(seen) >= MaxChain {
				n.Space().Log.Debug("chain too long", "start", first.Addr())
				return
			}
			seen[n.Addr()] = struct{}{}
			if !yield(n) {
				return
			}
		}
	}
}

// Object returns the object handle for addr.
func (s *Space) Object(addr memory.Address) Object {
	return Object{s: s, addr: addr}
}

// FField returns the field handle for addr.
func (s *Space) FField(addr memory.Address) FField {
	return FField{s: s, addr: addr}
}

// Property returns the property handle for addr.
func (s *Space) Property(addr memory.Address) Property {
	return Property{s.FField(addr)}
}
