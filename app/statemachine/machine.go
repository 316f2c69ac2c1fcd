// Package statemachine holds the legal status transitions for restaurants,
// reservations and orders, and who may perform each one.
package statemachine

import (
	"strings"

	"github.com/elitetable/elitetable/pkg/apperr"
)

// Actor is the capacity in which a caller changes a status.
type Actor string

const (
	// ActorCustomer is the user who made the booking or order.
	ActorCustomer Actor = "customer"
	// ActorStaff is the restaurant's owner or an admin.
	ActorStaff Actor = "staff"
	// ActorAdmin is an administrator acting on the platform itself.
	ActorAdmin Actor = "admin"
)

// Transition is one permitted status change.
type Transition[S ~string] struct {
	From  S
	To    S
	Actor Actor
}

type key[S ~string] struct {
	from, to S
	actor    Actor
}

// Machine validates status changes against a transition table.
type Machine[S ~string] struct {
	entity      string
	transitions []Transition[S]
	lookup      map[key[S]]bool
}

// New builds a machine for entity from ts.
func New[S ~string](entity string, ts ...Transition[S]) *Machine[S] {
	m := &Machine[S]{entity: entity, transitions: ts, lookup: make(map[key[S]]bool, len(ts))}
	for _, t := range ts {
		m.lookup[key[S]{t.From, t.To, t.Actor}] = true
	}
	return m
}

// Next lists the states actor may move to from. An empty actor means any.
func (m *Machine[S]) Next(from S, actor Actor) []S {
	var out []S
	seen := map[S]bool{}
	for _, t := range m.transitions {
		if t.From != from || seen[t.To] || (actor != "" && t.Actor != actor) {
			continue
		}
		seen[t.To] = true
		out = append(out, t.To)
	}
	return out
}

// States lists every state that appears in the table.
func (m *Machine[S]) States() []S {
	var out []S
	seen := map[S]bool{}
	for _, t := range m.transitions {
		for _, s := range []S{t.From, t.To} {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Check returns nil when actor may move from -> to, and a 400 error listing
// the allowed next states otherwise. Staying in the same state is a no-op
// and always allowed.
func (m *Machine[S]) Check(from, to S, actor Actor) error {
	if from == to || m.lookup[key[S]{from, to, actor}] {
		return nil
	}
	known := false
	for _, s := range m.States() {
		if s == to {
			known = true
			break
		}
	}
	if !known {
		return apperr.Validation(map[string]string{"status": "The selected status is invalid."})
	}
	return apperr.Invalid("Cannot change %s status from %s to %s. Allowed next states: %s",
		m.entity, from, to, describe(m.Next(from, actor)))
}

func describe[S ~string](states []S) string {
	if len(states) == 0 {
		return "none"
	}
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
