package model

import (
	"fmt"
	"strings"
)

// ReservationActor is the party asking for a status change.
type ReservationActor string

const (
	ActorBooker ReservationActor = "booker"
	ActorOwner  ReservationActor = "owner"
)

type statusTransition struct {
	From  ReservationStatus
	To    ReservationStatus
	Actor ReservationActor
}

// canceled and completed are terminal.
var reservationTransitions = []statusTransition{
	{From: ReservationReserved, To: ReservationCanceled, Actor: ActorBooker},
	{From: ReservationReserved, To: ReservationCanceled, Actor: ActorOwner},
	{From: ReservationReserved, To: ReservationCompleted, Actor: ActorOwner},
}

var reservationTransitionSet = func() map[statusTransition]bool {
	m := make(map[statusTransition]bool, len(reservationTransitions))
	for _, t := range reservationTransitions {
		m[t] = true
	}
	return m
}()

// CanTransition reports whether actor may move a reservation from one status to another.
func CanTransition(from, to ReservationStatus, actor ReservationActor) error {
	if reservationTransitionSet[statusTransition{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("cannot change reservation from %s to %s as %s (allowed: %s)",
		from, to, actor, describeTransitionsFrom(from, actor))
}

func describeTransitionsFrom(from ReservationStatus, actor ReservationActor) string {
	var next []string
	for _, t := range reservationTransitions {
		if t.From == from && t.Actor == actor {
			next = append(next, string(t.To))
		}
	}
	if len(next) == 0 {
		return "none"
	}
	return strings.Join(next, ", ")
}
