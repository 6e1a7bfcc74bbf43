// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import "github.com/danielhkuo/curia/models"

// Outcome is the result of evaluating a vote set against a policy.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeApproved
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return models.StatusApproved
	case OutcomeRejected:
		return models.StatusRejected
	default:
		return models.StatusPending
	}
}

// Policy holds the resolution parameters for one suggestion type.
type Policy struct {
	// Quorum is the net vote margin that resolves a suggestion.
	Quorum int
}

// Decide computes the resolution outcome from a vote count.
//
// approve - reject >= Quorum resolves Approved; the symmetric negative
// margin resolves Rejected. Ties and sub-threshold counts stay Pending.
// Pure and deterministic: the resolver re-runs this after every vote.
func Decide(counts models.VoteCounts, policy Policy) Outcome {
	net := counts.Net()
	if net >= policy.Quorum {
		return OutcomeApproved
	}
	if -net >= policy.Quorum {
		return OutcomeRejected
	}
	return OutcomePending
}
