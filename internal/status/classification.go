package status

import (
	"github.com/temirov/externals/internal/externals"
	"github.com/temirov/externals/internal/gitrepo"
)

// State enumerates the reconciliation outcomes for a declared external.
type State string

// Supported classification states.
const (
	StateOk            State = "ok"
	StateBroken        State = "broken"
	StateUninitialized State = "uninitialized"
)

// Broken reasons reported alongside StateBroken.
const (
	ReasonAmbiguousDefinition = "ambiguous definition"
	ReasonURLMismatch         = "URL mismatch"
	ReasonUnexpectedBranch    = "unexpected branch"
	ReasonUnexpectedCommit    = "unexpected commit"
)

// ProbedState captures the observed on-disk repository state for one external.
type ProbedState struct {
	Exists          bool
	CurrentBranch   string
	CurrentRevision string
	RemoteURL       string
	IsDirty         bool
	HasUntracked    bool
	Divergence      gitrepo.UpstreamDivergence
}

// Classification is the reconciliation result for one declaration.
type Classification struct {
	State        State
	Reason       string
	Actual       string
	Expected     string
	IsDirty      bool
	HasUntracked bool
	Divergence   gitrepo.UpstreamDivergence
}

// Summary aggregates classification counts across a run.
type Summary struct {
	OkCount            int
	BrokenCount        int
	UninitializedCount int
}

// Healthy reports whether the run found no broken externals.
// Uninitialized entries do not count as failures.
func (summary Summary) Healthy() bool {
	return summary.BrokenCount == 0
}

// Record tallies one classification into the summary.
func (summary *Summary) Record(classification Classification) {
	switch classification.State {
	case StateOk:
		summary.OkCount++
	case StateBroken:
		summary.BrokenCount++
	case StateUninitialized:
		summary.UninitializedCount++
	}
}

// Classify reconciles one declaration against its probed repository state.
// The function is pure: it inspects its inputs and mutates nothing.
func Classify(declaration externals.Declaration, probedState ProbedState) Classification {
	if declaration.IsAmbiguous() {
		return Classification{State: StateBroken, Reason: ReasonAmbiguousDefinition}
	}

	if !probedState.Exists {
		return Classification{State: StateUninitialized}
	}

	if probedState.RemoteURL != declaration.URL {
		return Classification{
			State:    StateBroken,
			Reason:   ReasonURLMismatch,
			Actual:   probedState.RemoteURL,
			Expected: declaration.URL,
		}
	}

	branchMatches := len(declaration.Branch) > 0 && declaration.Branch == probedState.CurrentBranch
	commitMatches := len(declaration.Commit) > 0 && declaration.Commit == probedState.CurrentRevision
	if branchMatches || commitMatches {
		return Classification{
			State:        StateOk,
			IsDirty:      probedState.IsDirty,
			HasUntracked: probedState.HasUntracked,
			Divergence:   probedState.Divergence,
		}
	}

	if len(declaration.Commit) > 0 {
		return Classification{
			State:    StateBroken,
			Reason:   ReasonUnexpectedCommit,
			Actual:   probedState.CurrentRevision,
			Expected: declaration.Commit,
		}
	}
	return Classification{
		State:    StateBroken,
		Reason:   ReasonUnexpectedBranch,
		Actual:   probedState.CurrentBranch,
		Expected: declaration.Branch,
	}
}
