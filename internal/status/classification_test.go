package status_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/externals/internal/externals"
	"github.com/temirov/externals/internal/gitrepo"
	"github.com/temirov/externals/internal/status"
)

const (
	declaredURLConstant    = "https://github.com/team/tool.git"
	pinnedCommitConstant   = "0123456789abcdef0123456789abcdef01234567"
	declaredBranchConstant = "main"
)

func TestClassify(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		declaration            externals.Declaration
		probedState            status.ProbedState
		expectedClassification status.Classification
	}{
		{
			name:                   "ambiguous_declaration_broken_regardless_of_state",
			declaration:            externals.Declaration{URL: declaredURLConstant, Branch: declaredBranchConstant, Commit: pinnedCommitConstant},
			probedState:            status.ProbedState{Exists: true, CurrentBranch: declaredBranchConstant, RemoteURL: declaredURLConstant},
			expectedClassification: status.Classification{State: status.StateBroken, Reason: status.ReasonAmbiguousDefinition},
		},
		{
			name:                   "missing_repository_uninitialized",
			declaration:            externals.Declaration{URL: declaredURLConstant, Branch: declaredBranchConstant},
			probedState:            status.ProbedState{Exists: false},
			expectedClassification: status.Classification{State: status.StateUninitialized},
		},
		{
			name:        "url_mismatch_overrides_branch_match",
			declaration: externals.Declaration{URL: declaredURLConstant, Branch: declaredBranchConstant},
			probedState: status.ProbedState{Exists: true, CurrentBranch: declaredBranchConstant, RemoteURL: "https://github.com/fork/tool.git"},
			expectedClassification: status.Classification{
				State:    status.StateBroken,
				Reason:   status.ReasonURLMismatch,
				Actual:   "https://github.com/fork/tool.git",
				Expected: declaredURLConstant,
			},
		},
		{
			name:        "clean_branch_match_ok",
			declaration: externals.Declaration{URL: declaredURLConstant, Branch: declaredBranchConstant},
			probedState: status.ProbedState{
				Exists:        true,
				CurrentBranch: declaredBranchConstant,
				RemoteURL:     declaredURLConstant,
				Divergence:    gitrepo.UpstreamDivergence{Known: true},
			},
			expectedClassification: status.Classification{State: status.StateOk, Divergence: gitrepo.UpstreamDivergence{Known: true}},
		},
		{
			name:        "branch_mismatch_broken",
			declaration: externals.Declaration{URL: declaredURLConstant, Branch: declaredBranchConstant},
			probedState: status.ProbedState{Exists: true, CurrentBranch: "dev", RemoteURL: declaredURLConstant},
			expectedClassification: status.Classification{
				State:    status.StateBroken,
				Reason:   status.ReasonUnexpectedBranch,
				Actual:   "dev",
				Expected: declaredBranchConstant,
			},
		},
		{
			name:        "commit_match_ok_while_detached",
			declaration: externals.Declaration{URL: declaredURLConstant, Commit: pinnedCommitConstant},
			probedState: status.ProbedState{
				Exists:          true,
				CurrentBranch:   gitrepo.DetachedBranchName,
				CurrentRevision: pinnedCommitConstant,
				RemoteURL:       declaredURLConstant,
			},
			expectedClassification: status.Classification{State: status.StateOk},
		},
		{
			name:        "commit_mismatch_broken",
			declaration: externals.Declaration{URL: declaredURLConstant, Commit: pinnedCommitConstant},
			probedState: status.ProbedState{
				Exists:          true,
				CurrentBranch:   gitrepo.DetachedBranchName,
				CurrentRevision: "fedcba9876543210fedcba9876543210fedcba98",
				RemoteURL:       declaredURLConstant,
			},
			expectedClassification: status.Classification{
				State:    status.StateBroken,
				Reason:   status.ReasonUnexpectedCommit,
				Actual:   "fedcba9876543210fedcba9876543210fedcba98",
				Expected: pinnedCommitConstant,
			},
		},
		{
			name:        "dirty_and_diverged_annotations_carried_on_ok",
			declaration: externals.Declaration{URL: declaredURLConstant, Branch: declaredBranchConstant},
			probedState: status.ProbedState{
				Exists:        true,
				CurrentBranch: declaredBranchConstant,
				RemoteURL:     declaredURLConstant,
				IsDirty:       true,
				HasUntracked:  true,
				Divergence:    gitrepo.UpstreamDivergence{Behind: 2, Ahead: 1, Known: true},
			},
			expectedClassification: status.Classification{
				State:        status.StateOk,
				IsDirty:      true,
				HasUntracked: true,
				Divergence:   gitrepo.UpstreamDivergence{Behind: 2, Ahead: 1, Known: true},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			classification := status.Classify(testCase.declaration, testCase.probedState)
			require.Equal(subtestInstance, testCase.expectedClassification, classification)
		})
	}
}

func TestSummaryRecordAndHealth(testInstance *testing.T) {
	summary := status.Summary{}
	summary.Record(status.Classification{State: status.StateOk})
	summary.Record(status.Classification{State: status.StateUninitialized})
	require.True(testInstance, summary.Healthy())

	summary.Record(status.Classification{State: status.StateBroken})
	require.False(testInstance, summary.Healthy())
	require.Equal(testInstance, status.Summary{OkCount: 1, BrokenCount: 1, UninitializedCount: 1}, summary)
}
