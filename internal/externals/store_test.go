package externals_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/externals/internal/externals"
)

const (
	externalNameConstant  = "vendor/tool"
	remoteURLConstant     = "https://github.com/team/tool.git"
	relativePathConstant  = "vendor/tool"
	branchNameConstant    = "main"
	commitHashConstant    = "0123456789abcdef0123456789abcdef01234567"
	configurationFileName = ".gitexternals"
	ignoreListFileName    = ".gitignore"
)

func newTestStore(testInstance *testing.T) (*externals.Store, string, string) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, configurationFileName)
	ignoreFilePath := filepath.Join(temporaryDirectory, ignoreListFileName)
	return externals.NewStore(configurationFilePath, ignoreFilePath), configurationFilePath, ignoreFilePath
}

func TestStoreLoadMissingFileReturnsEmpty(testInstance *testing.T) {
	store, _, _ := newTestStore(testInstance)

	declarations, parseWarnings, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, declarations)
	require.Empty(testInstance, parseWarnings)
}

func TestStoreLoadToleratesInterleavedSectionsAndCollectsWarnings(testInstance *testing.T) {
	store, configurationFilePath, _ := newTestStore(testInstance)
	configurationContent := strings.Join([]string{
		"external.first.url = https://example.com/first.git",
		"external.second.path = libs/second",
		"external.first.path = libs/first",
		"this line has no separator",
		"external.second.url = https://example.com/second.git",
		"unrelated.key = value",
		"external.first.branch = main",
		"external.second.commit = " + commitHashConstant,
		"external.first.flavor = unexpected",
	}, "\n")
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o644))

	declarations, parseWarnings, loadError := store.Load()
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, []externals.Declaration{
		{Name: "first", URL: "https://example.com/first.git", Path: "libs/first", Branch: "main"},
		{Name: "second", URL: "https://example.com/second.git", Path: "libs/second", Commit: commitHashConstant},
	}, declarations)

	require.Len(testInstance, parseWarnings, 3)
	require.Equal(testInstance, 4, parseWarnings[0].LineNumber)
	require.Contains(testInstance, parseWarnings[0].Reason, "separator")
	require.Contains(testInstance, parseWarnings[1].Reason, "external.")
	require.Contains(testInstance, parseWarnings[2].Reason, "flavor")
}

func TestStoreAddRoundTrip(testInstance *testing.T) {
	testCases := []struct {
		name           string
		branchOrCommit string
		expectedBranch string
		expectedCommit string
	}{
		{
			name:           "short_target_stored_as_branch",
			branchOrCommit: branchNameConstant,
			expectedBranch: branchNameConstant,
		},
		{
			name:           "forty_character_target_stored_as_commit",
			branchOrCommit: commitHashConstant,
			expectedCommit: commitHashConstant,
		},
		{
			name:           "seven_character_abbreviation_stored_as_branch",
			branchOrCommit: commitHashConstant[:7],
			expectedBranch: commitHashConstant[:7],
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			store, _, _ := newTestStore(subtestInstance)

			require.NoError(subtestInstance, store.Add(externalNameConstant, remoteURLConstant, relativePathConstant, testCase.branchOrCommit))

			declarations, parseWarnings, loadError := store.Load()
			require.NoError(subtestInstance, loadError)
			require.Empty(subtestInstance, parseWarnings)
			require.Equal(subtestInstance, []externals.Declaration{
				{
					Name:   externalNameConstant,
					URL:    remoteURLConstant,
					Path:   relativePathConstant,
					Branch: testCase.expectedBranch,
					Commit: testCase.expectedCommit,
				},
			}, declarations)
		})
	}
}

func TestStoreAddIsIdempotentForDeclarations(testInstance *testing.T) {
	store, configurationFilePath, ignoreFilePath := newTestStore(testInstance)

	require.NoError(testInstance, store.Add(externalNameConstant, remoteURLConstant, relativePathConstant, branchNameConstant))
	firstContent, firstReadError := os.ReadFile(configurationFilePath)
	require.NoError(testInstance, firstReadError)

	require.NoError(testInstance, store.Add(externalNameConstant, remoteURLConstant, relativePathConstant, branchNameConstant))
	secondContent, secondReadError := os.ReadFile(configurationFilePath)
	require.NoError(testInstance, secondReadError)

	require.Equal(testInstance, string(firstContent), string(secondContent))

	ignoreContent, ignoreReadError := os.ReadFile(ignoreFilePath)
	require.NoError(testInstance, ignoreReadError)
	require.Equal(testInstance, relativePathConstant+"\n"+relativePathConstant+"\n", string(ignoreContent))
}

func TestStoreRemove(testInstance *testing.T) {
	store, configurationFilePath, ignoreFilePath := newTestStore(testInstance)
	require.NoError(testInstance, store.Add("first", "https://example.com/first.git", "libs/first", branchNameConstant))
	require.NoError(testInstance, store.Add("second", "https://example.com/second.git", "libs/second", branchNameConstant))

	require.NoError(testInstance, store.Remove("first"))

	declarations, _, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Len(testInstance, declarations, 1)
	require.Equal(testInstance, "second", declarations[0].Name)

	ignoreContent, ignoreReadError := os.ReadFile(ignoreFilePath)
	require.NoError(testInstance, ignoreReadError)
	require.Equal(testInstance, "libs/second\n", string(ignoreContent))

	require.NoError(testInstance, store.Remove("second"))
	_, statError := os.Stat(configurationFilePath)
	require.True(testInstance, os.IsNotExist(statError))
}

func TestStoreUpsertAndRemovePreserveDottedPrefixSiblings(testInstance *testing.T) {
	store, _, _ := newTestStore(testInstance)
	require.NoError(testInstance, store.Add("deps/tool.wiki", "https://example.com/tool.wiki.git", "deps/tool.wiki", branchNameConstant))
	require.NoError(testInstance, store.Add("deps/tool", "https://example.com/tool.git", "deps/tool", branchNameConstant))

	require.NoError(testInstance, store.Add("deps/tool", "https://example.com/tool.git", "deps/tool", commitHashConstant))

	declarations, _, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Len(testInstance, declarations, 2)

	require.NoError(testInstance, store.Remove("deps/tool"))

	declarations, _, loadError = store.Load()
	require.NoError(testInstance, loadError)
	require.Len(testInstance, declarations, 1)
	require.Equal(testInstance, externals.Declaration{
		Name:   "deps/tool.wiki",
		URL:    "https://example.com/tool.wiki.git",
		Path:   "deps/tool.wiki",
		Branch: branchNameConstant,
	}, declarations[0])
}

func TestStoreRemoveLastDeclarationEmptiesIgnoreFile(testInstance *testing.T) {
	store, _, ignoreFilePath := newTestStore(testInstance)
	require.NoError(testInstance, store.Add(externalNameConstant, remoteURLConstant, relativePathConstant, branchNameConstant))

	require.NoError(testInstance, store.Remove(externalNameConstant))

	ignoreContent, ignoreReadError := os.ReadFile(ignoreFilePath)
	require.NoError(testInstance, ignoreReadError)
	require.Empty(testInstance, string(ignoreContent))
}

func TestStoreRemoveUnknownDeclaration(testInstance *testing.T) {
	store, _, _ := newTestStore(testInstance)

	removeError := store.Remove("ghost")
	notFoundError := externals.DeclarationNotFoundError{}
	require.ErrorAs(testInstance, removeError, &notFoundError)
	require.Equal(testInstance, "ghost", notFoundError.Name)
}

func TestDeclarationHelpers(testInstance *testing.T) {
	branchDeclaration := externals.Declaration{Branch: branchNameConstant}
	commitDeclaration := externals.Declaration{Commit: commitHashConstant}
	ambiguousDeclaration := externals.Declaration{Branch: branchNameConstant, Commit: commitHashConstant}

	require.Equal(testInstance, branchNameConstant, branchDeclaration.Target())
	require.Equal(testInstance, commitHashConstant, commitDeclaration.Target())
	require.False(testInstance, branchDeclaration.IsAmbiguous())
	require.True(testInstance, ambiguousDeclaration.IsAmbiguous())
}
