package externals

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	sectionKeyPrefixConstant        = "external."
	keyValueSeparatorConstant       = "="
	keySegmentSeparatorConstant     = "."
	keyValueLineTemplateConstant    = "external.%s.%s = %s"
	pathSubkeyConstant              = "path"
	urlSubkeyConstant               = "url"
	branchSubkeyConstant            = "branch"
	commitSubkeyConstant            = "commit"
	commitHashLengthConstant        = 40
	configurationFileModeConstant   = 0o644
	missingSeparatorReasonConstant  = "missing key/value separator"
	missingPrefixReasonConstant     = "key does not start with \"external.\""
	unknownSubkeyReasonTemplate     = "unknown subkey %q"
	parseWarningTemplateConstant    = "%s:%d: %s: %q"
	declarationMissingTemplateConst = "no external named %q is declared"
)

// Declaration describes one external repository reference from the configuration file.
type Declaration struct {
	Name   string
	URL    string
	Path   string
	Branch string
	Commit string
}

// Target returns the declared branch or commit, whichever is set.
func (declaration Declaration) Target() string {
	if len(declaration.Commit) > 0 {
		return declaration.Commit
	}
	return declaration.Branch
}

// IsAmbiguous reports whether both a branch and a commit were declared.
func (declaration Declaration) IsAmbiguous() bool {
	return len(declaration.Branch) > 0 && len(declaration.Commit) > 0
}

// ParseWarning records a configuration line that could not be interpreted.
type ParseWarning struct {
	FilePath   string
	LineNumber int
	Line       string
	Reason     string
}

// String renders the warning for diagnostic output.
func (warning ParseWarning) String() string {
	return fmt.Sprintf(parseWarningTemplateConstant, warning.FilePath, warning.LineNumber, warning.Reason, warning.Line)
}

// DeclarationNotFoundError reports a lookup for an external that is not declared.
type DeclarationNotFoundError struct {
	Name string
}

// Error describes the missing declaration.
func (notFoundError DeclarationNotFoundError) Error() string {
	return fmt.Sprintf(declarationMissingTemplateConst, notFoundError.Name)
}

// Store reads and writes the external declarations file and the companion ignore-list file.
type Store struct {
	configurationFilePath string
	ignoreFilePath        string
}

// NewStore constructs a Store over the provided configuration and ignore-list file paths.
func NewStore(configurationFilePath string, ignoreFilePath string) *Store {
	return &Store{configurationFilePath: configurationFilePath, ignoreFilePath: ignoreFilePath}
}

// Load parses every declaration from the configuration file in first-appearance order.
// A missing file yields an empty list. Malformed lines are collected as warnings.
func (store *Store) Load() ([]Declaration, []ParseWarning, error) {
	fileContent, readError := os.ReadFile(store.configurationFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, readError
	}

	declarationsByName := map[string]*Declaration{}
	declarationOrder := []string{}
	parseWarnings := []ParseWarning{}

	for lineIndex, rawLine := range strings.Split(string(fileContent), "\n") {
		trimmedLine := strings.TrimSpace(rawLine)
		if len(trimmedLine) == 0 {
			continue
		}

		externalName, subkey, value, parseReason := parseDeclarationLine(trimmedLine)
		if len(parseReason) > 0 {
			parseWarnings = append(parseWarnings, ParseWarning{
				FilePath:   store.configurationFilePath,
				LineNumber: lineIndex + 1,
				Line:       trimmedLine,
				Reason:     parseReason,
			})
			continue
		}

		declaration, declarationKnown := declarationsByName[externalName]
		if !declarationKnown {
			declaration = &Declaration{Name: externalName}
			declarationsByName[externalName] = declaration
			declarationOrder = append(declarationOrder, externalName)
		}

		switch subkey {
		case pathSubkeyConstant:
			declaration.Path = value
		case urlSubkeyConstant:
			declaration.URL = value
		case branchSubkeyConstant:
			declaration.Branch = value
		case commitSubkeyConstant:
			declaration.Commit = value
		}
	}

	declarations := make([]Declaration, 0, len(declarationOrder))
	for _, externalName := range declarationOrder {
		declarations = append(declarations, *declarationsByName[externalName])
	}
	return declarations, parseWarnings, nil
}

// Find returns the declaration with the given name.
func (store *Store) Find(externalName string) (Declaration, error) {
	declarations, _, loadError := store.Load()
	if loadError != nil {
		return Declaration{}, loadError
	}
	for _, declaration := range declarations {
		if declaration.Name == externalName {
			return declaration, nil
		}
	}
	return Declaration{}, DeclarationNotFoundError{Name: externalName}
}

// Add upserts a declaration. Any existing section with the same name is removed first,
// so repeated calls with identical arguments leave a single section. The target is stored
// as a commit when it has the length of a full revision hash, as a branch otherwise.
// The declared path is appended to the ignore-list file as a literal line.
func (store *Store) Add(externalName string, remoteURL string, relativePath string, branchOrCommit string) error {
	retainedLines, readError := store.readConfigurationLinesExcluding(externalName)
	if readError != nil {
		return readError
	}

	targetSubkey := branchSubkeyConstant
	if len(branchOrCommit) == commitHashLengthConstant {
		targetSubkey = commitSubkeyConstant
	}

	retainedLines = append(retainedLines,
		fmt.Sprintf(keyValueLineTemplateConstant, externalName, urlSubkeyConstant, remoteURL),
		fmt.Sprintf(keyValueLineTemplateConstant, externalName, pathSubkeyConstant, relativePath),
		fmt.Sprintf(keyValueLineTemplateConstant, externalName, targetSubkey, branchOrCommit),
	)

	writeError := writeLines(store.configurationFilePath, retainedLines)
	if writeError != nil {
		return writeError
	}

	return store.appendIgnoreEntry(relativePath)
}

// Remove deletes the named declaration. The configuration file is removed entirely when no
// declarations remain, and lines exactly matching the declared path are stripped from the
// ignore-list file.
func (store *Store) Remove(externalName string) error {
	declaration, findError := store.Find(externalName)
	if findError != nil {
		return findError
	}

	retainedLines, readError := store.readConfigurationLinesExcluding(externalName)
	if readError != nil {
		return readError
	}

	if len(retainedLines) == 0 {
		removeError := os.Remove(store.configurationFilePath)
		if removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
			return removeError
		}
	} else {
		writeError := writeLines(store.configurationFilePath, retainedLines)
		if writeError != nil {
			return writeError
		}
	}

	return store.stripIgnoreEntry(declaration.Path)
}

func (store *Store) readConfigurationLinesExcluding(externalName string) ([]string, error) {
	fileContent, readError := os.ReadFile(store.configurationFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, readError
	}

	retainedLines := []string{}
	for _, rawLine := range strings.Split(string(fileContent), "\n") {
		trimmedLine := strings.TrimSpace(rawLine)
		if len(trimmedLine) == 0 {
			continue
		}
		// Names may contain dots, so a textual prefix match would also strip
		// siblings such as "deps/tool.wiki" when excluding "deps/tool". Parse
		// the key and compare the external name exactly.
		parsedName, _, _, parseReason := parseDeclarationLine(trimmedLine)
		if len(parseReason) == 0 && parsedName == externalName {
			continue
		}
		retainedLines = append(retainedLines, trimmedLine)
	}
	return retainedLines, nil
}

func (store *Store) appendIgnoreEntry(relativePath string) error {
	ignoreFile, openError := os.OpenFile(store.ignoreFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, configurationFileModeConstant)
	if openError != nil {
		return openError
	}
	defer ignoreFile.Close()

	_, writeError := ignoreFile.WriteString(relativePath + "\n")
	return writeError
}

func (store *Store) stripIgnoreEntry(relativePath string) error {
	fileContent, readError := os.ReadFile(store.ignoreFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil
		}
		return readError
	}

	retainedLines := []string{}
	for _, rawLine := range strings.Split(strings.TrimRight(string(fileContent), "\n"), "\n") {
		if rawLine == relativePath {
			continue
		}
		retainedLines = append(retainedLines, rawLine)
	}
	return writeLines(store.ignoreFilePath, retainedLines)
}

func parseDeclarationLine(configurationLine string) (string, string, string, string) {
	separatorIndex := strings.Index(configurationLine, keyValueSeparatorConstant)
	if separatorIndex < 0 {
		return "", "", "", missingSeparatorReasonConstant
	}

	fullKey := strings.TrimSpace(configurationLine[:separatorIndex])
	value := strings.TrimSpace(configurationLine[separatorIndex+len(keyValueSeparatorConstant):])

	if !strings.HasPrefix(fullKey, sectionKeyPrefixConstant) {
		return "", "", "", missingPrefixReasonConstant
	}

	sectionKey := strings.TrimPrefix(fullKey, sectionKeyPrefixConstant)
	subkeyIndex := strings.LastIndex(sectionKey, keySegmentSeparatorConstant)
	if subkeyIndex <= 0 {
		return "", "", "", fmt.Sprintf(unknownSubkeyReasonTemplate, sectionKey)
	}

	externalName := sectionKey[:subkeyIndex]
	subkey := sectionKey[subkeyIndex+1:]
	switch subkey {
	case pathSubkeyConstant, urlSubkeyConstant, branchSubkeyConstant, commitSubkeyConstant:
		return externalName, subkey, value, ""
	}
	return "", "", "", fmt.Sprintf(unknownSubkeyReasonTemplate, subkey)
}

func writeLines(filePath string, lines []string) error {
	if len(lines) == 0 {
		return os.WriteFile(filePath, []byte{}, configurationFileModeConstant)
	}
	return os.WriteFile(filePath, []byte(strings.Join(lines, "\n")+"\n"), configurationFileModeConstant)
}
