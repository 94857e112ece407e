// Package source walks a repository tree and selects the files worth
// analysing: source code, configuration and documentation, minus
// binaries, build artifacts, secrets and test fixtures.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/oscalgen-cli/internal/logger"
)

// maxFileBytes skips files too large to be hand-written source.
const maxFileBytes = 1 << 20

// ignoredDirectories are path elements that never contain first-party
// source worth analysing.
var ignoredDirectories = map[string]bool{
	"node_modules": true, "vendor": true, "dist": true, "build": true,
	"target": true, ".git": true, ".svn": true, ".hg": true,
	".github": true, ".vscode": true, ".idea": true, ".vs": true,
	"coverage": true, ".nyc_output": true, "logs": true, "log": true,
	"__pycache__": true, ".venv": true, "venv": true,
}

// ignoredExtensions cover binaries, archives, media, lock files and
// key material. Key material is skipped so secrets never end up in an
// index or a prompt.
var ignoredExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".svg": true, ".ico": true, ".webp": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".zip": true, ".tar": true, ".gz": true, ".tgz": true, ".rar": true, ".7z": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wav": true,
	".log": true, ".tmp": true, ".cache": true, ".map": true, ".lock": true,
	".pem": true, ".key": true, ".crt": true, ".cer": true, ".der": true,
	".p12": true, ".pfx": true, ".jks": true, ".keystore": true,
	".gpg": true, ".asc": true, ".pgp": true,
	".pyc": true, ".idx": true, ".pack": true,
}

// ignoredNamePatterns skip generated fixtures and tool configs by
// filename substring.
var ignoredNamePatterns = []string{
	"test", "mock", "example", "sample",
	".golangci.yml", ".golangci.yaml", ".goreleaser.yml", ".goreleaser.yaml",
}

// languageByExtension maps source extensions to the language names the
// pattern rules understand.
var languageByExtension = map[string]string{
	".go":   "golang",
	".py":   "python",
	".java": "java",
	".c":    "cpp",
	".cc":   "cpp",
	".cpp":  "cpp",
	".h":    "cpp",
	".hpp":  "cpp",
	".cs":   "java",
}

// File is one selected repository file.
type File struct {
	// Path is the repository-relative path.
	Path string

	// AbsPath is the filesystem path.
	AbsPath string

	// Language names the detected source language, empty for config
	// and documentation files.
	Language string
}

// Language returns the rule-engine language name for a path, or the
// empty string for non-code files.
func Language(path string) string {
	return languageByExtension[strings.ToLower(filepath.Ext(path))]
}

// Ignore supplements the built-in ignore lists with run-specific
// entries, typically loaded from config.
type Ignore struct {
	// Dirs are additional directory names to skip.
	Dirs []string

	// Extensions are additional file extensions to skip, dot included.
	Extensions []string

	// NamePatterns are additional filename substrings to skip.
	NamePatterns []string
}

func (ig Ignore) skipDir(name string) bool {
	for _, d := range ig.Dirs {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

func (ig Ignore) skipFile(name string) bool {
	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)
	for _, e := range ig.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	for _, p := range ig.NamePatterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Walk returns every analysable file under root, repository-relative,
// in lexical order. Unreadable subtrees log and skip rather than fail
// the pass.
func Walk(root string) ([]File, error) {
	return WalkWith(root, Ignore{})
}

// WalkWith is Walk with extra ignore entries on top of the built-in
// lists.
func WalkWith(root string, extra Ignore) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && (ignoredDirectories[strings.ToLower(d.Name())] || extra.skipDir(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}

		if !Selectable(d.Name()) || extra.skipFile(d.Name()) {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > maxFileBytes {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, File{
			Path:     filepath.ToSlash(rel),
			AbsPath:  path,
			Language: Language(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk repository: %w", err)
	}

	return files, nil
}

// Selectable reports whether a filename survives the ignore lists.
func Selectable(name string) bool {
	lower := strings.ToLower(name)

	if strings.HasPrefix(lower, ".env") || strings.HasPrefix(lower, "id_rsa") ||
		strings.HasPrefix(lower, "id_ecdsa") || strings.HasPrefix(lower, "id_ed25519") {
		return false
	}
	if ignoredExtensions[strings.ToLower(filepath.Ext(lower))] {
		return false
	}
	if strings.Contains(lower, ".min.js") || strings.Contains(lower, ".min.css") {
		return false
	}
	for _, pattern := range ignoredNamePatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}

// ReadText reads a selected file and rejects content that is not valid
// UTF-8 text.
func ReadText(f File) (string, error) {
	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not text", f.Path)
	}
	return string(data), nil
}
