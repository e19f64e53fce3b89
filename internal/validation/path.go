// Package validation checks the file paths handed to the renderer: the PNG
// output location, SVG inputs and local font sources.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ValidateOutputPath checks that outputPath is a .png file in an existing,
// writable directory and that it does not escape through "..".
func ValidateOutputPath(outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	cleanPath := filepath.Clean(outputPath)
	if hasTraversal(cleanPath) {
		return fmt.Errorf("path traversal detected in output path: %s", outputPath)
	}
	if ext := strings.ToLower(filepath.Ext(cleanPath)); ext != ".png" {
		return fmt.Errorf("output path must end in .png, got %q", filepath.Ext(cleanPath))
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	dir := filepath.Dir(absPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}
	if !dirInfo.IsDir() {
		return fmt.Errorf("output path parent is not a directory: %s", dir)
	}
	if existing, err := os.Stat(absPath); err == nil && existing.IsDir() {
		return fmt.Errorf("output path is a directory: %s", absPath)
	}

	// Check writability with a throwaway file
	testFile := filepath.Join(dir, ".svgraster_write_test")
	f, err := os.OpenFile(testFile, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("output directory is not writable: %s: %w", dir, err)
	}
	f.Close()
	os.Remove(testFile)

	return nil
}

// ValidateInputPath checks that inputPath exists and is a directory when
// mustBeDir is set, a regular file otherwise.
func ValidateInputPath(inputPath string, mustBeDir bool) error {
	if inputPath == "" {
		return fmt.Errorf("input path cannot be empty")
	}

	cleanPath := filepath.Clean(inputPath)

	// Absolute paths may contain ".." before cleaning; relative ones may not.
	if hasTraversal(cleanPath) && !filepath.IsAbs(inputPath) {
		return fmt.Errorf("potentially unsafe path detected: %s", inputPath)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input path does not exist: %s", cleanPath)
		}
		return fmt.Errorf("failed to access input path: %w", err)
	}

	if mustBeDir && !info.IsDir() {
		return fmt.Errorf("input path must be a directory: %s", cleanPath)
	}
	if !mustBeDir && info.IsDir() {
		return fmt.Errorf("input path must be a file: %s", cleanPath)
	}

	return nil
}

// ValidateFontSources checks local font files and directories up front.
// Remote (http/https) files are skipped. All problems are returned together.
func ValidateFontSources(files, dirs []string) error {
	var result *multierror.Error
	for _, f := range files {
		if strings.HasPrefix(f, "http://") || strings.HasPrefix(f, "https://") {
			continue
		}
		if err := ValidateInputPath(f, false); err != nil {
			result = multierror.Append(result, fmt.Errorf("font file: %w", err))
		}
	}
	for _, d := range dirs {
		if err := ValidateInputPath(d, true); err != nil {
			result = multierror.Append(result, fmt.Errorf("font dir: %w", err))
		}
	}
	return result.ErrorOrNil()
}

func hasTraversal(cleanPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
