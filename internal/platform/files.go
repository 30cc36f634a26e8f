package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// File length thresholds
const (
	MinFileNameLength    = 10
	MediumFileNameLength = 15
	LongFileNameLength   = 20
	MaxNameDifference    = 10
	MaxFileNameBytes     = 200
)

// Scoring system constants
const (
	ScoreForLongName    = 3
	ScoreForMediumName  = 2
	ScoreForShortName   = 1
	ScoreForSpaces      = 2
	ScoreForUnderscores = 1
	ScoreForHyphens     = 1
	ScoreForAudioWords  = 2
)

// Audio-related words for file detection
var (
	AudioRelatedWords = []string{"music", "song", "track", "mix", "album", "live", "remix", "official", "audio"}
)

// File extensions left behind by interrupted or intermediate downloads
var (
	SkippedExtensions = []string{".part", ".ytdl", ".temp", ".tmp"}
)

// Characters that are not allowed in file names on common filesystems
var unsafeFileNameChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "'", "<", "_", ">", "_", "|", "_", "\x00", "",
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dirPath)
	}
	return nil
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ClearDirectory removes every regular file directly inside dirPath.
// Sub-directories are left untouched and the directory itself is kept.
// Failures are collected per file; the function never stops at the first one.
func ClearDirectory(dirPath string) []error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return []error{fmt.Errorf("read directory %s: %w", dirPath, err)}
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dirPath, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errs
}

// CountFiles returns the number of regular files directly inside dirPath
func CountFiles(dirPath string) (int, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			n++
		}
	}
	return n, nil
}

// SanitizeFileName replaces characters that cannot appear in a file name and
// cuts the result to MaxFileNameBytes on a rune boundary. The caller appends
// the extension.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(unsafeFileNameChars.Replace(name))
	name = strings.Trim(name, ".")
	if len(name) > MaxFileNameBytes {
		limit := MaxFileNameBytes
		for limit > 0 && !utf8.RuneStart(name[limit]) {
			limit--
		}
		name = strings.TrimRight(strings.TrimSpace(name[:limit]), ".")
	}
	if name == "" {
		return "audio"
	}
	return name
}

// ReplaceExtension swaps the extension of path for ext (".mp3")
func ReplaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// FindFileWithFallback tries to find a file by its original path, and if not found,
// searches for files with similar names in the same directory
func FindFileWithFallback(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path is empty")
	}

	if strings.HasPrefix(filePath, "http") {
		return "", fmt.Errorf("file path appears to be a URL: %s", filePath)
	}

	if !strings.Contains(filePath, "/") && !strings.Contains(filePath, "\\") {
		return "", fmt.Errorf("file path does not contain path separators: %s", filePath)
	}

	if FileExists(filePath) {
		return filePath, nil
	}

	dir := filepath.Dir(filePath)
	originalName := filepath.Base(filePath)
	originalExt := filepath.Ext(originalName)
	baseName := strings.TrimSuffix(originalName, originalExt)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var candidates []string
	var fallbackCandidates []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		entryName := entry.Name()
		entryExt := filepath.Ext(entryName)
		entryBase := strings.TrimSuffix(entryName, entryExt)

		if entryExt != originalExt {
			continue
		}

		if isSimilarFileName(entryBase, baseName) {
			candidates = append(candidates, filepath.Join(dir, entryName))
		}

		// Only files with the exact same extension are considered
		if isLikelyDownloadedFile(entryName) {
			fallbackCandidates = append(fallbackCandidates, filepath.Join(dir, entryName))
		}
	}

	if len(candidates) > 0 {
		sort.Strings(candidates)
		return candidates[0], nil
	}

	// A workspace holds at most one finished file per request
	if len(fallbackCandidates) == 1 {
		return fallbackCandidates[0], nil
	}

	if len(fallbackCandidates) > 1 {
		sort.Slice(fallbackCandidates, func(i, j int) bool {
			scoreI := getDescriptiveScore(filepath.Base(fallbackCandidates[i]))
			scoreJ := getDescriptiveScore(filepath.Base(fallbackCandidates[j]))
			if scoreI != scoreJ {
				return scoreI > scoreJ
			}

			infoI, _ := os.Stat(fallbackCandidates[i])
			infoJ, _ := os.Stat(fallbackCandidates[j])
			if infoI == nil || infoJ == nil {
				return false
			}
			return infoI.ModTime().After(infoJ.ModTime())
		})
		return fallbackCandidates[0], nil
	}

	return "", fmt.Errorf("file not found: %s", filePath)
}

// isSimilarFileName checks if two file names are similar enough to be considered the same file.
// yt-dlp may substitute characters (e.g. with restricted file names) or truncate long titles.
func isSimilarFileName(name1, name2 string) bool {
	clean1 := strings.TrimSpace(name1)
	clean2 := strings.TrimSpace(name2)

	if clean1 == clean2 {
		return true
	}

	variations := []string{
		"-" + clean1,
		clean1 + "-",
		"_" + clean1,
		clean1 + "_",
		" " + clean1,
	}
	for _, variation := range variations {
		if clean2 == variation {
			return true
		}
	}

	if strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1) {
		diff := len(clean1) - len(clean2)
		if diff < 0 {
			diff = -diff
		}
		if diff <= MaxNameDifference {
			return true
		}
	}

	return false
}

// isLikelyDownloadedFile checks if a filename looks like it could be a finished download
func isLikelyDownloadedFile(filename string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(filename, ext) {
			return false
		}
	}

	// Anything else with a real name is a candidate; the extension filter
	// in FindFileWithFallback does the heavy lifting.
	return len(strings.TrimSuffix(filename, filepath.Ext(filename))) > 0
}

// getDescriptiveScore calculates a score indicating how descriptive a filename is
func getDescriptiveScore(filename string) int {
	score := 0

	if len(filename) > LongFileNameLength {
		score += ScoreForLongName
	} else if len(filename) > MediumFileNameLength {
		score += ScoreForMediumName
	} else if len(filename) > MinFileNameLength {
		score += ScoreForShortName
	}

	if strings.Contains(filename, " ") {
		score += ScoreForSpaces
	}
	if strings.Contains(filename, "_") {
		score += ScoreForUnderscores
	}
	if strings.Contains(filename, "-") {
		score += ScoreForHyphens
	}

	lower := strings.ToLower(filename)
	for _, word := range AudioRelatedWords {
		if strings.Contains(lower, word) {
			score += ScoreForAudioWords
			break
		}
	}

	return score
}
