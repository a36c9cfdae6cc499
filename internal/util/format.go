package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// videoExtensions is the set of container extensions the discovery and
// output-resolution helpers recognize.
var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".wmv": true, ".flv": true, ".webm": true,
}

// IsVideoFile reports whether path has a recognized video container extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// GetFilename returns the base filename of path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetFileSize returns the size in bytes of the file at path.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates dir (and parents) if it does not already exist.
func EnsureDirectory(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// ResolveOutputPath determines the output path for an input file.
// If override is non-empty it is used as the output filename; otherwise the
// input's base name is reused under outputDir with a "_watermarked" suffix
// and a ".mp4" extension, whatever the input's extension was.
func ResolveOutputPath(inputPath, outputDir, override string) string {
	if override != "" {
		return filepath.Join(outputDir, override)
	}
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(outputDir, fmt.Sprintf("%s_watermarked.mp4", name))
}

// CalculateSizeReduction returns the percentage size change from original to
// encoded (positive means smaller output). Returns 0 if original is 0.
func CalculateSizeReduction(original, encoded uint64) float64 {
	if original == 0 {
		return 0
	}
	return (1 - float64(encoded)/float64(original)) * 100
}

// FormatBytesReadable formats a byte count as a human-readable string.
func FormatBytesReadable(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := "KMGTPE"
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), units[exp])
}

// FormatDuration formats a duration given in seconds as HH:MM:SS.
func FormatDuration(seconds float64) string {
	return FormatDurationFromSecs(int64(seconds))
}

// FormatDurationFromSecs formats an integer number of seconds as HH:MM:SS.
func FormatDurationFromSecs(totalSecs int64) string {
	if totalSecs < 0 {
		totalSecs = 0
	}
	h := totalSecs / 3600
	m := (totalSecs % 3600) / 60
	s := totalSecs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
