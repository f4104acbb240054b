package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// AppDirName is the per-user data directory name
const AppDirName = "mp3me"

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// AudioExtensions lists the extensions produced by downloads, with the dot
var AudioExtensions = []string{".mp3", ".flac", ".wav", ".ogg", ".m4a", ".opus", ".webm"}

// Partial download leftovers that must never be picked as a result file
var SkippedExtensions = []string{".part", ".ytdl", ".temp", ".tmp"}

// MaxNameDifference bounds truncated name matching
const MaxNameDifference = 10

// DefaultMusicDir returns ~/Music when it exists, ~/Downloads otherwise
func DefaultMusicDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "Music")
	}

	music := filepath.Join(home, "Music")
	if info, err := os.Stat(music); err == nil && info.IsDir() {
		return music
	}
	return filepath.Join(home, "Downloads")
}

// AppDataDir returns the per-user directory for settings, cache, database and logs
func AppDataDir() string {
	if runtime.GOOS == OSWindows {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName)
		}
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppDirName)
	}
	return filepath.Join(home, "."+AppDirName)
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("directory path is empty")
	}
	if info, err := os.Stat(dirPath); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dirPath)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dirPath, DefaultDirPermissions)
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// OpenFileInManager opens the containing folder and highlights the file when the platform allows it
func OpenFileInManager(filePath string) error {
	foundPath, err := FindFileWithFallback(filePath)
	if err != nil {
		// Folders of collections are opened directly
		if info, statErr := os.Stat(filePath); statErr == nil && info.IsDir() {
			return OpenFolder(filePath)
		}
		return fmt.Errorf("file does not exist: %w", err)
	}

	absPath, err := filepath.Abs(foundPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Start()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam+absPath).Start()
	default:
		return openFileInManagerLinux(absPath)
	}
}

func openFileInManagerLinux(filePath string) error {
	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err != nil {
			continue
		}
		if fm == "nautilus" || fm == "dolphin" || fm == "nemo" {
			return exec.Command(fm, "--select", filePath).Start()
		}
		return exec.Command(fm, filepath.Dir(filePath)).Start()
	}
	return exec.Command(XDGOpenCommand, filepath.Dir(filePath)).Start()
}

// OpenFolder opens a directory in the system file manager
func OpenFolder(dir string) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, absPath).Start()
	case OSWindows:
		return exec.Command(ExplorerCommand, absPath).Start()
	default:
		return exec.Command(XDGOpenCommand, absPath).Start()
	}
}

// OpenFileWithDefaultApp opens the file with the default system application
func OpenFileWithDefaultApp(filePath string) error {
	foundPath, err := FindFileWithFallback(filePath)
	if err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}

	absPath, err := filepath.Abs(foundPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, absPath).Start()
	case OSWindows:
		return exec.Command("cmd", "/c", "start", "", absPath).Start()
	default:
		return exec.Command(XDGOpenCommand, absPath).Start()
	}
}

// FindFileWithFallback returns filePath when it exists. Otherwise it looks in
// the same directory for the same base name with another audio extension
// (yt-dlp may keep the source container), then for a similar name.
func FindFileWithFallback(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path is empty")
	}
	if strings.HasPrefix(filePath, "http") {
		return "", fmt.Errorf("file path appears to be a URL: %s", filePath)
	}

	if FileExists(filePath) {
		return filePath, nil
	}

	dir := filepath.Dir(filePath)
	originalName := filepath.Base(filePath)
	baseName := strings.TrimSuffix(originalName, filepath.Ext(originalName))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var sameBase, similar []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if isSkipped(name) || !isAudioExt(ext) {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if base == baseName {
			sameBase = append(sameBase, filepath.Join(dir, name))
		} else if isSimilarFileName(base, baseName) {
			similar = append(similar, filepath.Join(dir, name))
		}
	}

	if len(sameBase) > 0 {
		sort.Strings(sameBase)
		return sameBase[0], nil
	}
	if len(similar) > 0 {
		sort.Slice(similar, func(i, j int) bool {
			infoI, _ := os.Stat(similar[i])
			infoJ, _ := os.Stat(similar[j])
			if infoI == nil || infoJ == nil {
				return similar[i] < similar[j]
			}
			return infoI.ModTime().After(infoJ.ModTime())
		})
		return similar[0], nil
	}

	return "", fmt.Errorf("file not found: %s", filePath)
}

// IsAudioFile reports whether path has one of the supported audio extensions
func IsAudioFile(path string) bool {
	return isAudioExt(strings.ToLower(filepath.Ext(path))) && !isSkipped(path)
}

func isAudioExt(ext string) bool {
	for _, e := range AudioExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func isSkipped(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// isSimilarFileName checks if two file names are similar enough to be considered the same file
func isSimilarFileName(name1, name2 string) bool {
	clean1 := strings.TrimSpace(name1)
	clean2 := strings.TrimSpace(name2)

	if clean1 == clean2 {
		return true
	}
	if clean1 == "" || clean2 == "" {
		return false
	}

	// yt-dlp restricted names swap spaces for underscores
	if strings.ReplaceAll(clean1, "_", " ") == strings.ReplaceAll(clean2, "_", " ") {
		return true
	}

	if strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1) {
		diff := len(clean1) - len(clean2)
		if diff < 0 {
			diff = -diff
		}
		return diff <= MaxNameDifference
	}

	return false
}
