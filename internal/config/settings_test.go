package config

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	if settings.store != app.Preferences() {
		t.Error("Settings store should be the app preferences")
	}
}

func TestDownloadDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	dir := settings.GetDownloadDirectory()
	if dir == "" {
		t.Error("Download directory should not be empty")
	}

	customDir := "/custom/music"
	settings.SetDownloadDirectory(customDir)

	if got := settings.GetDownloadDirectory(); got != customDir {
		t.Errorf("Expected download directory %s, got %s", customDir, got)
	}
}

func TestEnsureDownloadDir(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	want := filepath.Join(t.TempDir(), "Music")
	settings.SetDownloadDirectory(want)

	got, err := settings.EnsureDownloadDir()
	if err != nil {
		t.Fatalf("EnsureDownloadDir() error = %v", err)
	}
	if got != want {
		t.Errorf("EnsureDownloadDir() = %s, want %s", got, want)
	}
	if info, err := os.Stat(want); err != nil || !info.IsDir() {
		t.Errorf("directory %s was not created", want)
	}
}

func TestThreads(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	if got := settings.GetThreads(); got != DefaultThreads {
		t.Errorf("Expected default threads %d, got %d", DefaultThreads, got)
	}

	settings.SetThreads(5)
	if got := settings.GetThreads(); got != 5 {
		t.Errorf("Expected threads 5, got %d", got)
	}

	settings.SetThreads(0)
	if settings.GetThreads() != 1 {
		t.Error("Threads should be clamped to minimum 1")
	}

	settings.SetThreads(15)
	if settings.GetThreads() != 10 {
		t.Error("Threads should be clamped to maximum 10")
	}
}

func TestFormatAndQuality(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	if settings.GetFormat() != DefaultFormat {
		t.Errorf("Expected default format %s, got %s", DefaultFormat, settings.GetFormat())
	}
	if err := settings.SetFormat("FLAC"); err != nil {
		t.Fatalf("SetFormat(FLAC) error = %v", err)
	}
	if settings.GetFormat() != "flac" {
		t.Errorf("Expected format flac, got %s", settings.GetFormat())
	}
	if err := settings.SetFormat("aiff"); err == nil {
		t.Error("SetFormat(aiff) should fail")
	}

	if settings.GetAudioQuality() != QualityHigh {
		t.Errorf("Expected default quality high, got %s", settings.GetAudioQuality())
	}
	if err := settings.SetAudioQuality(QualityLow); err != nil {
		t.Fatalf("SetAudioQuality(low) error = %v", err)
	}
	if settings.GetAudioQuality() != QualityLow {
		t.Errorf("Expected quality low, got %s", settings.GetAudioQuality())
	}
	if err := settings.SetAudioQuality("ultra"); err == nil {
		t.Error("SetAudioQuality(ultra) should fail")
	}
}

func TestBooleanDefaults(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"auto rename", settings.GetAutoRename(), DefaultAutoRename},
		{"album folders", settings.GetUseAlbumFolders(), DefaultUseAlbumFolders},
		{"normalize", settings.GetNormalizeAudio(), DefaultNormalizeAudio},
		{"lyrics", settings.GetEmbedLyrics(), DefaultEmbedLyrics},
		{"notify", settings.GetNotifyOnComplete(), DefaultNotifyOnComplete},
		{"duplicates", settings.GetCheckDuplicates(), DefaultCheckDuplicates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestAccentColor(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	if settings.GetAccentColor() != DefaultAccentColor {
		t.Errorf("Expected default accent %s, got %s", DefaultAccentColor, settings.GetAccentColor())
	}
	if err := settings.SetAccentColor("#FF8800"); err != nil {
		t.Fatalf("SetAccentColor error = %v", err)
	}
	if settings.GetAccentColor() != "#ff8800" {
		t.Errorf("Expected #ff8800, got %s", settings.GetAccentColor())
	}
	if err := settings.SetAccentColor("red"); err == nil {
		t.Error("SetAccentColor(red) should fail")
	}
}

func TestCacheSizeClamp(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	if settings.GetMaxCacheSizeMB() != DefaultMaxCacheSizeMB {
		t.Errorf("Expected default cache size %d, got %d", DefaultMaxCacheSizeMB, settings.GetMaxCacheSizeMB())
	}
	settings.SetMaxCacheSizeMB(1)
	if settings.GetMaxCacheSizeMB() != 50 {
		t.Errorf("cache size should clamp to 50, got %d", settings.GetMaxCacheSizeMB())
	}
}

func TestLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	if lang := settings.GetLanguage(); lang != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, lang)
	}

	settings.SetLanguage("ru")
	if got := settings.GetLanguage(); got != "ru" {
		t.Errorf("Expected language 'ru', got %s", got)
	}

	settings.SetLanguage("xx")
	if got := settings.GetLanguage(); got != DefaultLanguage {
		t.Errorf("unknown language should fall back to %s, got %s", DefaultLanguage, got)
	}
}

func TestGetLanguageOptions(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	options := settings.GetLanguageOptions()

	expectedLangs := []string{"en", "ru", "pt"}
	for _, lang := range expectedLangs {
		if _, exists := options[lang]; !exists {
			t.Errorf("Expected language option '%s' to exist", lang)
		}
	}

	if len(options) != len(expectedLangs) {
		t.Errorf("Expected %d language options, got %d", len(expectedLangs), len(options))
	}
}

func TestSnapshotApply(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	v := settings.Snapshot()
	v.Format = "ogg"
	v.Threads = 4
	v.AccentColor = "#123456"
	v.AutoRename = false
	if err := settings.Apply(v); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got := settings.Snapshot()
	if got.Format != "ogg" || got.Threads != 4 || got.AccentColor != "#123456" || got.AutoRename {
		t.Errorf("Snapshot after Apply = %+v", got)
	}

	bad := got
	bad.Format = "wma"
	bad.Threads = 9
	if err := settings.Apply(bad); err == nil {
		t.Fatal("Apply() with bad format should fail")
	}
	if settings.GetThreads() != 4 {
		t.Error("failed Apply must not write any value")
	}

	badLang := got
	badLang.Language = "xx"
	badLang.Threads = 2
	if err := settings.Apply(badLang); err == nil {
		t.Fatal("Apply() with unknown language should fail")
	}
	if settings.GetThreads() != 4 || settings.GetLanguage() != got.Language {
		t.Error("failed Apply must not write any value")
	}
}

func TestSet(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app.Preferences())

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"threads", KeyThreads, "6", false},
		{"threads not a number", KeyThreads, "six", true},
		{"format", KeyFormat, "m4a", false},
		{"bad format", KeyFormat, "mp2", true},
		{"bool yes", KeyCheckDuplicates, "no", false},
		{"bad bool", KeyAutoRename, "maybe", true},
		{"language", KeyLanguage, "pt", false},
		{"unknown key", "volume", "11", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := settings.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(%s, %s) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}

	if settings.GetThreads() != 6 || settings.GetFormat() != "m4a" || settings.GetCheckDuplicates() || settings.GetLanguage() != "pt" {
		t.Errorf("unexpected values after Set: %+v", settings.Snapshot())
	}
}
