package cli

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"pycrawl/internal/config"
)

func TestResolveCrawlSettingsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	changeWorkingDirectory(t, t.TempDir())

	crawlCommand := newCrawlCommand(zap.NewNop())
	settings, settingsError := resolveCrawlSettings(crawlCommand, nil)
	if settingsError != nil {
		t.Fatalf("resolve: %v", settingsError)
	}
	if settings.rootPath != defaultPath {
		t.Fatalf("unexpected default root: %q", settings.rootPath)
	}
	if settings.mapPath != "MAP.txt" || settings.logPath != "Crawl.log" {
		t.Fatalf("unexpected artifact names: %q %q", settings.mapPath, settings.logPath)
	}
	if settings.printStdout || settings.copyToClip || settings.countTokens || settings.openMap {
		t.Fatalf("optional actions must default off: %+v", settings)
	}
}

func TestResolveCrawlSettingsFlagsOverrideConfiguration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	configContent := `crawl:
  map_file: config-map.txt
  title: Config Title
  exclude:
    - vendor
`
	configPath := filepath.Join(workingDirectory, config.ConfigFileName)
	if writeError := os.WriteFile(configPath, []byte(configContent), 0o600); writeError != nil {
		t.Fatalf("write config: %v", writeError)
	}
	changeWorkingDirectory(t, workingDirectory)

	crawlCommand := newCrawlCommand(zap.NewNop())
	if setError := crawlCommand.Flags().Set(mapFlagName, "flag-map.txt"); setError != nil {
		t.Fatalf("set map flag: %v", setError)
	}
	if setError := crawlCommand.Flags().Set(exclusionFlagName, "build"); setError != nil {
		t.Fatalf("set exclusion flag: %v", setError)
	}

	settings, settingsError := resolveCrawlSettings(crawlCommand, []string{"/src/proj"})
	if settingsError != nil {
		t.Fatalf("resolve: %v", settingsError)
	}
	if settings.rootPath != "/src/proj" {
		t.Fatalf("unexpected root: %q", settings.rootPath)
	}
	if settings.mapPath != "flag-map.txt" {
		t.Fatalf("flag must override configured map file, got %q", settings.mapPath)
	}
	if settings.title != "Config Title" {
		t.Fatalf("configured title must survive, got %q", settings.title)
	}
	if len(settings.exclude) != 2 || settings.exclude[0] != "vendor" || settings.exclude[1] != "build" {
		t.Fatalf("expected merged excludes, got %v", settings.exclude)
	}
}

func changeWorkingDirectory(t *testing.T, directory string) {
	t.Helper()
	previousDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		t.Fatalf("getwd: %v", getwdError)
	}
	if chdirError := os.Chdir(directory); chdirError != nil {
		t.Fatalf("chdir: %v", chdirError)
	}
	t.Cleanup(func() {
		_ = os.Chdir(previousDirectory)
	})
}
