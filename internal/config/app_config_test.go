package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"pycrawl/internal/config"
)

func writeConfigFile(t *testing.T, path string, content string) {
	t.Helper()
	if mkdirError := os.MkdirAll(filepath.Dir(path), 0o755); mkdirError != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), mkdirError)
	}
	if writeError := os.WriteFile(path, []byte(content), 0o600); writeError != nil {
		t.Fatalf("write %s: %v", path, writeError)
	}
}

func TestLoadApplicationConfigurationMissingFilesYieldsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: t.TempDir(),
	})
	if loadError != nil {
		t.Fatalf("load: %v", loadError)
	}
	if configuration.Crawl.MapFile != "" || configuration.Crawl.Title != "" {
		t.Fatalf("expected zero configuration, got %+v", configuration.Crawl)
	}
}

func TestLoadApplicationConfigurationReadsLocalFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	writeConfigFile(t, filepath.Join(workingDirectory, config.ConfigFileName), `crawl:
  map_file: custom-map.txt
  log_file: custom.log
  title: Widgets
  exclude:
    - vendor
    - vendor
  tokens:
    enabled: true
    model: gpt-4o
`)

	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
	})
	if loadError != nil {
		t.Fatalf("load: %v", loadError)
	}
	crawlConfiguration := configuration.Crawl
	if crawlConfiguration.MapFile != "custom-map.txt" {
		t.Fatalf("unexpected map file: %q", crawlConfiguration.MapFile)
	}
	if crawlConfiguration.LogFile != "custom.log" {
		t.Fatalf("unexpected log file: %q", crawlConfiguration.LogFile)
	}
	if crawlConfiguration.Title != "Widgets" {
		t.Fatalf("unexpected title: %q", crawlConfiguration.Title)
	}
	if len(crawlConfiguration.Exclude) != 1 || crawlConfiguration.Exclude[0] != "vendor" {
		t.Fatalf("expected deduplicated excludes, got %v", crawlConfiguration.Exclude)
	}
	if crawlConfiguration.Tokens.Enabled == nil || !*crawlConfiguration.Tokens.Enabled {
		t.Fatalf("expected tokens enabled")
	}
	if crawlConfiguration.Tokens.Model != "gpt-4o" {
		t.Fatalf("unexpected token model: %q", crawlConfiguration.Tokens.Model)
	}
}

func TestLocalConfigurationOverridesGlobal(t *testing.T) {
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	writeConfigFile(t, filepath.Join(homeDirectory, ".config", "pycrawl", "config.yaml"), `crawl:
  title: Global Title
  map_file: global-map.txt
`)

	workingDirectory := t.TempDir()
	writeConfigFile(t, filepath.Join(workingDirectory, config.ConfigFileName), `crawl:
  title: Local Title
`)

	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
	})
	if loadError != nil {
		t.Fatalf("load: %v", loadError)
	}
	if configuration.Crawl.Title != "Local Title" {
		t.Fatalf("local title must win, got %q", configuration.Crawl.Title)
	}
	if configuration.Crawl.MapFile != "global-map.txt" {
		t.Fatalf("global map file must survive, got %q", configuration.Crawl.MapFile)
	}
}

func TestExplicitConfigurationPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	explicitPath := filepath.Join(workingDirectory, "alt.yaml")
	writeConfigFile(t, explicitPath, `crawl:
  title: Alternate
`)

	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: "alt.yaml",
	})
	if loadError != nil {
		t.Fatalf("load: %v", loadError)
	}
	if configuration.Crawl.Title != "Alternate" {
		t.Fatalf("unexpected title: %q", configuration.Crawl.Title)
	}
}
