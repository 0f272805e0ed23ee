package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"segue/internal/identity"
	"segue/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got %q", want, output)
	}
}

func TestNormalizeCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"normalize", "Show.Name.S02E05.1080p.WEB-DL.mkv"}, "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	requireContains(t, out, "Show Name")
	requireContains(t, out, "2")
	requireContains(t, out, "5")
}

func TestNormalizeCommandJSON(t *testing.T) {
	out, _, err := runCLI(t, []string{"normalize", "Show.Name.S02E05.mkv", "--json"}, "")
	if err != nil {
		t.Fatalf("normalize --json: %v", err)
	}
	requireContains(t, out, `"ShowName": "Show Name"`)
	requireContains(t, out, `"Season": 2`)
	requireContains(t, out, `"Episode": 5`)
}

func TestNormalizeCommandRejectsEmptyTitle(t *testing.T) {
	if _, _, err := runCLI(t, []string{"normalize", "   "}, ""); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestSubmitCommandValidatesBeforeNetwork(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCacheDisabled())
	configPath := testsupport.WriteConfig(t, cfg)

	// end before start never reaches the network.
	out, _, err := runCLI(t, []string{
		"submit", "--imdb", "tt0000001", "--season", "1", "--episode", "1",
		"--start", "5000", "--end", "3000",
	}, configPath)
	if err == nil {
		t.Fatal("expected submit to fail for inverted marker")
	}
	requireContains(t, out, "end marker must be after start marker")
}

func TestCacheCommandsRequireEnabledCache(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCacheDisabled())
	configPath := testsupport.WriteConfig(t, cfg)

	if _, _, err := runCLI(t, []string{"cache", "stats"}, configPath); err == nil {
		t.Fatal("expected cache stats to fail when cache disabled")
	}
}

func TestCacheStatsReflectsSeededRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := testsupport.WriteConfig(t, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	if err := store.PutIdentity(context.Background(), identity.Identity{
		RawTitle: "show.s01e01.mkv",
		ShowName: "Show",
		Season:   1,
		Episode:  1,
	}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	// Release the advisory lock so the CLI can open the same directory.
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err := runCLI(t, []string{"cache", "stats"}, configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Identities")
	requireContains(t, out, "1")
}

func TestCacheClearRequiresForce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := testsupport.WriteConfig(t, cfg)

	if _, _, err := runCLI(t, []string{"cache", "clear"}, configPath); err == nil {
		t.Fatal("expected clear without --force to fail")
	}

	out, _, err := runCLI(t, []string{"cache", "clear", "--force"}, configPath)
	if err != nil {
		t.Fatalf("cache clear --force: %v", err)
	}
	requireContains(t, out, "Cache cleared")
}

func TestConfigInit(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}
