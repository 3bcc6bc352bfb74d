package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
	tu "github.com/desertthunder/mixtape/internal/testing"
)

func setupTestStore(t *testing.T) *repositories.Store {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return repositories.NewStore(db)
}

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer, *repositories.Store) {
	t.Helper()
	output := &bytes.Buffer{}
	store := setupTestStore(t)
	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Store:  store,
		Files:  tu.NewMockStorage(),
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: output,
	})
	return runner, output, store
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return r.app().Run(context.Background(), append([]string{"mixtape"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			files := tu.NewMockStorage()

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Files:  files,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.files != files {
				t.Error("expected files to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("reads the config flag", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("[database]\npath = \"custom.db\"\n[server]\nsession_secret = \"s\"\n[storage]\nbackend = \"local\"\nlocal_dir = \"up\"\n"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{ConfigPath: path, Output: &bytes.Buffer{}})
			config, err := runner.loadConfig(&cli.Command{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if os.Getenv("MIXTAPE_DATABASE_PATH") == "" && config.Database.Path != "custom.db" {
				t.Errorf("expected custom.db, got %s", config.Database.Path)
			}
		})

		t.Run("falls back to defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: filepath.Join(t.TempDir(), "missing.toml"), Output: &bytes.Buffer{}})

			config, err := runner.loadConfig(&cli.Command{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Storage.Backend == "" {
				t.Error("expected default storage backend")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("verbose", func(t *testing.T) {
		for _, tc := range []struct {
			args []string
			want log.Level
		}{
			{args: []string{"users", "list"}, want: log.InfoLevel},
			{args: []string{"--verbose", "users", "list"}, want: log.DebugLevel},
		} {
			runner := NewRunner(RunnerOpts{
				Store:  setupTestStore(t),
				Logger: shared.NewLogger(&bytes.Buffer{}),
				Output: &bytes.Buffer{},
			})
			if err := run(t, runner, tc.args...); err != nil {
				t.Fatalf("%v failed: %v", tc.args, err)
			}
			if got := runner.logger.GetLevel(); got != tc.want {
				t.Errorf("%v: expected level %v, got %v", tc.args, tc.want, got)
			}
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"serve", "setup", "users", "tracks", "playlists", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("expected command %d to be %s, got %s", i, name, commands[i].Name)
			}
		}
	})
}

func TestSetupCommands(t *testing.T) {
	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "mixtape.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(&bytes.Buffer{})})

	if err := run(t, runner, "setup", "database"); err != nil {
		t.Fatalf("setup database failed: %v", err)
	}
	if !strings.Contains(output.String(), "applied") {
		t.Errorf("expected applied migrations, got %q", output.String())
	}
	tu.AssertFileExists(t, config.Database.Path)

	output.Reset()
	if err := run(t, runner, "setup", "database"); err != nil {
		t.Fatalf("second setup failed: %v", err)
	}
	if !strings.Contains(output.String(), "up to date") {
		t.Errorf("expected up to date, got %q", output.String())
	}

	output.Reset()
	if err := run(t, runner, "setup", "rollback"); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if !strings.Contains(output.String(), "rolled back migration") {
		t.Errorf("expected rollback message, got %q", output.String())
	}
}

func TestLibraryCommands(t *testing.T) {
	t.Run("UsersAdd", func(t *testing.T) {
		runner, output, store := newTestRunner(t)

		err := run(t, runner, "users", "add", "--name", "Demo", "--email", "Demo@Example.com", "--password", "password")
		if err != nil {
			t.Fatalf("users add failed: %v", err)
		}
		if !strings.Contains(output.String(), "demo@example.com") {
			t.Errorf("expected created user in output, got %q", output.String())
		}

		if _, err := store.Repos().Users.GetByEmail(context.Background(), "demo@example.com"); err != nil {
			t.Errorf("expected user to be stored: %v", err)
		}
	})

	t.Run("UsersAddInvalid", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)

		err := run(t, runner, "users", "add", "--name", "Demo", "--email", "nope", "--password", "password")
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(output.String(), "email:") {
			t.Errorf("expected field errors in output, got %q", output.String())
		}
	})

	t.Run("UsersList", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		run(t, runner, "users", "add", "--name", "Demo", "--email", "demo@example.com", "--password", "pw", "--artist")
		output.Reset()

		if err := run(t, runner, "users", "list", "--json", "--pretty=false"); err != nil {
			t.Fatalf("users list failed: %v", err)
		}
		if !strings.Contains(output.String(), `"isArtist":true`) {
			t.Errorf("expected artist flag in JSON, got %q", output.String())
		}
	})

	t.Run("TracksAddAndList", func(t *testing.T) {
		runner, output, store := newTestRunner(t)
		run(t, runner, "users", "add", "--name", "The Wanderers", "--email", "band@example.com", "--password", "pw")

		err := run(t, runner, "tracks", "add", "--artist", "band@example.com", "--album", "Highway",
			"--name", "Open Road", "--duration", "215", "--file", "open-road.mp3")
		if err != nil {
			t.Fatalf("tracks add failed: %v", err)
		}

		artist, _ := store.Repos().Users.GetByEmail(context.Background(), "band@example.com")
		if !artist.IsArtist {
			t.Error("expected the user to become an artist")
		}

		output.Reset()
		if err := run(t, runner, "tracks", "list", "--artist", "band@example.com"); err != nil {
			t.Fatalf("tracks list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Open Road [3:35]") {
			t.Errorf("expected track in listing, got %q", output.String())
		}
	})

	t.Run("TracksAddUnknownArtist", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := run(t, runner, "tracks", "add", "--artist", "ghost@example.com", "--album", "A",
			"--name", "B", "--duration", "10", "--file", "b.mp3")
		if err == nil {
			t.Fatal("expected error for unknown artist")
		}
	})
}

func seedPlaylist(t *testing.T, store *repositories.Store) *models.Playlist {
	t.Helper()
	ctx := context.Background()
	repos := store.Repos()

	owner := models.NewUser(0, "owner@example.com", "Owner")
	artist := models.NewUser(0, "band@example.com", "The Wanderers")
	artist.IsArtist = true
	for _, u := range []*models.User{owner, artist} {
		if err := repos.Users.Create(ctx, u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	album := models.NewAlbum(0, artist.ID(), "Highway")
	if err := repos.Albums.Create(ctx, album); err != nil {
		t.Fatalf("failed to create album: %v", err)
	}
	track := models.NewTrack(0, artist.ID(), album.ID(), "Open Road", 215, "open-road.mp3")
	if err := repos.Tracks.Create(ctx, track); err != nil {
		t.Fatalf("failed to create track: %v", err)
	}

	playlist := models.NewPlaylist(0, owner.ID(), "Road Trip", false)
	if err := repos.Playlists.Create(ctx, playlist); err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	if err := repos.PlaylistTracks.Add(ctx, models.NewPlaylistTrack(playlist.ID(), track.ID())); err != nil {
		t.Fatalf("failed to add track: %v", err)
	}
	return playlist
}

func TestPlaylistCommands(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		runner, output, store := newTestRunner(t)
		seedPlaylist(t, store)

		if err := run(t, runner, "playlists", "list", "--user", "owner@example.com"); err != nil {
			t.Fatalf("playlists list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Road Trip") || !strings.Contains(output.String(), "1 tracks") {
			t.Errorf("unexpected listing %q", output.String())
		}
	})

	t.Run("ListUnknownUser", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := run(t, runner, "playlists", "list", "--user", "ghost@example.com")
		if err == nil || !strings.Contains(err.Error(), "ghost@example.com") {
			t.Errorf("expected unknown user error, got %v", err)
		}
	})

	tests := []struct {
		format string
		file   string
		want   string
	}{
		{format: "csv", file: "road_tracks.csv", want: "1,"},
		{format: "markdown", file: filepath.Join("road", "README.md"), want: "1. The Wanderers - Open Road (Highway) [3:35]"},
		{format: "text", file: "road", want: "1. The Wanderers - Open Road"},
	}

	for _, tt := range tests {
		t.Run("Export"+tt.format, func(t *testing.T) {
			runner, _, store := newTestRunner(t)
			playlist := seedPlaylist(t, store)
			dir := t.TempDir()

			err := run(t, runner, "playlists", "export", "--id", playlist.ID(), "--format", tt.format,
				"--output", filepath.Join(dir, "road"))
			if err != nil {
				t.Fatalf("export failed: %v", err)
			}

			content := tu.MustReadFile(t, filepath.Join(dir, tt.file))
			if !strings.Contains(content, tt.want) {
				t.Errorf("expected %q in export, got:\n%s", tt.want, content)
			}
		})
	}

	t.Run("ExportAll", func(t *testing.T) {
		runner, output, store := newTestRunner(t)
		playlist := seedPlaylist(t, store)
		dir := filepath.Join(t.TempDir(), "all")

		err := run(t, runner, "playlists", "export", "--all", "--user", "owner@example.com", "--format", "json", "--output", dir)
		if err != nil {
			t.Fatalf("bulk export failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, playlist.ID()+".json"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(output.String(), "exported 1/1 playlists") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("ExportRequiresTarget", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := run(t, runner, "playlists", "export"); err == nil {
			t.Error("expected missing argument error")
		}
		if err := run(t, runner, "playlists", "export", "--id", "x", "--format", "json"); err == nil {
			t.Error("expected json to require --all")
		}
	})

	t.Run("ExportUnknownFormat", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := run(t, runner, "playlists", "export", "--id", "x", "--format", "xml")
		if err == nil || !strings.Contains(err.Error(), "unknown export format") {
			t.Errorf("expected format error, got %v", err)
		}
	})

	t.Run("ExportMissingPlaylist", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := run(t, runner, "playlists", "export", "--id", "missing"); err == nil {
			t.Error("expected not found error")
		}
	})
}
