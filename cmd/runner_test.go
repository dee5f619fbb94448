package main

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pirtoo/extunes/internal/shared"
	tu "github.com/pirtoo/extunes/internal/testing"
)

const fixtureXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Major Version</key><integer>1</integer>
	<key>Minor Version</key><integer>1</integer>
	<key>Music Folder</key><string>file://localhost/Users/pir/Music/iTunes/iTunes%20Media/</string>
	<key>Tracks</key>
	<dict>
		<key>1001</key>
		<dict>
			<key>Track ID</key><integer>1001</integer>
			<key>Size</key><integer>4194304</integer>
			<key>Kind</key><string>MPEG audio file</string>
			<key>Location</key><string>file://localhost/Users/pir/Music/iTunes/iTunes%20Media/Artist/Album/01%20Song.mp3</string>
		</dict>
	</dict>
	<key>Playlists</key>
	<array>
		<dict>
			<key>Name</key><string>Road Trip</string>
			<key>Playlist Items</key>
			<array>
				<dict><key>Track ID</key><integer>1001</integer></dict>
			</array>
		</dict>
	</array>
</dict>
</plist>`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iTunes Music Library.xml")
	if err := os.WriteFile(path, []byte(fixtureXML), 0644); err != nil {
		t.Fatalf("failed to write library fixture: %v", err)
	}
	return path
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
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
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("SetLogger", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		replacement := shared.NewLogger(&bytes.Buffer{})

		runner.SetLogger(replacement)

		if runner.logger != replacement {
			t.Error("expected logger to be replaced")
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlainHeader("Export Summary")

		lines := strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if lines[1] != "Export Summary" {
			t.Errorf("expected title on middle line, got %q", lines[1])
		}
		if !strings.HasPrefix(lines[0], "═") || !strings.HasPrefix(lines[2], "═") {
			t.Error("expected rules around the title")
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 6 {
			t.Fatalf("expected 6 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, name := range []string{"list", "export", "plex", "setup", "history", "tui"} {
			if !names[name] {
				t.Errorf("expected %s command to be registered", name)
			}
		}
	})

	t.Run("loadSnapshot", func(t *testing.T) {
		t.Run("loads from explicit path", func(t *testing.T) {
			path := writeFixture(t)
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})

			snap, err := runner.loadSnapshot(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(snap.Playlists) != 1 {
				t.Errorf("expected 1 playlist, got %d", len(snap.Playlists))
			}
		})

		t.Run("falls back to configured path", func(t *testing.T) {
			path := writeFixture(t)
			config := shared.DefaultConfig()
			config.Library.Path = path
			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: shared.NewLogger(&bytes.Buffer{}),
			})

			snap, err := runner.loadSnapshot("")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(snap.Tracks) != 1 {
				t.Errorf("expected 1 track, got %d", len(snap.Tracks))
			}
		})

		t.Run("reports missing file", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})

			_, err := runner.loadSnapshot("/nonexistent/library.xml")
			if err == nil {
				t.Fatal("expected error for missing library")
			}
		})
	})
}

func TestListCommand(t *testing.T) {
	run := func(t *testing.T, args ...string) (*bytes.Buffer, error) {
		t.Helper()
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output: output,
			Logger: shared.NewLogger(&bytes.Buffer{}),
		})
		cmd := listCommand(runner)
		err := cmd.Run(context.Background(), append([]string{"list"}, args...))
		return output, err
	}

	t.Run("prints plain text listing", func(t *testing.T) {
		path := writeFixture(t)

		output, err := run(t, "--library", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "'Road Trip'") {
			t.Errorf("expected playlist in listing, got %q", result)
		}
		if !strings.Contains(result, "Total in db:") {
			t.Errorf("expected totals line, got %q", result)
		}
	})

	t.Run("prints CSV listing", func(t *testing.T) {
		path := writeFixture(t)

		output, err := run(t, "--library", path, "--csv")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
		if lines[0] != "Name,Tracks,Size,Flags" {
			t.Errorf("expected CSV header, got %q", lines[0])
		}
		if len(lines) != 2 {
			t.Fatalf("expected header plus one record, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[1], "Road Trip,1,") {
			t.Errorf("unexpected CSV record: %q", lines[1])
		}
	})

	t.Run("writes listing to a file", func(t *testing.T) {
		path := writeFixture(t)
		dest := filepath.Join(t.TempDir(), "listing.txt")

		output, err := run(t, "--library", path, "--output", dest)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if output.Len() != 0 {
			t.Errorf("expected nothing on stdout, got %q", output.String())
		}
		tu.AssertFileExists(t, dest)
		if !strings.Contains(tu.MustReadFile(t, dest), "'Road Trip'") {
			t.Error("expected playlist in written listing")
		}
	})

	t.Run("fails when the library is missing", func(t *testing.T) {
		_, err := run(t, "--library", "/nonexistent/library.xml")
		if err == nil {
			t.Fatal("expected error for missing library")
		}
	})
}

// exportLibrary writes a source tree with one track and a library XML whose
// locations point at it, returning the XML path and the source root.
func exportLibrary(t *testing.T) (string, string) {
	t.Helper()

	srcRoot := t.TempDir()
	trackPath := filepath.Join(srcRoot, "Artist", "Album", "01 Song.mp3")
	if err := os.MkdirAll(filepath.Dir(trackPath), 0755); err != nil {
		t.Fatalf("failed to create source tree: %v", err)
	}
	if err := os.WriteFile(trackPath, []byte("mp3-data"), 0644); err != nil {
		t.Fatalf("failed to write track: %v", err)
	}

	fileURL := func(p string) string {
		return (&url.URL{Scheme: "file", Host: "localhost", Path: p}).String()
	}

	xml := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>Major Version</key><integer>1</integer>
	<key>Minor Version</key><integer>1</integer>
	<key>Music Folder</key><string>` + fileURL(srcRoot+"/") + `</string>
	<key>Tracks</key>
	<dict>
		<key>1001</key>
		<dict>
			<key>Track ID</key><integer>1001</integer>
			<key>Size</key><integer>8</integer>
			<key>Kind</key><string>MPEG audio file</string>
			<key>Location</key><string>` + fileURL(trackPath) + `</string>
		</dict>
	</dict>
	<key>Playlists</key>
	<array>
		<dict>
			<key>Name</key><string>Road Trip</string>
			<key>Playlist Items</key>
			<array><dict><key>Track ID</key><integer>1001</integer></dict></array>
		</dict>
	</array>
</dict>
</plist>`

	xmlPath := filepath.Join(t.TempDir(), "iTunes Music Library.xml")
	if err := os.WriteFile(xmlPath, []byte(xml), 0644); err != nil {
		t.Fatalf("failed to write library fixture: %v", err)
	}
	return xmlPath, srcRoot
}

func TestExportCommand(t *testing.T) {
	xmlPath, _ := exportLibrary(t)
	destRoot := t.TempDir()

	config := shared.DefaultConfig()
	config.Library.Path = xmlPath
	config.Destination.Path = destRoot
	config.Database.Path = filepath.Join(t.TempDir(), "runs.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Output: output,
		Logger: shared.NewLogger(&bytes.Buffer{}),
	})

	cmd := exportCommand(runner)
	if err := cmd.Run(context.Background(), []string{"export", "Road Trip"}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	t.Run("copies the track to the normalized destination", func(t *testing.T) {
		tu.AssertDirExists(t, filepath.Join(destRoot, "Music"))
		copied := filepath.Join(destRoot, "Music", "artist", "album", "01 song.mp3")
		tu.AssertFileExists(t, copied)
		if tu.MustReadFile(t, copied) != "mp3-data" {
			t.Error("copied track content does not match the source")
		}
	})

	t.Run("writes the playlist file", func(t *testing.T) {
		playlist := filepath.Join(destRoot, "Playlists", "road trip.m3u")
		tu.AssertFileExists(t, playlist)
		want := `..\Music\artist\album\01 song.mp3` + "\n"
		if got := tu.MustReadFile(t, playlist); got != want {
			t.Errorf("playlist content = %q, want %q", got, want)
		}
	})

	t.Run("prints the summary", func(t *testing.T) {
		result := output.String()
		if !strings.Contains(result, "Export Complete") {
			t.Errorf("expected completion header, got %q", result)
		}
		if !strings.Contains(result, "Tracks: 1/1 copied") {
			t.Errorf("expected copy counts, got %q", result)
		}
	})

	t.Run("records the run in the history database", func(t *testing.T) {
		history := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: config,
			Output: history,
			Logger: shared.NewLogger(&bytes.Buffer{}),
		})

		if err := historyCommand(runner).Run(context.Background(), []string{"history"}); err != nil {
			t.Fatalf("history failed: %v", err)
		}

		result := history.String()
		if !strings.Contains(result, "write") {
			t.Errorf("expected a recorded write run, got %q", result)
		}
		if strings.Contains(result, "No runs recorded yet.") {
			t.Error("expected the export run to be recorded")
		}
	})
}

func TestHistoryCommandEmpty(t *testing.T) {
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "runs.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Output: output,
		Logger: shared.NewLogger(&bytes.Buffer{}),
	})

	if err := historyCommand(runner).Run(context.Background(), []string{"history"}); err != nil {
		t.Fatalf("history failed: %v", err)
	}

	if !strings.Contains(output.String(), "No runs recorded yet.") {
		t.Errorf("expected empty history notice, got %q", output.String())
	}
}

func TestSetupCommand(t *testing.T) {
	wd := tu.MustGetwd(t)
	tmp := t.TempDir()
	tu.MustChdir(t, tmp)
	t.Cleanup(func() { tu.MustChdir(t, wd) })

	runner := NewRunner(RunnerOpts{
		Output: &bytes.Buffer{},
		Logger: shared.NewLogger(&bytes.Buffer{}),
	})

	if err := setupCommand(runner).Run(context.Background(), []string{"setup", "--config", "config.toml"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// The template's database path is relative to the working directory.
	tu.AssertFileExists(t, filepath.Join(tmp, "config.toml"))
	tu.AssertFileExists(t, filepath.Join(tmp, "extunes.db"))
}
