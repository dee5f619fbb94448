package paths

import (
	"errors"
	"strings"
	"testing"

	"github.com/pirtoo/extunes/internal/shared"
)

func TestNormalize(t *testing.T) {
	opts := Options{Lowercase: true, RestrictCharset: true}

	tc := []struct {
		name       string
		sourcePath string
		sourceRoot string
		destRoot   string
		opts       Options
		want       string
		wantErr    bool
	}{
		{
			name:       "plain relative path",
			sourcePath: "/library/Music/Artist/Album/01 Song.mp3",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       opts,
			want:       "/dest/Music/artist/album/01 song.mp3",
		},
		{
			name:       "case folding collapses multi-disc variants",
			sourcePath: "/library/Music/Artist/ALBUM Disc 2/track.mp3",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       opts,
			want:       "/dest/Music/artist/album disc 2/track.mp3",
		},
		{
			name:       "unsafe characters substituted",
			sourcePath: "/library/Music/Sigur Rós/Ágætis byrjun/Svefn-g-englar.mp3",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       opts,
			want:       "/dest/Music/sigur r_s/_g_tis byrjun/svefn-g-englar.mp3",
		},
		{
			name:       "space runs collapse",
			sourcePath: "/library/Music/Artist/Album/Some   Song.mp3",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       opts,
			want:       "/dest/Music/artist/album/some song.mp3",
		},
		{
			name:       "kept punctuation survives",
			sourcePath: "/library/Music/AC-DC/Rock & Roll #1/track.mp3",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       opts,
			want:       "/dest/Music/ac-dc/rock & roll #1/track.mp3",
		},
		{
			name:       "restriction skippable",
			sourcePath: "/library/Music/Sigur Rós/song.mp3",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       Options{Lowercase: false, RestrictCharset: false},
			want:       "/dest/Music/Sigur Rós/song.mp3",
		},
		{
			name:       "outside source root",
			sourcePath: "/other/place/song.mp3",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       opts,
			wantErr:    true,
		},
		{
			name:       "source root itself",
			sourcePath: "/library/Music",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       opts,
			wantErr:    true,
		},
		{
			name:       "dot-dot escape rejected",
			sourcePath: "/library/Music/../../etc/passwd",
			sourceRoot: "/library/Music",
			destRoot:   "/dest/Music",
			opts:       opts,
			wantErr:    true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.sourcePath, tt.sourceRoot, tt.destRoot, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if !errors.Is(err, shared.ErrPath) {
					t.Errorf("expected ErrPath, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	opts := Options{Lowercase: true, RestrictCharset: true}
	first, err := Normalize("/lib/Artist/Søng.mp3", "/lib", "/dest", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		again, err := Normalize("/lib/Artist/Søng.mp3", "/lib", "/dest", opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("normalization not deterministic: %q vs %q", again, first)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tc := []struct {
		name string
		in   string
		opts Options
		want string
	}{
		{
			name: "folds and restricts",
			in:   "My Röad Trip",
			opts: Options{Lowercase: true, RestrictCharset: true},
			want: "my r_ad trip",
		},
		{
			name: "separator never nests",
			in:   "a/b",
			opts: Options{},
			want: "a_b",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in, tt.opts); got != tt.want {
				t.Errorf("NormalizeName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPortable(t *testing.T) {
	got, err := Portable("/dest/Music/artist/song.mp3", "/dest/Playlists", `\`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `..\Music\artist\song.mp3`
	if got != want {
		t.Errorf("Portable() = %q, want %q", got, want)
	}

	got, err = Portable("/dest/Music/a.mp3", "/dest/Music", `\`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "/") {
		t.Errorf("expected all separators rewritten, got %q", got)
	}
}
