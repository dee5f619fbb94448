package paths

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pirtoo/extunes/internal/shared"
)

// Substitute replaces characters outside the safe destination charset.
const Substitute = "_"

var (
	// Deliberately more restrictive than FAT32 requires; safer across
	// players and case-insensitive filesystems.
	unsafeRegex   = regexp.MustCompile(`[^-_/.&%#@:a-zA-Z0-9 ]`)
	spaceRunRegex = regexp.MustCompile(` +`)
)

// Options controls how [Normalize] rewrites a path.
type Options struct {
	// Lowercase folds the relative path to lower case. Multi-disc albums
	// otherwise produce duplicate directories on case-insensitive
	// destination filesystems when the source casing differs per disc.
	Lowercase bool

	// RestrictCharset replaces characters outside the safe subset with
	// [Substitute] and collapses runs of spaces.
	RestrictCharset bool
}

// Normalize rewrites an absolute source path into a destination path under
// destRoot. The sourceRoot prefix is stripped, the remainder optionally
// case-folded and charset-restricted, and the result re-joined under
// destRoot. Returns [shared.ErrPath] if sourcePath does not lie under
// sourceRoot or would escape destRoot.
func Normalize(sourcePath, sourceRoot, destRoot string, opts Options) (string, error) {
	src := filepath.Clean(sourcePath)
	root := filepath.Clean(sourceRoot)

	rel, found := strings.CutPrefix(src, root+string(filepath.Separator))
	if !found || rel == "" {
		return "", fmt.Errorf("%w: %q not under %q", shared.ErrPath, sourcePath, sourceRoot)
	}

	if opts.Lowercase {
		rel = strings.ToLower(rel)
	}
	if opts.RestrictCharset {
		rel = unsafeRegex.ReplaceAllString(rel, Substitute)
		rel = spaceRunRegex.ReplaceAllString(rel, " ")
	}

	// Cleaning may reintroduce traversal if the source contained dot-dot
	// segments; the result must stay anchored under destRoot.
	dest := filepath.Join(destRoot, rel)
	if dest != filepath.Clean(destRoot) && !strings.HasPrefix(dest, filepath.Clean(destRoot)+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %q", shared.ErrPath, sourcePath, destRoot)
	}

	return dest, nil
}

// NormalizeName rewrites a bare name (no directory components) with the
// same folding and charset rules as [Normalize]. Used for playlist
// filenames, where the name is not anchored to a source root.
func NormalizeName(name string, opts Options) string {
	if opts.Lowercase {
		name = strings.ToLower(name)
	}
	if opts.RestrictCharset {
		name = unsafeRegex.ReplaceAllString(name, Substitute)
		name = spaceRunRegex.ReplaceAllString(name, " ")
	}
	// A separator inside a playlist name would nest the file.
	return strings.ReplaceAll(name, string(filepath.Separator), Substitute)
}

// Portable makes path relative to baseDir and rewrites separators to sep,
// producing playlist lines for players expecting a specific convention
// (DOS-style backslashes by default).
func Portable(path, baseDir, sep string) (string, error) {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return "", fmt.Errorf("%w: cannot relativize %q against %q: %v", shared.ErrPath, path, baseDir, err)
	}
	if sep != "" && sep != string(filepath.Separator) {
		rel = strings.ReplaceAll(rel, string(filepath.Separator), sep)
	}
	return rel, nil
}
