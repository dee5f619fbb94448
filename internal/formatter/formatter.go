// package formatter renders playlist file content and library listings (M3U, CSV, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/pirtoo/extunes/internal/models"
	"github.com/pirtoo/extunes/internal/paths"
	"github.com/pirtoo/extunes/internal/shared"
)

// M3UHeader marks the extended playlist format variant when enabled.
const M3UHeader = "#EXTM3U"

// PlaylistExt is the fixed extension for generated playlist files.
const PlaylistExt = ".m3u"

// BuildM3U renders playlist lines into file content, one normalized path
// per line, newline-terminated, with an optional leading format marker.
func BuildM3U(lines []string, header bool) []byte {
	var buf bytes.Buffer
	if header {
		buf.WriteString(M3UHeader)
		buf.WriteByte('\n')
	}
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// PlaylistFilename returns the destination filename for a playlist: the
// optional prefix plus the name, passed through name normalization, with
// the fixed extension appended.
func PlaylistFilename(name, prefix string, opts paths.Options) string {
	return paths.NormalizeName(prefix+name, opts) + PlaylistExt
}

// ListingToCSV converts the library's playlist listing to CSV with columns:
// Name, Tracks, Size, Flags.
func ListingToCSV(snap *models.LibrarySnapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Tracks", "Size", "Flags"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i := range snap.Playlists {
		p := &snap.Playlists[i]
		record := []string{
			p.Name,
			strconv.Itoa(len(p.Tracks)),
			strconv.FormatInt(snap.PlaylistSize(p), 10),
			p.Flags(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ListingToText converts the library's playlist listing to the plain text
// table used by the list command, with a totals line for the whole track
// universe.
func ListingToText(snap *models.LibrarySnapshot) []byte {
	var buf bytes.Buffer

	buf.WriteString("Playlists found:\n")
	for i := range snap.Playlists {
		p := &snap.Playlists[i]
		name := fmt.Sprintf("'%s'", p.Name)
		buf.WriteString(fmt.Sprintf("  %-38s %10d tracks %9s %8s\n",
			name, len(p.Tracks), shared.FormatBytes(snap.PlaylistSize(p)), p.Flags()))
	}
	buf.WriteString(fmt.Sprintf("Total in db: %12d tracks %9s\n",
		len(snap.Tracks), shared.FormatBytes(snap.TotalSize())))

	return buf.Bytes()
}
