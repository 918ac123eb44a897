// Package setpieces turns a pasted set-piece takers page into structured JSON.
//
// The input is plain text with one section per club:
//
//	Arsenal
//	Penalties
//	Saka
//	Direct free-kicks
//	Odegaard
//	Rice
//	Corners & indirect free-kicks
//	Saka
//	Rice
//	Odegaard takes short corners from the left.
//
// Within the corners block, lines of at most two words are takers until the
// first longer line; that line and everything after it are notes.
package setpieces

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const (
	headingPenalties = "Penalties"
	headingFreeKicks = "Direct free-kicks"
	headingCorners   = "Corners & indirect free-kicks"

	maxTakerWords = 2
)

// DefaultClubs are the club names as they appear in the source page.
var DefaultClubs = []string{
	"Arsenal", "Aston Villa", "Bournemouth", "Brentford", "Brighton", "Chelsea",
	"Crystal Palace", "Everton", "Fulham", "Ipswich", "Leicester", "Liverpool",
	"Man City", "Man Utd", "Newcastle", "Nott'm Forest", "Southampton", "Spurs",
	"West Ham", "Wolves",
}

// Club is one club's takers.
type Club struct {
	Penalties                []string `json:"penalties"`
	DirectFreeKicks          []string `json:"direct_free_kicks"`
	CornersIndirectFreeKicks []string `json:"corners_indirect_free_kicks"`
	Notes                    []string `json:"notes"`
}

// maxLineBytes bounds one line of pasted text.
const maxLineBytes = 1 << 20

// Table maps club name to takers.
type Table map[string]Club

// Parse reads a takers page. Clubs not found in the text are left out.
func Parse(r io.Reader, clubs []string) (Table, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), " \t\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read set-piece text: %w", err)
	}

	type section struct {
		club  string
		start int
	}
	var sections []section
	for _, club := range clubs {
		if i := findHeader(lines, club); i >= 0 {
			sections = append(sections, section{club: club, start: i})
		}
	}
	sort.Slice(sections, func(a, b int) bool { return sections[a].start < sections[b].start })

	table := make(Table, len(sections))
	for n, s := range sections {
		end := len(lines)
		if n+1 < len(sections) {
			end = sections[n+1].start
		}
		table[s.club] = parseClub(lines[s.start+1 : end])
	}
	return table, nil
}

// findHeader returns the index of the line naming club that is followed, past
// any blank lines, by the penalties heading.
func findHeader(lines []string, club string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) != club {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			if next == headingPenalties {
				return i
			}
			break
		}
	}
	return -1
}

func parseClub(lines []string) Club {
	c := Club{
		Penalties:                []string{},
		DirectFreeKicks:          []string{},
		CornersIndirectFreeKicks: []string{},
		Notes:                    []string{},
	}

	var current *[]string
	inCorners, inNotes, cornersStarted := false, false, false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch line {
		case headingPenalties:
			current, inCorners = &c.Penalties, false
			continue
		case headingFreeKicks:
			current, inCorners = &c.DirectFreeKicks, false
			continue
		case headingCorners:
			current, inCorners = nil, true
			continue
		}

		if inCorners {
			if line == "" {
				// A blank line after the corners block ends the club's data.
				if cornersStarted {
					break
				}
				continue
			}
			cornersStarted = true
			if !inNotes && len(strings.Fields(line)) <= maxTakerWords {
				c.CornersIndirectFreeKicks = append(c.CornersIndirectFreeKicks, line)
			} else {
				inNotes = true
				c.Notes = append(c.Notes, line)
			}
			continue
		}

		if current != nil && line != "" {
			*current = append(*current, line)
		}
	}
	return c
}

// Extract parses the file at in and writes the table as indented JSON to out.
func Extract(fs afero.Fs, in, out string, clubs []string) (Table, error) {
	f, err := fs.Open(in)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", in, err)
	}
	defer f.Close()

	table, err := Parse(f, clubs)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(table, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal set-piece table: %w", err)
	}
	if err := afero.WriteFile(fs, out, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", out, err)
	}
	return table, nil
}

// Load reads a table previously written by Extract.
func Load(fs afero.Fs, path string) (Table, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("set-piece table %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return table, nil
}
