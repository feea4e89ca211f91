package container

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Container states reported by the batched listing.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
)

// Entry is one managed container from the batched listing.
type Entry struct {
	Name        string
	Status      string
	Port        uint16
	BindAddress string
	CreatedAt   *time.Time
}

// FileEntry is one row of a directory listing inside a container.
type FileEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// MatchesImage reports whether ref is image itself or image with a tag.
func MatchesImage(ref, image string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || image == "" {
		return false
	}
	return ref == image || strings.HasPrefix(ref, image+":")
}

// ParseStatus maps the listing's human status ("Up 3 minutes",
// "Exited (0) 2 hours ago") to running or stopped.
func ParseStatus(text string) string {
	if strings.Contains(text, "Up") {
		return StatusRunning
	}
	return StatusStopped
}

// ParsePort returns the host port of the first published mapping in text,
// e.g. 2222 for "0.0.0.0:2222->22/tcp". Anything else yields 0.
func ParsePort(text string) uint16 {
	_, port := parsePortMapping(text)
	return port
}

// ParseBindAddress returns the host address of the first published mapping,
// or "" when text has none.
func ParseBindAddress(text string) string {
	addr, _ := parsePortMapping(text)
	return addr
}

func parsePortMapping(text string) (string, uint16) {
	first, _, _ := strings.Cut(text, ",")
	host, _, ok := strings.Cut(strings.TrimSpace(first), "->")
	if !ok {
		return "", 0
	}
	i := strings.LastIndex(host, ":")
	if i < 0 {
		return "", 0
	}
	port, err := strconv.ParseUint(host[i+1:], 10, 16)
	if err != nil {
		return "", 0
	}
	return strings.Trim(host[:i], "[]"), uint16(port)
}

// createdLayouts are the timestamp forms docker and podman print for
// {{.CreatedAt}}. Fractional seconds are accepted by time.Parse regardless.
var createdLayouts = []string{
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 -0700",
	time.RFC3339,
}

// ParseCreatedAt parses a runtime creation timestamp. It returns nil for
// anything it does not recognize, including relative forms like
// "2 hours ago".
func ParseCreatedAt(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}

// ParseListLine parses one "name|status|ports|created" line of the batched
// listing. Lines with fewer than three fields or no name are rejected.
func ParseListLine(line string) (Entry, bool) {
	fields := strings.SplitN(strings.TrimSpace(line), "|", 4)
	if len(fields) < 3 {
		return Entry{}, false
	}
	name := strings.TrimSpace(fields[0])
	if name == "" {
		return Entry{}, false
	}
	e := Entry{
		Name:        name,
		Status:      ParseStatus(fields[1]),
		Port:        ParsePort(fields[2]),
		BindAddress: ParseBindAddress(fields[2]),
	}
	if len(fields) == 4 {
		e.CreatedAt = ParseCreatedAt(fields[3])
	}
	return e, true
}

// ParseList parses the full batched listing output.
func ParseList(output string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(output, "\n") {
		if e, ok := ParseListLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseDirListing parses `ls -la` output for dir. The first line is the
// "total" summary and is skipped, as are "." and "..". Names keep embedded
// spaces (collapsed to one). Directories sort first, then names
// case-insensitively.
func ParseDirListing(dir, output string) []FileEntry {
	lines := strings.Split(output, "\n")
	entries := make([]FileEntry, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}
		name := strings.Join(fields[8:], " ")
		if name == "." || name == ".." {
			continue
		}
		size, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			size = 0
		}
		entries = append(entries, FileEntry{
			Name:  name,
			Path:  joinPath(dir, name),
			IsDir: strings.HasPrefix(fields[0], "d"),
			Size:  size,
		})
	}

	slices.SortStableFunc(entries, func(a, b FileEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return entries
}

func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
