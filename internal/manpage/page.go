package manpage

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// ErrMissingDependency indicates an external tool (groff, manpath) is not
// installed or not on PATH.
var ErrMissingDependency = errors.New("missing dependency")

// ErrNotManualPage indicates a file name does not look like a manual page.
var ErrNotManualPage = errors.New("not a manual page")

// DefaultSections are the manual sections kept for indexing when the
// config does not override them. By the manpage standard every page has
// at least a NAME section.
var DefaultSections = []string{"NAME", "SYNOPSIS", "DESCRIPTION", "OPTIONS", "EXAMPLES"}

// Page is one manual page: its identity, every path it was found at, and
// the text of the sections worth indexing.
type Page struct {
	Name    string
	Section string
	Paths   []string
	ModTime time.Time

	order    []string
	sections map[string]string
}

// ID returns the page identifier rendered to users, e.g. "tar (1)".
func (p *Page) ID() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Section)
}

// Source returns the first path the page was discovered at.
func (p *Page) Source() string {
	if len(p.Paths) == 0 {
		return ""
	}
	return p.Paths[0]
}

// Text returns the kept sections joined in the order they appeared.
func (p *Page) Text() string {
	parts := make([]string, 0, len(p.order))
	for _, name := range p.order {
		parts = append(parts, p.sections[name])
	}
	return strings.Join(parts, " ")
}

// RecordPath notes an additional path (symlink or locale copy) for a page
// that was already parsed.
func (p *Page) RecordPath(path string) {
	p.Paths = append(p.Paths, path)
	if st, err := os.Stat(path); err == nil && st.ModTime().After(p.ModTime) {
		p.ModTime = st.ModTime()
	}
}

// ParseName extracts the page name and manual section from a file name.
// Compression suffixes (.gz, .bz2) are stripped first; the remaining
// extension must be a digit optionally followed by letters ("1", "3ssl").
func ParseName(path string) (name, section string, err error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".bz2")

	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return "", "", fmt.Errorf("%w: %s", ErrNotManualPage, path)
	}
	name, section = base[:i], base[i+1:]
	if section[0] < '0' || section[0] > '9' {
		return "", "", fmt.Errorf("%w: %s", ErrNotManualPage, path)
	}
	for _, r := range section[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", "", fmt.Errorf("%w: %s", ErrNotManualPage, path)
		}
	}
	return name, section, nil
}

// New parses the manual page at path: decompresses if needed, renders it
// through groff and extracts the sections named in keep (compared
// upper-case). A missing groff binary returns ErrMissingDependency.
func New(path string, keep []string) (*Page, error) {
	name, section, err := ParseName(path)
	if err != nil {
		return nil, err
	}

	text, err := render(path)
	if err != nil {
		return nil, err
	}

	p := &Page{
		Name:     name,
		Section:  section,
		sections: make(map[string]string),
	}
	p.RecordPath(path)
	p.extract(text, keep)
	return p, nil
}

// render produces plain text for the troff source at path. It is a
// variable so discovery tests can substitute a canned renderer instead of
// requiring groff on the test machine.
var render = renderTroff

func renderTroff(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	raw, err = decompress(raw)
	if err != nil {
		return "", fmt.Errorf("cannot decompress %s: %w", path, err)
	}

	// groff runs in the page's directory so .so includes resolve.
	cmd := exec.Command("groff", "-Tascii", "-man")
	cmd.Stdin = bytes.NewReader(raw)
	cmd.Dir = filepath.Dir(path)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: groff", ErrMissingDependency)
		}
		return "", fmt.Errorf("groff failed on %s: %w", path, err)
	}
	return stripOverstrike(out.String()), nil
}

// decompress detects gzip and bzip2 payloads by their magic bytes and
// returns the decompressed content; anything else passes through.
func decompress(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0x1f, 0x8b}):
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case bytes.HasPrefix(raw, []byte("BZ")):
		return io.ReadAll(bzip2.NewReader(bytes.NewReader(raw)))
	default:
		return raw, nil
	}
}

// stripOverstrike removes terminal bold ("c\bc") and italic ("_\bc")
// sequences from groff -Tascii output. A backspace discards the previous
// rune, leaving the overstruck character.
func stripOverstrike(text string) string {
	out := make([]rune, 0, len(text))
	for _, r := range text {
		if r == '\b' {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// extract walks rendered lines collecting the content of kept sections.
// A section heading starts in column 0 and consists of upper-case
// alphabetic words only.
func (p *Page) extract(text string, keep []string) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, s := range keep {
		keepSet[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}

	lines := strings.Split(text, "\n")

	// Skip the header line ("TAR(1)  ...  TAR(1)") after leading blanks.
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i < len(lines) {
		i++
	}

	current := ""
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isSectionHeading(line) {
			current = ""
			heading := strings.TrimSpace(line)
			if _, ok := keepSet[heading]; ok {
				current = heading
				if _, seen := p.sections[heading]; !seen {
					p.order = append(p.order, heading)
				}
			}
			continue
		}
		if current != "" {
			p.sections[current] = appendLine(p.sections[current], strings.TrimSpace(line))
		}
	}

	// groff hyphenates across line breaks; re-join the halves.
	for name, body := range p.sections {
		p.sections[name] = strings.ReplaceAll(body, "- ", "")
	}
}

func appendLine(body, line string) string {
	if body == "" {
		return line
	}
	return body + " " + line
}

// isSectionHeading reports whether a rendered line is a manual section
// heading: starts in column 0, contains letters, and every word is
// upper-case alphabetic.
func isSectionHeading(line string) bool {
	if line == "" {
		return false
	}
	if r := rune(line[0]); unicode.IsSpace(r) {
		return false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		for _, r := range f {
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return true
}
