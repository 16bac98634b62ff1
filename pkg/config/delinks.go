package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/section"
)

// DelinkFile is one file block in a delinks manifest: its path, whether it
// is marked complete (already matches the target build, which decides
// whether its object-list entry points at the build or delinks tree), and
// the set of sections it contributes code to, inherited from the module
// header and clamped to this file's address range.
type DelinkFile struct {
	Path     string
	Complete bool
	Sections *section.Sections
}

// HasSection reports whether this file contributes to the named section,
// used by the LCF writer to decide which files to list inside a section
// block.
func (f DelinkFile) HasSection(name string) bool {
	_, ok := f.Sections.ByName(name)
	return ok
}

// Delinks is the parsed contents of one module's delinks file: a
// sections header (fresh section syntax) followed by a list of file
// blocks.
type Delinks struct {
	Sections *section.Sections
	Files    []DelinkFile
}

// ParseDelinks parses a delinks file body from r. The file path is used
// only to annotate parse-error contexts.
func ParseDelinks(r io.Reader, path string) (*Delinks, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	header := section.NewSections()
	var files []DelinkFile
	var current *DelinkFile

	inHeader := true
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		ctx := nitroerr.Context{File: path, Line: lineNo}
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			if inHeader && header.Len() > 0 {
				inHeader = false
			}
			current = nil
			continue
		}

		if inHeader {
			sec, err := section.ParseFresh(line, ctx)
			if err != nil {
				return nil, err
			}
			if sec != nil {
				if err := header.Add(*sec); err != nil {
					return nil, err
				}
			}
			continue
		}

		if current == nil {
			fields := strings.Fields(trimmed)
			df := DelinkFile{Path: fields[0], Sections: section.NewSections()}
			if len(fields) > 1 && fields[1] == "complete" {
				df.Complete = true
			}
			files = append(files, df)
			current = &files[len(files)-1]
			continue
		}

		sec, err := section.ParseInherit(line, ctx, header)
		if err != nil {
			return nil, err
		}
		if sec != nil {
			if err := current.Sections.Add(*sec); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("reading delinks file %s: %w", path, err))
	}

	return &Delinks{Sections: header, Files: files}, nil
}

// LoadDelinks opens path and parses it as a delinks file.
func LoadDelinks(path string) (*Delinks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("opening delinks file %s: %w", path, err))
	}
	defer f.Close()
	return ParseDelinks(f, path)
}
