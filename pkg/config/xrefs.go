package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/xref"
)

// ParseXrefLine parses one line of an xrefs file: "from:0xHHHHHHHH
// to:0xHHHHHHHH", one cross-reference per line. A blank/comment line yields (nil, nil).
func ParseXrefLine(line string, ctx nitroerr.Context) (*xref.Xref, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	var from, to *uint32
	for _, tok := range fields {
		key, value, hasValue := strings.Cut(tok, ":")
		if !hasValue {
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "expected 'from:VAL' or 'to:VAL' but got %q", tok)
		}
		v, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "failed to parse %s address %q: %v", key, value, err)
		}
		addr := uint32(v)
		switch key {
		case "from":
			from = &addr
		case "to":
			to = &addr
		default:
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "expected attribute 'from' or 'to' but got %q", key)
		}
	}
	if from == nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'from' attribute")
	}
	if to == nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'to' attribute")
	}

	return &xref.Xref{From: *from, To: *to}, nil
}

// ParseXrefs parses a full xrefs file body into an xref.Table.
func ParseXrefs(r io.Reader, path string) (*xref.Table, error) {
	scanner := bufio.NewScanner(r)
	table := xref.NewTable()
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		x, err := ParseXrefLine(scanner.Text(), nitroerr.Context{File: path, Line: lineNo})
		if err != nil {
			return nil, err
		}
		if x != nil {
			table.Add(*x)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("reading xrefs file %s: %w", path, err))
	}
	return table, nil
}

// LoadXrefs opens path and parses it as an xrefs file.
func LoadXrefs(path string) (*xref.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("opening xrefs file %s: %w", path, err))
	}
	defer f.Close()
	return ParseXrefs(f, path)
}
