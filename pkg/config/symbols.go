package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
)

func parseSymbolU32(value string) (uint32, error) {
	v, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func parseMode(value string, ctx nitroerr.Context) (symbol.Mode, error) {
	switch value {
	case "arm":
		return symbol.ModeARM, nil
	case "thumb":
		return symbol.ModeThumb, nil
	default:
		return 0, nitroerr.Atf(nitroerr.ConfigParse, ctx, "unknown instruction mode %q, must be one of: arm, thumb", value)
	}
}

func parseDataVariant(value string, ctx nitroerr.Context) (symbol.DataVariant, error) {
	switch value {
	case "", "any":
		return symbol.DataAny, nil
	case "byte":
		return symbol.DataByte, nil
	case "short":
		return symbol.DataShort, nil
	case "word":
		return symbol.DataWord, nil
	default:
		return 0, nitroerr.Atf(nitroerr.ConfigParse, ctx, "unknown data variant %q, must be one of: any, byte, short, word", value)
	}
}

// ParseSymbolLine parses one line of a symbols file: "name kind:VAL
// addr:0xHHHHHHHH [size:0xN] [ambiguous]" plus kind-specific attributes
// (mode:arm|thumb for function/label, code for an executable jump table).
// A blank/comment line yields (nil, nil).
func ParseSymbolLine(line string, ctx nitroerr.Context) (*symbol.Symbol, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	name := fields[0]

	attrs := make(map[string]string)
	flags := make(map[string]bool)
	for _, tok := range fields[1:] {
		key, value, hasValue := strings.Cut(tok, ":")
		if !hasValue {
			flags[key] = true
			continue
		}
		attrs[key] = value
	}

	kindName, ok := attrs["kind"]
	if !ok {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'kind' attribute")
	}
	addrStr, ok := attrs["addr"]
	if !ok {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'addr' attribute")
	}
	addr, err := parseSymbolU32(addrStr)
	if err != nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "failed to parse address %q: %v", addrStr, err)
	}

	var size *uint32
	if sizeStr, ok := attrs["size"]; ok {
		v, err := parseSymbolU32(sizeStr)
		if err != nil {
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "failed to parse size %q: %v", sizeStr, err)
		}
		size = &v
	}

	var kind symbol.Kind
	switch kindName {
	case "function":
		mode, err := parseMode(attrs["mode"], ctx)
		if err != nil {
			return nil, err
		}
		if size == nil {
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "function symbol %q is missing 'size' attribute", name)
		}
		kind = symbol.Function{Mode: mode, Size: *size, Unknown: flags["unknown"]}
	case "label":
		mode, err := parseMode(attrs["mode"], ctx)
		if err != nil {
			return nil, err
		}
		kind = symbol.Label{Mode: mode}
	case "pool_constant":
		kind = symbol.PoolConstant{}
	case "jump_table":
		if size == nil {
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "jump table symbol %q is missing 'size' attribute", name)
		}
		kind = symbol.JumpTable{Size: *size, Code: flags["code"]}
	case "data":
		variant, err := parseDataVariant(attrs["variant"], ctx)
		if err != nil {
			return nil, err
		}
		kind = symbol.Data{Variant: variant, Size: size}
	case "bss":
		kind = symbol.Bss{Size: size}
	default:
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx,
			"unknown symbol kind %q, must be one of: function, label, pool_constant, jump_table, data, bss", kindName)
	}

	return &symbol.Symbol{Name: name, Addr: addr, Ambiguous: flags["ambiguous"], Kind: kind}, nil
}

// ParseSymbols parses a full symbols file body into a symbol.Map.
func ParseSymbols(r io.Reader, path string) (*symbol.Map, error) {
	scanner := bufio.NewScanner(r)
	m := symbol.NewMap()
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		sym, err := ParseSymbolLine(scanner.Text(), nitroerr.Context{File: path, Line: lineNo})
		if err != nil {
			return nil, err
		}
		if sym != nil {
			m.AddIfNewAddress(*sym)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("reading symbols file %s: %w", path, err))
	}
	return m, nil
}

// LoadSymbols opens path and parses it as a symbols file.
func LoadSymbols(path string) (*symbol.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("opening symbols file %s: %w", path, err))
	}
	defer f.Close()
	return ParseSymbols(f, path)
}
