package repl

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"intbridge/bigint"
	"intbridge/errors"
	"intbridge/logging"
	"intbridge/marshal"
	"intbridge/platform"
	rlua "intbridge/runtime/lua"
	"intbridge/serialization"

	"github.com/funvibe/funbit/pkg/funbit"
)

// CommandHandler runs one command. args are the whitespace-separated words
// after the command name, rest is the raw text after it.
type CommandHandler func(args []string, rest string) (string, error)

type command struct {
	usage   string
	help    string
	handler CommandHandler
}

// Evaluator executes REPL lines without touching the terminal.
type Evaluator struct {
	conv     *marshal.Converter
	registry *serialization.SerializerRegistry
	lua      *rlua.LuaRuntime
	logger   logging.Logger
	commands map[string]command
}

// NewEvaluator builds an evaluator over conv. lr may be nil, in which case
// the lua command reports that scripting is unavailable.
func NewEvaluator(conv *marshal.Converter, lr *rlua.LuaRuntime, logger logging.Logger) *Evaluator {
	if conv == nil {
		conv = marshal.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &Evaluator{
		conv:     conv,
		registry: serialization.NewDefaultSerializerRegistry(conv),
		lua:      lr,
		logger:   logger.WithComponent("repl"),
	}
	e.commands = map[string]command{
		"as":        {"as <type> <value>", "convert to a native C type", e.cmdAs},
		"overflow":  {"overflow <value> [long|longlong]", "convert with the out-of-band overflow flag", e.cmdOverflow},
		"ptr":       {"ptr <value>", "convert to a pointer address", e.cmdPointer},
		"sptr":      {"sptr <value>", "reinterpret a signed address as unsigned", e.cmdSignedPointer},
		"bytes":     {"bytes <value> <n> [big|little|native] [signed]", "encode into n bytes", e.cmdBytes},
		"frombytes": {"frombytes <hex> [big|little|native] [signed]", "decode bytes into an integer", e.cmdFromBytes},
		"parse":     {"parse <base> <text>", "parse the numeral at the start of text", e.cmdParse},
		"inspect":   {"inspect <value>", "show sign, bit length and representation", e.cmdInspect},
		"limits":    {"limits", "list the native type ranges", e.cmdLimits},
		"encode":    {"encode <format> <value>", "serialize with json, msgpack or binary", e.cmdEncode},
		"decode":    {"decode <format> <hex|text>", "deserialize a value", e.cmdDecode},
		"lua":       {"lua <code>", "run Lua with the intbridge module loaded", e.cmdLua},
	}
	return e
}

// RegisterCommand adds or replaces a command
func (e *Evaluator) RegisterCommand(name, usage, help string, handler CommandHandler) {
	e.commands[name] = command{usage: usage, help: help, handler: handler}
}

// Commands returns the sorted command names
func (e *Evaluator) Commands() []string {
	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Usage returns the usage line and help text of a command
func (e *Evaluator) Usage(name string) (usage, help string, ok bool) {
	c, ok := e.commands[name]
	return c.usage, c.help, ok
}

// Table returns the range table the evaluator converts against
func (e *Evaluator) Table() *platform.Table {
	return e.conv.Table()
}

// Execute runs one line. Lines that do not start with a known command are
// run as Lua.
func (e *Evaluator) Execute(line string) (string, error) {
	line = strings.TrimLeft(strings.TrimRight(line, "\r\n"), " \t")
	if strings.TrimSpace(line) == "" {
		return "", nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimLeft(rest, " \t")
	c, ok := e.commands[strings.ToLower(name)]
	if !ok {
		return e.cmdLua(nil, line)
	}

	e.logger.Debug("executing command", logging.StringField("command", name))
	return c.handler(strings.Fields(rest), rest)
}

func (e *Evaluator) usageError(name string) error {
	return errors.NewValueError(errors.CodeUsage, "usage: "+e.commands[name].usage)
}

// parseValue reads a REPL operand: an integer literal with optional prefix,
// true/false, or a decimal float.
func parseValue(s string) (any, error) {
	switch strings.ToLower(s) {
	case "true":
		return bigint.True, nil
	case "false":
		return bigint.False, nil
	}
	if x, err := bigint.ParseFull(s, 0); err == nil {
		return x, nil
	}
	if strings.ContainsAny(s, ".eE") && !strings.HasPrefix(strings.ToLower(strings.TrimLeft(s, "+-")), "0x") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	}
	return bigint.ParseFull(s, 0)
}

func parseInt(s string) (bigint.Int, error) {
	v, err := parseValue(s)
	if err != nil {
		return bigint.Int{}, err
	}
	return bigint.RequireInstance(v)
}

func (e *Evaluator) byteOrder(args []string, i int) (littleEndian, signed bool, err error) {
	for _, a := range args[i:] {
		switch strings.ToLower(a) {
		case "big":
			littleEndian = false
		case "little":
			littleEndian = true
		case "native":
			littleEndian = e.conv.Table().LittleEndian
		case "signed":
			signed = true
		case "unsigned":
			signed = false
		default:
			return false, false, errors.NewValueError(errors.CodeUsage, fmt.Sprintf("unknown byte option %q", a))
		}
	}
	return littleEndian, signed, nil
}

func (e *Evaluator) cmdAs(args []string, rest string) (string, error) {
	if len(args) < 2 {
		return "", e.usageError("as")
	}
	// type names may contain spaces ("unsigned long long")
	typeName := strings.Join(args[:len(args)-1], " ")
	w, ok := e.conv.Table().Lookup(typeName)
	if !ok {
		return "", errors.NewValueError(errors.CodeInvalidWidth, fmt.Sprintf("unknown native type %q", typeName))
	}
	v, err := parseValue(args[len(args)-1])
	if err != nil {
		return "", err
	}

	if w.Signed {
		n, err := e.conv.AsSigned(v, w)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) %d", w.Name, n), nil
	}
	n, err := e.conv.AsUnsigned(v, w)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s) %d", w.Name, n), nil
}

func (e *Evaluator) cmdOverflow(args []string, rest string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", e.usageError("overflow")
	}
	v, err := parseValue(args[0])
	if err != nil {
		return "", err
	}

	convert := e.conv.AsLongAndOverflow
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "long":
		case "longlong", "long long":
			convert = e.conv.AsLongLongAndOverflow
		default:
			return "", e.usageError("overflow")
		}
	}

	n, flag, err := convert(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d overflow=%d", n, int(flag)), nil
}

func (e *Evaluator) cmdPointer(args []string, rest string) (string, error) {
	if len(args) != 1 {
		return "", e.usageError("ptr")
	}
	v, err := parseValue(args[0])
	if err != nil {
		return "", err
	}
	p, err := e.conv.ToPointer(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%#x", uint64(p)), nil
}

func (e *Evaluator) cmdSignedPointer(args []string, rest string) (string, error) {
	if len(args) != 1 {
		return "", e.usageError("sptr")
	}
	n, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		return "", errors.WrapError(err, errors.KindValue, errors.CodeInvalidLiteral, "signed pointer must fit in 64 bits")
	}
	return e.conv.FromSignedPointer(n).String(), nil
}

func (e *Evaluator) cmdBytes(args []string, rest string) (string, error) {
	if len(args) < 2 {
		return "", e.usageError("bytes")
	}
	x, err := parseInt(args[0])
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return "", e.usageError("bytes")
	}
	le, signed, err := e.byteOrder(args, 2)
	if err != nil {
		return "", err
	}

	buf, err := e.conv.ToBytes(x, n, le, signed)
	if err != nil {
		return "", err
	}
	return dumpBytes(buf), nil
}

func (e *Evaluator) cmdFromBytes(args []string, rest string) (string, error) {
	if len(args) < 1 {
		return "", e.usageError("frombytes")
	}
	data, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(args[0]), "0x"))
	if err != nil {
		return "", errors.WrapError(err, errors.KindValue, errors.CodeInvalidLiteral, "invalid hex input")
	}
	le, signed, err := e.byteOrder(args, 1)
	if err != nil {
		return "", err
	}
	return marshal.FromByteArray(data, le, signed).String(), nil
}

func (e *Evaluator) cmdParse(args []string, rest string) (string, error) {
	if len(args) < 2 {
		return "", e.usageError("parse")
	}
	base, err := strconv.Atoi(args[0])
	if err != nil {
		return "", e.usageError("parse")
	}
	// only the separator after the base goes; the text keeps its whitespace
	text := strings.TrimPrefix(rest, args[0])
	if text != "" && (text[0] == ' ' || text[0] == '\t') {
		text = text[1:]
	}

	result, err := bigint.ParseWithBase(text, base)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s consumed=%d remainder=%q", result.Value, result.Consumed, result.Remainder), nil
}

func (e *Evaluator) cmdInspect(args []string, rest string) (string, error) {
	if len(args) != 1 {
		return "", e.usageError("inspect")
	}
	v, err := parseValue(args[0])
	if err != nil {
		return "", err
	}
	x, err := bigint.Index(v)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "value:      %s\n", x)
	fmt.Fprintf(&sb, "type:       %s (exact=%t)\n", bigint.TypeName(v), bigint.IsExact(v))
	fmt.Fprintf(&sb, "sign:       %d\n", bigint.Sign(x))
	fmt.Fprintf(&sb, "bit length: %d\n", bigint.BitLength(x))
	fmt.Fprintf(&sb, "compact:    %t\n", bigint.IsCompact(x))
	fmt.Fprintf(&sb, "min bytes:  %d unsigned, %d signed\n", marshal.MinBytes(x, false), marshal.MinBytes(x, true))
	for _, w := range e.conv.Table().Widths() {
		if w.Contains(x) {
			fmt.Fprintf(&sb, "fits:       %s\n", w.Name)
			break
		}
	}

	n := marshal.MinBytes(x, true)
	if n == 0 {
		n = 1
	}
	if buf, err := e.conv.ToBytes(x, n, false, true); err == nil {
		bs := funbit.NewBitStringFromBytes(buf)
		fmt.Fprintf(&sb, "binary:     %s\n", funbit.ToBinaryString(bs))
		fmt.Fprintf(&sb, "erlang:     %s", funbit.ToErlangFormat(bs))
	}
	return sb.String(), nil
}

func (e *Evaluator) cmdLimits(args []string, rest string) (string, error) {
	table := e.conv.Table()
	var sb strings.Builder
	fmt.Fprintf(&sb, "profile %s, %s endian\n", table.Profile, endianName(table.LittleEndian))
	for _, w := range table.Widths() {
		fmt.Fprintf(&sb, "%-20s %2d bits  [%s, %s]\n", w.Name, w.Bits, w.Min(), w.Max())
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (e *Evaluator) cmdEncode(args []string, rest string) (string, error) {
	if len(args) != 2 {
		return "", e.usageError("encode")
	}
	s, err := e.registry.GetSerializer(args[0])
	if err != nil {
		return "", err
	}
	x, err := parseInt(args[1])
	if err != nil {
		return "", err
	}
	data, err := s.Serialize(x)
	if err != nil {
		return "", err
	}
	if args[0] == "json" {
		return string(data), nil
	}
	return hex.EncodeToString(data), nil
}

func (e *Evaluator) cmdDecode(args []string, rest string) (string, error) {
	if len(args) != 2 {
		return "", e.usageError("decode")
	}
	s, err := e.registry.GetSerializer(args[0])
	if err != nil {
		return "", err
	}

	data := []byte(args[1])
	if args[0] != "json" {
		if data, err = hex.DecodeString(args[1]); err != nil {
			return "", errors.WrapError(err, errors.KindValue, errors.CodeInvalidLiteral, "invalid hex input")
		}
	}
	x, err := s.Deserialize(data)
	if err != nil {
		return "", err
	}
	return x.String(), nil
}

func (e *Evaluator) cmdLua(args []string, rest string) (string, error) {
	if rest == "" {
		return "", e.usageError("lua")
	}
	if e.lua == nil {
		return "", errors.NewSystemError(errors.CodeNotInitialized, "lua runtime is not available")
	}

	// try as an expression first so "intbridge.as_long(5)" prints its value
	results, err := e.lua.Eval("return " + rest)
	if convErr, ok := errors.AsConversionError(err); ok && convErr.Code == errors.CodeScriptSyntax {
		results, err = e.lua.Eval(rest)
	}
	if err != nil {
		return "", err
	}
	return strings.Join(results, "\t"), nil
}

// dumpBytes renders bytes as hex followed by funbit's hex dump.
func dumpBytes(buf []byte) string {
	if len(buf) == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("%s\n%s", hex.EncodeToString(buf), funbit.ToHexDump(funbit.NewBitStringFromBytes(buf)))
}

func endianName(little bool) string {
	if little {
		return "little"
	}
	return "big"
}
