// Package platform holds the range tables of the native C integer types.
// The process-wide table is resolved once, before the first conversion, and
// never changes afterwards.
package platform

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"intbridge/errors"

	"github.com/funvibe/funbit/pkg/funbit"
)

// Profile names a C data model.
type Profile string

const (
	// LP64 is the data model of 64-bit Unix: 32-bit int, 64-bit long and pointers.
	LP64 Profile = "lp64"
	// LLP64 is the data model of 64-bit Windows: long stays 32 bits.
	LLP64 Profile = "llp64"
	// ILP32 is the data model of 32-bit targets.
	ILP32 Profile = "ilp32"
)

// ParseProfile accepts the profile names case-insensitively. "auto" and ""
// select DetectProfile.
func ParseProfile(name string) (Profile, error) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(name))); p {
	case "", "auto":
		return DetectProfile(), nil
	case LP64, LLP64, ILP32:
		return p, nil
	default:
		return "", errors.NewSystemError(errors.CodePlatform, fmt.Sprintf("unknown platform profile %q", name))
	}
}

// DetectProfile derives the data model of the running binary.
func DetectProfile() Profile {
	switch {
	case strconv.IntSize == 32:
		return ILP32
	case runtime.GOOS == "windows":
		return LLP64
	default:
		return LP64
	}
}

// Table is the set of native widths for one data model.
type Table struct {
	Profile      Profile
	LittleEndian bool

	Int       Width
	UInt      Width
	Long      Width
	ULong     Width
	LongLong  Width
	ULongLong Width
	SSize     Width
	Size      Width
	Pointer   Width
}

// NewTable builds the table of a profile without registering it.
func NewTable(profile Profile) (*Table, error) {
	var longBits, wordBits uint
	switch profile {
	case LP64:
		longBits, wordBits = 64, 64
	case LLP64:
		longBits, wordBits = 32, 64
	case ILP32:
		longBits, wordBits = 32, 32
	default:
		return nil, errors.NewSystemError(errors.CodePlatform, fmt.Sprintf("unknown platform profile %q", profile))
	}

	return &Table{
		Profile:      profile,
		LittleEndian: funbit.GetNativeEndianness() == "little",
		Int:          mustWidth("int", 32, true),
		UInt:         mustWidth("unsigned int", 32, false),
		Long:         mustWidth("long", longBits, true),
		ULong:        mustWidth("unsigned long", longBits, false),
		LongLong:     mustWidth("long long", 64, true),
		ULongLong:    mustWidth("unsigned long long", 64, false),
		SSize:        mustWidth("ssize_t", wordBits, true),
		Size:         mustWidth("size_t", wordBits, false),
		Pointer:      mustWidth("void*", wordBits, false),
	}, nil
}

// Widths lists every width of the table.
func (t *Table) Widths() []Width {
	return []Width{t.Int, t.UInt, t.Long, t.ULong, t.LongLong, t.ULongLong, t.SSize, t.Size, t.Pointer}
}

// Lookup finds a width by its C type name. A few common aliases are
// accepted ("ulong", "ssize", "size", "ptr").
func (t *Table) Lookup(name string) (Width, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int":
		return t.Int, true
	case "uint", "unsigned int":
		return t.UInt, true
	case "long":
		return t.Long, true
	case "ulong", "unsigned long":
		return t.ULong, true
	case "longlong", "long long":
		return t.LongLong, true
	case "ulonglong", "unsigned long long":
		return t.ULongLong, true
	case "ssize", "ssize_t", "py_ssize_t":
		return t.SSize, true
	case "size", "size_t":
		return t.Size, true
	case "ptr", "pointer", "void*":
		return t.Pointer, true
	default:
		return Width{}, false
	}
}

var (
	resolveOnce sync.Once
	current     *Table
	resolveErr  error
)

// Init resolves the process-wide table with the given profile. Only the
// first resolution takes effect; a later Init with a different profile fails.
// An unknown profile is rejected without resolving anything.
func Init(profile Profile) (*Table, error) {
	table, err := NewTable(profile)
	if err != nil {
		return nil, err
	}
	resolveOnce.Do(func() {
		current = table
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	if current.Profile != profile {
		return current, errors.NewSystemError(errors.CodePlatform,
			fmt.Sprintf("platform already resolved as %s, cannot switch to %s", current.Profile, profile))
	}
	return current, nil
}

// Current returns the process-wide table, resolving it with DetectProfile if
// nothing called Init yet.
func Current() *Table {
	resolveOnce.Do(func() {
		current, resolveErr = NewTable(DetectProfile())
	})
	if resolveErr != nil {
		// DetectProfile only yields known profiles
		panic(resolveErr)
	}
	return current
}
