package gen

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"union-generator/internal/model"
)

//go:generate go tool stringer -type=UnitKind -linecomment -output=unitkind_string.go

// UnitKind distinguishes the two kinds of emitted source.
type UnitKind int

const (
	UnitScaffold UnitKind = iota // scaffold
	UnitTarget                   // target
)

// Unit is one emitted Go source file.
type Unit struct {
	// ID is stable across passes for the same arity or target.
	ID   string
	Kind UnitKind
	// Dir and Filename locate the file the unit is published to.
	Dir      string
	Filename string
	Content  []byte
	// Hash is the xxhash digest of Content.
	Hash uint64
}

// Path returns the file the unit is published to.
func (u Unit) Path() string {
	return joinPath(u.Dir, u.Filename)
}

// ScaffoldID returns the unit ID of the scaffold for arity.
func ScaffoldID(arity int) string {
	return unitID("scaffold:" + strconv.Itoa(arity))
}

// TargetID returns the unit ID of the augmentation of target.
func TargetID(target *model.UnionTarget) string {
	return unitID("target:" + target.ID())
}

func unitID(identity string) string {
	return strconv.FormatUint(xxhash.Sum64String(identity), 16)
}

func newUnit(id string, kind UnitKind, dir, filename string, content []byte) Unit {
	return Unit{
		ID:       id,
		Kind:     kind,
		Dir:      dir,
		Filename: filename,
		Content:  content,
		Hash:     xxhash.Sum64(content),
	}
}
