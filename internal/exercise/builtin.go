package exercise

import (
	"bytes"
	_ "embed"

	"github.com/verte-zerg/ditado/internal/model"
)

//go:embed builtin.toml
var builtinTOML []byte

// Builtin returns the exercises bundled with the binary.
func Builtin() []model.Exercise {
	exercises, err := DecodeTOML(bytes.NewReader(builtinTOML))
	if err != nil {
		panic("builtin exercises are invalid: " + err.Error())
	}
	return exercises
}

// BuiltinTOML returns the bundled exercise file, usable as a starting template.
func BuiltinTOML() []byte {
	return bytes.Clone(builtinTOML)
}
