// Package config holds the small set of constants and optional project
// settings shared across the toolchain: source file conventions, builtin
// names, and an optional on-disk project file.
package config

// Version is the current toolchain version.
var Version = "0.1.0"

const SourceFileExt = ".ruchy"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".ruchy"}

// TrimSourceExt removes a recognized source extension from a filename.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode is set by cmd/ruchy when invoked as `ruchy test`.
var IsTestMode = false

// Builtin constructor names for the Option/Result sum types.
const (
	SomeCtorName = "Some"
	NoneCtorName = "None"
	OkCtorName   = "Ok"
	ErrCtorName  = "Err"
)

// Builtin free-function names recognized by the interpreter's global scope.
const (
	PrintFuncName   = "print"
	PrintlnFuncName = "println"
	PanicFuncName   = "panic"
	LenFuncName     = "len"
	TypeOfFuncName  = "typeOf"
)
