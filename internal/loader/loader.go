// Package loader reads designs written in CUE.
//
// A design directory holds one CUE package describing cells and nets:
//
//	cell: A: {type: "LUT4", port: {Q: "out", I0: "in"}}
//	cell: B: {type: "DFF", port: {D: "in"}, attr: {INIT: "0"}}
//	net: n1: {driver: "A.Q", users: ["B.D"]}
//
// Port references are "cell.port", split at the last dot. Users keep the
// order they are written in.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/netmut/internal/netlist"
)

// Error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build or schema failure

	ErrCodeInvalidCell   = "E201" // Cell or port declaration rejected
	ErrCodeInvalidNet    = "E202" // Net declaration rejected
	ErrCodeInvalidDesign = "E203" // Declarations violate netlist invariants
	ErrCodeEmptyDesign   = "E204" // No cells or nets declared
)

// LoadError is a design loading failure with its CUE position when known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
	Err     error // underlying cause, e.g. a *netlist.CheckError for E203
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// schema constrains the shape of a design before it is compiled.
const schema = `
cell?: [string]: close({
	type: string
	port?: [string]: "out" | "in" | "inout"
	attr?: [string]: string
})
net?: [string]: close({
	driver?: string
	users?: [...string]
})
`

// LoadDesign loads every CUE file of the package in dir and builds a design.
func LoadDesign(dir string) (*netlist.Design, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("design directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing design directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, cueError(ErrCodeBuildFailed, err)
	}
	return CompileDesign(value)
}

// LoadDesignString compiles a design from CUE source.
func LoadDesignString(filename, src string) (*netlist.Design, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, cueError(ErrCodeBuildFailed, err)
	}
	return CompileDesign(value)
}

// CompileDesign turns a CUE value holding cell and net declarations into a
// validated design.
func CompileDesign(v cue.Value) (*netlist.Design, error) {
	sch := v.Context().CompileString(schema, cue.Filename("schema.cue"))
	if err := sch.Err(); err != nil {
		return nil, cueError(ErrCodeGeneric, err)
	}
	unified := sch.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(ErrCodeBuildFailed, err)
	}

	var snap netlist.Snapshot
	if err := compileCells(unified, &snap); err != nil {
		return nil, err
	}
	if err := compileNets(unified, &snap); err != nil {
		return nil, err
	}
	if len(snap.Cells) == 0 && len(snap.Nets) == 0 {
		return nil, &LoadError{Code: ErrCodeEmptyDesign, Message: "no cells or nets found in design", Pos: v.Pos()}
	}

	d, err := netlist.FromSnapshot(snap)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidDesign, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return d, nil
}

func compileCells(v cue.Value, snap *netlist.Snapshot) error {
	cells := v.LookupPath(cue.ParsePath("cell"))
	if !cells.Exists() {
		return nil
	}
	iter, err := cells.Fields()
	if err != nil {
		return cueError(ErrCodeInvalidCell, err)
	}
	for iter.Next() {
		cv := iter.Value()
		cs := netlist.CellSnapshot{Name: iter.Label()}

		if cs.Type, err = cv.LookupPath(cue.ParsePath("type")).String(); err != nil {
			return cueError(ErrCodeInvalidCell, err)
		}

		if ports := cv.LookupPath(cue.ParsePath("port")); ports.Exists() {
			pit, err := ports.Fields()
			if err != nil {
				return cueError(ErrCodeInvalidCell, err)
			}
			for pit.Next() {
				dir, err := pit.Value().String()
				if err != nil {
					return cueError(ErrCodeInvalidCell, err)
				}
				cs.Ports = append(cs.Ports, netlist.PortSnapshot{Name: pit.Label(), Type: dir})
			}
		}

		if attrs := cv.LookupPath(cue.ParsePath("attr")); attrs.Exists() {
			cs.Attrs = make(map[string]string)
			if err := attrs.Decode(&cs.Attrs); err != nil {
				return cueError(ErrCodeInvalidCell, err)
			}
		}

		snap.Cells = append(snap.Cells, cs)
	}
	return nil
}

func compileNets(v cue.Value, snap *netlist.Snapshot) error {
	nets := v.LookupPath(cue.ParsePath("net"))
	if !nets.Exists() {
		return nil
	}
	iter, err := nets.Fields()
	if err != nil {
		return cueError(ErrCodeInvalidNet, err)
	}
	for iter.Next() {
		nv := iter.Value()
		ns := netlist.NetSnapshot{Name: iter.Label()}

		if dv := nv.LookupPath(cue.ParsePath("driver")); dv.Exists() {
			ref, err := portRef(dv)
			if err != nil {
				return err
			}
			ns.Driver = &ref
		}

		if uv := nv.LookupPath(cue.ParsePath("users")); uv.Exists() {
			uit, err := uv.List()
			if err != nil {
				return cueError(ErrCodeInvalidNet, err)
			}
			for uit.Next() {
				ref, err := portRef(uit.Value())
				if err != nil {
					return err
				}
				ns.Users = append(ns.Users, ref)
			}
		}

		snap.Nets = append(snap.Nets, ns)
	}
	return nil
}

func portRef(v cue.Value) (netlist.PortRef, error) {
	s, err := v.String()
	if err != nil {
		return netlist.PortRef{}, cueError(ErrCodeInvalidNet, err)
	}
	ref, err := netlist.ParsePortRef(s)
	if err != nil {
		return netlist.PortRef{}, &LoadError{Code: ErrCodeInvalidNet, Message: err.Error(), Pos: v.Pos()}
	}
	return ref, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// cueError converts the first CUE error into a LoadError with its position.
func cueError(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
