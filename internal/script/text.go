package script

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// textLexer tokenizes the line-oriented script format.
var textLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_$][A-Za-z0-9_$]*`},
	{Name: "Punct", Pattern: `[.\[\]]`},
})

type textScript struct {
	Stmts []*textStmt `@@*`
}

// textStmt is one statement; exactly one field is set.
type textStmt struct {
	Pos lexer.Position

	Connect      *textConnect    `  "connect" @@`
	Disconnect   *textRef        `| "disconnect" @@`
	ConnectPorts *textRefPair    `| "connect_ports" @@`
	ReplacePort  *textRefPair    `| "replace_port" @@`
	RenamePort   *textRenamePort `| "rename_port" @@`
	RenameNet    *textNamePair   `| "rename_net" @@`
	CopyPort     *textRefPair    `| "copy_port" @@`
	ReplaceBus   *textBusPair    `| "replace_bus" @@`
	CopyBus      *textBusPair    `| "copy_bus" @@`
}

type textConnect struct {
	Net  string   `@(Ident | String)`
	Port *textRef `@@`
}

// textRef is cell.port; the port may carry an index, D[3].
type textRef struct {
	Cell string `@(Ident | String) "."`
	Port string `@(Ident | String) ( @"[" @Int @"]" )?`
}

type textRefPair struct {
	From *textRef `@@`
	To   *textRef `@@`
}

type textRenamePort struct {
	Port *textRef `@@`
	To   string   `@(Ident | String)`
}

type textNamePair struct {
	From string `@(Ident | String)`
	To   string `@(Ident | String)`
}

// textBus is cell.base, cell.base[] for bracketed bits, then the offset.
type textBus struct {
	Cell     string `@(Ident | String) "."`
	Base     string `@(Ident | String)`
	Brackets bool   `( @"[" "]" )?`
	Offset   int    `@Int`
}

type textBusPair struct {
	From  *textBus `@@`
	To    *textBus `@@`
	Width int      `@Int`
}

var textParser = participle.MustBuild[textScript](
	participle.Lexer(textLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// ParseText parses the text script format. filename is used in error
// positions only.
//
//	connect n1 A.Q
//	replace_bus A.DATA[] 0 C.DIN 4 8
func ParseText(filename, src string) ([]Op, error) {
	ast, err := textParser.ParseString(filename, src)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	ops := make([]Op, 0, len(ast.Stmts))
	for _, st := range ast.Stmts {
		kind, args := st.args()
		op, err := Decode(kind, args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Pos, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// args lowers a statement to the argument map Decode accepts.
func (s *textStmt) args() (string, map[string]any) {
	switch {
	case s.Connect != nil:
		return KindConnect, map[string]any{"net": s.Connect.Net, "port": s.Connect.Port.arg()}
	case s.Disconnect != nil:
		return KindDisconnect, map[string]any{"port": s.Disconnect.arg()}
	case s.ConnectPorts != nil:
		return KindConnectPorts, s.ConnectPorts.args("from", "to")
	case s.ReplacePort != nil:
		return KindReplacePort, s.ReplacePort.args("old", "new")
	case s.RenamePort != nil:
		return KindRenamePort, map[string]any{"port": s.RenamePort.Port.arg(), "to": s.RenamePort.To}
	case s.RenameNet != nil:
		return KindRenameNet, map[string]any{"from": s.RenameNet.From, "to": s.RenameNet.To}
	case s.CopyPort != nil:
		return KindCopyPort, s.CopyPort.args("from", "to")
	case s.ReplaceBus != nil:
		return KindReplaceBus, s.ReplaceBus.args("old", "new")
	default:
		return KindCopyBus, s.CopyBus.args("from", "to")
	}
}

func (r *textRef) arg() map[string]any {
	return map[string]any{"cell": r.Cell, "port": r.Port}
}

func (p *textRefPair) args(from, to string) map[string]any {
	return map[string]any{from: p.From.arg(), to: p.To.arg()}
}

func (b *textBus) arg() map[string]any {
	return map[string]any{"cell": b.Cell, "base": b.Base, "offset": b.Offset, "brackets": b.Brackets}
}

func (p *textBusPair) args(from, to string) map[string]any {
	return map[string]any{from: p.From.arg(), to: p.To.arg(), "width": p.Width}
}
