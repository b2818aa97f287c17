package script

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/roach88/netmut/internal/netlist"
)

// Op kinds.
const (
	KindConnect      = "connect"
	KindDisconnect   = "disconnect"
	KindConnectPorts = "connect_ports"
	KindReplacePort  = "replace_port"
	KindRenamePort   = "rename_port"
	KindRenameNet    = "rename_net"
	KindReplaceBus   = "replace_bus"
	KindCopyPort     = "copy_port"
	KindCopyBus      = "copy_bus"
)

// Op is one mutation of a design.
//
// Apply may panic with a *netlist.InvariantError; callers run it under
// netlist.Guard.
type Op interface {
	Kind() string
	Apply(d *netlist.Design)
	Args() map[string]any
}

// Connect attaches Port to the existing net Net.
type Connect struct {
	Net  string          `mapstructure:"net"`
	Port netlist.PortRef `mapstructure:"port"`
}

func (o *Connect) Kind() string { return KindConnect }

func (o *Connect) Apply(d *netlist.Design) { d.Connect(o.Net, o.Port.Cell, o.Port.Port) }

func (o *Connect) Args() map[string]any {
	return map[string]any{"net": o.Net, "port": refArg(o.Port)}
}

func (o *Connect) validate() error {
	if o.Net == "" {
		return fmt.Errorf("missing net")
	}
	return requireRef("port", o.Port)
}

// Disconnect detaches Port from whatever net it is on.
type Disconnect struct {
	Port netlist.PortRef `mapstructure:"port"`
}

func (o *Disconnect) Kind() string { return KindDisconnect }

func (o *Disconnect) Apply(d *netlist.Design) { d.Disconnect(o.Port.Cell, o.Port.Port) }

func (o *Disconnect) Args() map[string]any {
	return map[string]any{"port": refArg(o.Port)}
}

func (o *Disconnect) validate() error { return requireRef("port", o.Port) }

// ConnectPorts puts To on the net of From, creating that net if needed.
type ConnectPorts struct {
	From netlist.PortRef `mapstructure:"from"`
	To   netlist.PortRef `mapstructure:"to"`
}

func (o *ConnectPorts) Kind() string { return KindConnectPorts }

func (o *ConnectPorts) Apply(d *netlist.Design) {
	d.ConnectPorts(o.From.Cell, o.From.Port, o.To.Cell, o.To.Port)
}

func (o *ConnectPorts) Args() map[string]any {
	return map[string]any{"from": refArg(o.From), "to": refArg(o.To)}
}

func (o *ConnectPorts) validate() error { return requireRefs(o.From, o.To) }

// ReplacePort moves the connection of Old onto New.
type ReplacePort struct {
	Old netlist.PortRef `mapstructure:"old"`
	New netlist.PortRef `mapstructure:"new"`
}

func (o *ReplacePort) Kind() string { return KindReplacePort }

func (o *ReplacePort) Apply(d *netlist.Design) {
	d.ReplacePort(o.Old.Cell, o.Old.Port, o.New.Cell, o.New.Port)
}

func (o *ReplacePort) Args() map[string]any {
	return map[string]any{"old": refArg(o.Old), "new": refArg(o.New)}
}

func (o *ReplacePort) validate() error {
	if err := requireRef("old", o.Old); err != nil {
		return err
	}
	return requireRef("new", o.New)
}

// RenamePort renames Port to To on the same cell.
type RenamePort struct {
	Port netlist.PortRef `mapstructure:"port"`
	To   string          `mapstructure:"to"`
}

func (o *RenamePort) Kind() string { return KindRenamePort }

func (o *RenamePort) Apply(d *netlist.Design) { d.RenamePort(o.Port.Cell, o.Port.Port, o.To) }

func (o *RenamePort) Args() map[string]any {
	return map[string]any{"port": refArg(o.Port), "to": o.To}
}

func (o *RenamePort) validate() error {
	if err := requireRef("port", o.Port); err != nil {
		return err
	}
	if o.To == "" {
		return fmt.Errorf("missing to")
	}
	return nil
}

// RenameNet renames net From to To.
type RenameNet struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

func (o *RenameNet) Kind() string { return KindRenameNet }

func (o *RenameNet) Apply(d *netlist.Design) { d.RenameNet(o.From, o.To) }

func (o *RenameNet) Args() map[string]any {
	return map[string]any{"from": o.From, "to": o.To}
}

func (o *RenameNet) validate() error {
	if o.From == "" {
		return fmt.Errorf("missing from")
	}
	if o.To == "" {
		return fmt.Errorf("missing to")
	}
	return nil
}

// CopyPort declares To with the type of From and puts it on From's net.
type CopyPort struct {
	From netlist.PortRef `mapstructure:"from"`
	To   netlist.PortRef `mapstructure:"to"`
}

func (o *CopyPort) Kind() string { return KindCopyPort }

func (o *CopyPort) Apply(d *netlist.Design) {
	d.CopyPort(o.From.Cell, o.From.Port, o.To.Cell, o.To.Port)
}

func (o *CopyPort) Args() map[string]any {
	return map[string]any{"from": refArg(o.From), "to": refArg(o.To)}
}

func (o *CopyPort) validate() error { return requireRefs(o.From, o.To) }

// ReplaceBus replaces Width bits of Old with the matching bits of New.
type ReplaceBus struct {
	Old   netlist.Bus `mapstructure:"old"`
	New   netlist.Bus `mapstructure:"new"`
	Width int         `mapstructure:"width"`
}

func (o *ReplaceBus) Kind() string { return KindReplaceBus }

func (o *ReplaceBus) Apply(d *netlist.Design) { d.ReplaceBus(o.Old, o.New, o.Width) }

func (o *ReplaceBus) Args() map[string]any {
	return map[string]any{"old": busArg(o.Old), "new": busArg(o.New), "width": o.Width}
}

func (o *ReplaceBus) validate() error { return requireBuses(o.Old, o.New, o.Width) }

// CopyBus copies Width bits of From onto the matching bits of To.
type CopyBus struct {
	From  netlist.Bus `mapstructure:"from"`
	To    netlist.Bus `mapstructure:"to"`
	Width int         `mapstructure:"width"`
}

func (o *CopyBus) Kind() string { return KindCopyBus }

func (o *CopyBus) Apply(d *netlist.Design) { d.CopyBus(o.From, o.To, o.Width) }

func (o *CopyBus) Args() map[string]any {
	return map[string]any{"from": busArg(o.From), "to": busArg(o.To), "width": o.Width}
}

func (o *CopyBus) validate() error { return requireBuses(o.From, o.To, o.Width) }

var factories = map[string]func() Op{
	KindConnect:      func() Op { return &Connect{} },
	KindDisconnect:   func() Op { return &Disconnect{} },
	KindConnectPorts: func() Op { return &ConnectPorts{} },
	KindReplacePort:  func() Op { return &ReplacePort{} },
	KindRenamePort:   func() Op { return &RenamePort{} },
	KindRenameNet:    func() Op { return &RenameNet{} },
	KindReplaceBus:   func() Op { return &ReplaceBus{} },
	KindCopyPort:     func() Op { return &CopyPort{} },
	KindCopyBus:      func() Op { return &CopyBus{} },
}

// Kinds returns every known op kind, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Decode builds an op of the given kind from its argument map.
// Unknown keys and missing required arguments are errors.
func Decode(kind string, args map[string]any) (Op, error) {
	newOp, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown op %q", kind)
	}
	op := newOp()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  portRefHook,
		ErrorUnused: true,
		Result:      op,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	if err := dec.Decode(args); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	if v, ok := op.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
	}
	return op, nil
}

var portRefType = reflect.TypeOf(netlist.PortRef{})

// portRefHook lets a port reference be written as "cell.port".
func portRefHook(from, to reflect.Type, data any) (any, error) {
	if to != portRefType || from.Kind() != reflect.String {
		return data, nil
	}
	return netlist.ParsePortRef(data.(string))
}

func refArg(r netlist.PortRef) map[string]any {
	return map[string]any{"cell": r.Cell, "port": r.Port}
}

func busArg(b netlist.Bus) map[string]any {
	return map[string]any{
		"cell":     b.Cell,
		"base":     b.Base,
		"offset":   b.Offset,
		"brackets": b.Brackets,
	}
}

func requireRef(field string, r netlist.PortRef) error {
	if r.Cell == "" || r.Port == "" {
		return fmt.Errorf("missing or incomplete %s", field)
	}
	return nil
}

func requireRefs(from, to netlist.PortRef) error {
	if err := requireRef("from", from); err != nil {
		return err
	}
	return requireRef("to", to)
}

func requireBuses(a, b netlist.Bus, width int) error {
	if a.Cell == "" || a.Base == "" || b.Cell == "" || b.Base == "" {
		return fmt.Errorf("bus needs cell and base")
	}
	if width < 0 {
		return fmt.Errorf("negative width %d", width)
	}
	return nil
}
