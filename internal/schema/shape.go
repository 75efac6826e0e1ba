// Package schema checks decoded week documents against a declared shape and
// reports every violation with the JSON path where it occurred.
package schema

// Kind is the JSON type a Node accepts.
type Kind int

const (
	KindString Kind = iota
	KindArray
	KindObject
	// KindMap is an object with arbitrary keys whose values all share Elem.
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject, KindMap:
		return "object"
	default:
		return "unknown"
	}
}

// Node describes one value in a document.
type Node struct {
	Kind Kind
	// Props lists the known fields of a KindObject node in document order.
	// Unknown fields are allowed.
	Props []Prop
	// Elem is the element shape for KindArray and the value shape for KindMap.
	Elem *Node
	// Format names an extra string constraint: "date" is the JSON Schema
	// full-date format, "weekday" is registered by Compile.
	Format string
}

// Prop is a named field of an object node.
type Prop struct {
	Name     string
	Required bool
	Node     *Node
}

const (
	FormatDate    = "date"
	FormatWeekday = "weekday"
)

// formatMessages is the violation message for a string failing each format.
var formatMessages = map[string]string{
	FormatDate:    "must be a date (YYYY-MM-DD)",
	FormatWeekday: "must be a weekday name",
}

func String() *Node                 { return &Node{Kind: KindString} }
func Formatted(format string) *Node { return &Node{Kind: KindString, Format: format} }
func ArrayOf(elem *Node) *Node      { return &Node{Kind: KindArray, Elem: elem} }
func MapOf(elem *Node) *Node        { return &Node{Kind: KindMap, Elem: elem} }
func Object(props ...Prop) *Node    { return &Node{Kind: KindObject, Props: props} }

func Required(name string, n *Node) Prop { return Prop{Name: name, Required: true, Node: n} }
func Optional(name string, n *Node) Prop { return Prop{Name: name, Node: n} }

// WeekShape is the declared shape of a week record.
var WeekShape = Object(
	Required("startDate", Formatted(FormatDate)),
	Required("endDate", Formatted(FormatDate)),
	Required("meals", ArrayOf(Object(
		Required("day", Formatted(FormatWeekday)),
		Required("meal", String()),
		Required("style", String()),
	))),
	Required("recipes", ArrayOf(Object(
		Required("day", Formatted(FormatWeekday)),
		Required("name", String()),
		Required("ingredients", ArrayOf(String())),
		Required("instructions", String()),
		Optional("prepSteps", ArrayOf(String())),
		Optional("tips", ArrayOf(String())),
	))),
	Required("groceryList", MapOf(ArrayOf(Object(
		Required("item", String()),
		Required("days", String()),
	)))),
)

// JSONSchema renders the shape as a JSON Schema document, written next to
// the content files for editors and external tooling.
func (n *Node) JSONSchema() map[string]any {
	out := map[string]any{"type": n.Kind.String()}
	switch n.Kind {
	case KindString:
		if n.Format != "" {
			out["format"] = n.Format
		}
	case KindArray:
		out["items"] = n.Elem.JSONSchema()
	case KindMap:
		out["additionalProperties"] = n.Elem.JSONSchema()
	case KindObject:
		props := map[string]any{}
		required := []any{}
		for _, p := range n.Props {
			props[p.Name] = p.Node.JSONSchema()
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out["properties"] = props
		out["required"] = required
	}
	return out
}
