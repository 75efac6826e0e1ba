package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"weekly-meals/internal/dateutil"
)

// FieldError is one violation at a JSON path such as "meals[2].day".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Result is the outcome of a validation run.
type Result struct {
	Valid  bool
	Errors []FieldError
}

func result(errs []FieldError) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

const resourceName = "week.schema.json"

var (
	compiled sync.Map // *Node -> *jsonschema.Schema
	printer  = message.NewPrinter(language.English)
)

// Compile turns shape into a JSON Schema validator with all formats asserted.
// Validators are cached per shape.
func Compile(shape *Node) (*jsonschema.Schema, error) {
	if sch, ok := compiled.Load(shape); ok {
		return sch.(*jsonschema.Schema), nil
	}

	data, err := json.Marshal(shape.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	c.RegisterFormat(&jsonschema.Format{Name: FormatWeekday, Validate: validateWeekday})
	if err := c.AddResource(resourceName, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	compiled.Store(shape, sch)
	return sch, nil
}

func validateWeekday(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if !dateutil.IsWeekday(s) {
		return fmt.Errorf("%q is not a weekday name", s)
	}
	return nil
}

// Validate checks doc, as produced by encoding/json or jsonschema.UnmarshalJSON,
// against shape and returns every violation ordered by path.
func Validate(doc any, shape *Node) (Result, error) {
	vs, err := violations(doc, shape)
	if err != nil {
		return Result{}, err
	}
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Path < vs[j].Path })
	return result(fieldErrors(vs)), nil
}

// violation is a FieldError plus where a missing property would sit.
type violation struct {
	FieldError
	missing bool
	parent  string
	rank    int
}

func fieldErrors(vs []violation) []FieldError {
	var errs []FieldError
	for _, v := range vs {
		errs = append(errs, v.FieldError)
	}
	return errs
}

func violations(doc any, shape *Node) ([]violation, error) {
	sch, err := Compile(shape)
	if err != nil {
		return nil, err
	}

	err = sch.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("failed to validate: %w", err)
	}

	var out []violation
	collect(verr, doc, shape, &out)
	return out, nil
}

// collect flattens the error tree into its leaves.
func collect(e *jsonschema.ValidationError, doc any, shape *Node, out *[]violation) {
	if len(e.Causes) > 0 {
		for _, c := range e.Causes {
			collect(c, doc, shape, out)
		}
		return
	}

	path, node := locate(doc, shape, e.InstanceLocation)
	add := func(msg string) {
		*out = append(*out, violation{FieldError: FieldError{Path: path, Message: msg}})
	}

	switch k := e.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			*out = append(*out, violation{
				FieldError: FieldError{Path: join(path, name), Message: "is required"},
				missing:    true,
				parent:     path,
				rank:       propRank(node, name),
			})
		}
	case *kind.Type:
		add(typeMessage(k.Want))
	case *kind.Format:
		msg, ok := formatMessages[k.Want]
		if !ok {
			msg = "must be a valid " + k.Want
		}
		add(msg)
	default:
		add(e.ErrorKind.LocalizedString(printer))
	}
}

func typeMessage(want []string) string {
	if len(want) != 1 {
		return "must be one of " + strings.Join(want, ", ")
	}
	article := "a"
	if strings.ContainsRune("aeiou", rune(want[0][0])) {
		article = "an"
	}
	return fmt.Sprintf("must be %s %s", article, want[0])
}

// locate converts a JSON pointer into the dotted path used in FieldError and
// finds the shape node it points at.
func locate(doc any, shape *Node, loc []string) (string, *Node) {
	path, v, n := "", doc, shape
	for _, seg := range loc {
		switch cur := v.(type) {
		case []any:
			path += "[" + seg + "]"
			v = nil
			if i, err := strconv.Atoi(seg); err == nil && i >= 0 && i < len(cur) {
				v = cur[i]
			}
		case map[string]any:
			path = join(path, seg)
			v = cur[seg]
		default:
			path = join(path, seg)
			v = nil
		}
		n = childNode(n, seg)
	}
	return path, n
}

func childNode(n *Node, seg string) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindArray, KindMap:
		return n.Elem
	case KindObject:
		for _, p := range n.Props {
			if p.Name == seg {
				return p.Node
			}
		}
	}
	return nil
}

func propRank(n *Node, name string) int {
	if n != nil {
		for i, p := range n.Props {
			if p.Name == name {
				return i
			}
		}
	}
	return math.MaxInt
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// layout records where each path opens and closes in the source document,
// counted in tokens, plus any object key that appears twice.
type layout struct {
	start      map[string]int
	end        map[string]int
	duplicates []FieldError
}

// scan reads data once as a token stream. The decoded document keeps only the
// last value of a repeated key, so repeats are reported here.
func scan(data []byte) (*layout, error) {
	l := &layout{start: map[string]int{}, end: map[string]int{}}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n := 0
	var value func(path string) error
	value = func(path string) error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if _, seen := l.start[path]; !seen {
			l.start[path] = n
		}
		n++

		switch tok {
		case json.Delim('{'):
			keys := map[string]bool{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := keyTok.(string)
				child := join(path, key)
				if keys[key] {
					l.duplicates = append(l.duplicates, FieldError{Path: child, Message: "is a duplicate key"})
				}
				keys[key] = true
				if err := value(child); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
		case json.Delim('['):
			for i := 0; dec.More(); i++ {
				if err := value(fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
		}

		l.end[path] = n
		n++
		return nil
	}

	if err := value(""); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return l, nil
}

// order sorts violations as they appear in the document. A missing property
// sorts at the close of its parent, in shape order.
func (l *layout) order(vs []violation) {
	pos := func(v violation) (int, int) {
		if v.missing {
			return l.end[v.parent], v.rank
		}
		return l.start[v.Path], -1
	}
	sort.SliceStable(vs, func(i, j int) bool {
		pi, ri := pos(vs[i])
		pj, rj := pos(vs[j])
		if pi != pj {
			return pi < pj
		}
		return ri < rj
	})
}

// ValidateWeek checks a serialized week record against WeekShape and the
// record rules: the start date is a Monday, endDate is six days after it, and
// no recipe has both an instructions line and prep steps. Repeated object keys
// are violations. Malformed JSON is returned as an error rather than a Result.
func ValidateWeek(data []byte) (Result, error) {
	l, err := scan(data)
	if err != nil {
		return Result{}, fmt.Errorf("failed to decode week JSON: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("failed to decode week JSON: %w", err)
	}

	vs, err := violations(doc, WeekShape)
	if err != nil {
		return Result{}, err
	}
	for _, d := range l.duplicates {
		vs = append(vs, violation{FieldError: d})
	}
	l.order(vs)
	errs := fieldErrors(vs)

	if values, ok := doc.(map[string]any); ok {
		errs = append(errs, checkDates(values)...)
		errs = append(errs, checkProcedures(values)...)
	}
	return result(errs), nil
}

func checkDates(values map[string]any) []FieldError {
	start, _ := values["startDate"].(string)
	end, _ := values["endDate"].(string)

	startDate, err := dateutil.ParseDate(start)
	if err != nil {
		return nil
	}

	var errs []FieldError
	if startDate.Weekday().String() != "Monday" {
		errs = append(errs, FieldError{Path: "startDate", Message: "must be a Monday"})
	}
	if _, err := dateutil.ParseDate(end); err != nil {
		return errs
	}
	if want, _ := dateutil.EndDate(start); want != strings.TrimSpace(end) {
		errs = append(errs, FieldError{Path: "endDate", Message: fmt.Sprintf("must be 6 days after startDate (%s)", want)})
	}
	return errs
}

func checkProcedures(values map[string]any) []FieldError {
	recipes, _ := values["recipes"].([]any)

	var errs []FieldError
	for i, r := range recipes {
		fields, ok := r.(map[string]any)
		if !ok {
			continue
		}
		instructions, _ := fields["instructions"].(string)
		steps, _ := fields["prepSteps"].([]any)
		if strings.TrimSpace(instructions) != "" && len(steps) > 0 {
			errs = append(errs, FieldError{
				Path:    fmt.Sprintf("recipes[%d]", i),
				Message: "must not have both instructions and prepSteps",
			})
		}
	}
	return errs
}
