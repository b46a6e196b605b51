package ifc

import (
	"fmt"
	"strings"

	"github.com/chazu/bimgen/pkg/model"
)

// elementTypes are the STEP types counted as physical elements. Opening
// elements are voids and are not counted; their fillings are.
var elementTypes = map[string]bool{
	"IFCWALL":                      true,
	"IFCSLAB":                      true,
	"IFCROOF":                      true,
	"IFCSTAIR":                     true,
	"IFCWINDOW":                    true,
	"IFCDOOR":                      true,
	"IFCSANITARYTERMINAL":          true,
	"IFCELECTRICDISTRIBUTIONBOARD": true,
	"IFCUNITARYEQUIPMENT":          true,
	"IFCFLOWTERMINAL":              true,
}

// Object is a rooted object read back from a file with its property set.
type Object struct {
	GlobalID   string
	Type       string
	Name       string
	SetName    string
	Properties []model.Property
}

// Story is a building storey read back from a file.
type Story struct {
	GlobalID  string
	Name      string
	Elevation float64
}

// Summary is what a file says about the building.
type Summary struct {
	Types     map[string]int // instance count per STEP type
	Elements  int
	Stories   []Story // file order
	Objects   map[string]*Object
	Relations int
}

// Summarize extracts the objects, stories and property values of a
// parsed file.
func Summarize(f *File) (*Summary, error) {
	s := &Summary{Types: make(map[string]int), Objects: make(map[string]*Object)}
	byRef := make(map[int]*Object)
	guids := make(map[string]int)

	for _, id := range f.Order {
		inst := f.Instances[id]
		s.Types[inst.Type]++
		if elementTypes[inst.Type] {
			s.Elements++
		}
		if strings.HasPrefix(inst.Type, "IFCREL") {
			s.Relations++
		}
		if !carriesGlobalID(inst.Type) {
			continue
		}
		guid, _ := arg(inst, 0).(string)
		if _, err := Expand(guid); err != nil {
			return nil, fmt.Errorf("#%d: %w", id, err)
		}
		if first, dup := guids[guid]; dup {
			return nil, fmt.Errorf("#%d: duplicate GlobalId %s (first used by #%d)", id, guid, first)
		}
		guids[guid] = id
	}

	for _, id := range f.Order {
		inst := f.Instances[id]
		if !rooted(inst.Type) {
			continue
		}
		guid, _ := arg(inst, 0).(string)
		name, _ := arg(inst, 2).(string)
		obj := &Object{GlobalID: guid, Type: inst.Type, Name: name}
		s.Objects[guid] = obj
		byRef[id] = obj

		if inst.Type == "IFCBUILDINGSTOREY" {
			elev, _ := arg(inst, 9).(float64)
			s.Stories = append(s.Stories, Story{GlobalID: guid, Name: name, Elevation: elev})
		}
	}

	for _, rel := range f.ByType("IFCRELDEFINESBYPROPERTIES") {
		pset := f.Get(refArg(rel, 5))
		if pset == nil || pset.Type != "IFCPROPERTYSET" {
			return nil, fmt.Errorf("#%d: relating definition is not a property set", rel.ID)
		}
		setName, _ := arg(pset, 2).(string)
		props, err := properties(f, pset)
		if err != nil {
			return nil, err
		}
		objects, _ := arg(rel, 4).([]any)
		for _, o := range objects {
			r, _ := o.(Ref)
			obj, ok := byRef[int(r)]
			if !ok {
				return nil, fmt.Errorf("#%d: property set assigned to non-object #%d", rel.ID, int(r))
			}
			obj.SetName = setName
			obj.Properties = props
		}
	}
	return s, nil
}

// rooted reports whether instances of typ carry a GlobalId and a name in
// their first attributes and may own a property set.
func rooted(typ string) bool {
	switch typ {
	case "IFCPROJECT", "IFCSITE", "IFCBUILDING", "IFCBUILDINGSTOREY", "IFCSPACE", "IFCOPENINGELEMENT":
		return true
	}
	return elementTypes[typ]
}

// carriesGlobalID reports whether instances of typ start with a GlobalId.
func carriesGlobalID(typ string) bool {
	return rooted(typ) || typ == "IFCPROPERTYSET" || strings.HasPrefix(typ, "IFCREL")
}

func properties(f *File, pset *Instance) ([]model.Property, error) {
	items, _ := arg(pset, 4).([]any)
	out := make([]model.Property, 0, len(items))
	for _, item := range items {
		r, _ := item.(Ref)
		single := f.Get(r)
		if single == nil || single.Type != "IFCPROPERTYSINGLEVALUE" {
			return nil, fmt.Errorf("#%d: unsupported property #%d", pset.ID, int(r))
		}
		name, _ := arg(single, 0).(string)
		typed, ok := arg(single, 2).(Typed)
		if !ok {
			return nil, fmt.Errorf("#%d: property %s has no typed value", single.ID, name)
		}
		v, err := propertyValue(typed)
		if err != nil {
			return nil, fmt.Errorf("#%d: property %s: %w", single.ID, name, err)
		}
		out = append(out, model.Property{Name: name, Value: v})
	}
	return out, nil
}

// propertyValue maps a typed STEP measure back onto a model value.
func propertyValue(t Typed) (model.Value, error) {
	switch t.Type {
	case "IFCLABEL":
		if s, ok := t.Value.(string); ok {
			return model.Label(s), nil
		}
	case "IFCREAL":
		if f, ok := t.Value.(float64); ok {
			return model.Real(f), nil
		}
	case "IFCLENGTHMEASURE":
		if f, ok := t.Value.(float64); ok {
			return model.Length(f), nil
		}
	case "IFCINTEGER":
		if n, ok := t.Value.(int64); ok {
			return model.Integer(n), nil
		}
	case "IFCBOOLEAN":
		if e, ok := t.Value.(Enum); ok && (e == "T" || e == "F") {
			return model.Bool(e == "T"), nil
		}
	default:
		return nil, fmt.Errorf("unsupported measure %s", t.Type)
	}
	return nil, fmt.Errorf("%s holds %T", t.Type, t.Value)
}

func arg(inst *Instance, i int) any {
	if i < 0 || i >= len(inst.Args) {
		return nil
	}
	return inst.Args[i]
}

func refArg(inst *Instance, i int) Ref {
	r, _ := arg(inst, i).(Ref)
	return r
}
