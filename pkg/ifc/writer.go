// Package ifc serializes a classified building model to an IFC4 STEP
// physical file and reads such files back for inspection.
package ifc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/bimgen/pkg/classify"
	"github.com/chazu/bimgen/pkg/model"
	"github.com/chazu/bimgen/pkg/relate"
)

// Options fills the file header. Nothing is taken from the clock, the
// environment or the output path, so equal inputs give byte-identical
// files.
type Options struct {
	// FileName is the header's file name; the project name with an .ifc
	// extension when empty.
	FileName     string
	Author       string
	Organization string
	Timestamp    time.Time
	Version      string
}

// SerializationError reports an entity that cannot be written. No file
// is produced when it occurs.
type SerializationError struct {
	Entity  model.ID
	Name    string
	Message string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize %s %q: %s", e.Entity, e.Name, e.Message)
}

// WriteFile encodes the model and writes it to path. The file is written
// to a temporary sibling and renamed into place, so a failed run never
// leaves a partial file behind.
func WriteFile(path string, m *model.Model, g *relate.Graph, opts Options) error {
	data, err := Encode(m, g, opts)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// Encode renders the model as an IFC4 STEP file.
func Encode(m *model.Model, g *relate.Graph, opts Options) ([]byte, error) {
	root := m.Root()
	if root == nil {
		return nil, &SerializationError{Message: "model has no project"}
	}
	if opts.FileName == "" {
		opts.FileName = orDefault(root.Name, "bimgen") + ".ifc"
	}
	e := &encoder{
		m:          m,
		g:          g,
		opts:       opts,
		guids:      GlobalIDs(m),
		products:   make(map[model.ID]ref),
		placements: make(map[model.ID]ref),
		voids:      make(map[model.ID]ref),
		materials:  make(map[string]ref),
		layerSets:  make(map[string]ref),
	}
	e.preamble()
	if err := e.walk(root); err != nil {
		return nil, err
	}
	if len(e.products) != m.Len() {
		for _, ent := range m.Entities() {
			if _, ok := e.products[ent.ID]; !ok {
				return nil, &SerializationError{Entity: ent.ID, Name: ent.Name,
					Message: "not reachable from the project"}
			}
		}
	}
	if err := e.relationships(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	e.header(&out)
	out.WriteString("DATA;\n")
	out.Write(e.w.buf.Bytes())
	out.WriteString("ENDSEC;\nEND-ISO-10303-21;\n")
	return out.Bytes(), nil
}

// GlobalIDs returns the GlobalId of every entity. Ids derive from the
// project name and the chain of names leading to the entity. Each name
// is quoted, so a name can never spell out a separator or the "#n"
// suffix given to repeated names.
func GlobalIDs(m *model.Model) map[model.ID]string {
	project := ""
	if root := m.Root(); root != nil {
		project = root.Name
	}
	paths := make(map[model.ID]string, m.Len())
	seen := make(map[string]int)
	out := make(map[model.ID]string, m.Len())
	for _, ent := range m.Entities() {
		p := ent.Kind.String() + ":" + strconv.Quote(ent.Name)
		if parent, ok := paths[ent.Parent]; ok {
			p = parent + "/" + p
		}
		if n := seen[p]; n > 0 {
			seen[p]++
			p = fmt.Sprintf("%s#%d", p, n)
		} else {
			seen[p] = 1
		}
		paths[ent.ID] = p
		out[ent.ID] = GlobalID(project, p)
	}
	return out
}

type encoder struct {
	m    *model.Model
	g    *relate.Graph
	opts Options
	w    dataWriter

	guids      map[model.ID]string
	products   map[model.ID]ref // object written for each entity
	placements map[model.ID]ref
	voids      map[model.ID]ref // opening element behind each window or door
	materials  map[string]ref
	layerSets  map[string]ref

	owner   ref
	units   ref
	context ref
	body    ref
}

func (e *encoder) header(out *bytes.Buffer) {
	stamp := e.opts.Timestamp.UTC().Format("2006-01-02T15:04:05")
	out.WriteString("ISO-10303-21;\nHEADER;\n")
	fmt.Fprintf(out, "FILE_DESCRIPTION((%s),%s);\n", str("ViewDefinition [ReferenceView]"), str("2;1"))
	fmt.Fprintf(out, "FILE_NAME(%s,%s,(%s),(%s),%s,%s,%s);\n",
		str(e.opts.FileName), str(stamp), str(e.opts.Author), str(e.opts.Organization),
		str(strings.TrimSpace("bimgen "+e.opts.Version)), str("bimgen"), str(""))
	out.WriteString("FILE_SCHEMA(('IFC4'));\nENDSEC;\n")
}

// preamble writes the owner history, units and representation contexts
// shared by every object.
func (e *encoder) preamble() {
	w := &e.w
	person := w.add("IFCPERSON", unset, optStr(e.opts.Author), unset, unset, unset, unset, unset, unset)
	org := w.add("IFCORGANIZATION", unset, str(orDefault(e.opts.Organization, "bimgen")), unset, unset, unset)
	user := w.add("IFCPERSONANDORGANIZATION", person.String(), org.String(), unset)
	app := w.add("IFCAPPLICATION", org.String(), str(orDefault(e.opts.Version, "dev")), str("bimgen"), str("bimgen"))
	stamp := fmt.Sprint(e.opts.Timestamp.Unix())
	e.owner = w.add("IFCOWNERHISTORY", user.String(), app.String(), unset, enum("ADDED"),
		stamp, user.String(), app.String(), stamp)

	length := w.add("IFCSIUNIT", derived, enum("LENGTHUNIT"), unset, enum("METRE"))
	area := w.add("IFCSIUNIT", derived, enum("AREAUNIT"), unset, enum("SQUARE_METRE"))
	volume := w.add("IFCSIUNIT", derived, enum("VOLUMEUNIT"), unset, enum("CUBIC_METRE"))
	angle := w.add("IFCSIUNIT", derived, enum("PLANEANGLEUNIT"), unset, enum("RADIAN"))
	e.units = w.add("IFCUNITASSIGNMENT", refs([]ref{length, area, volume, angle}))

	origin := w.add("IFCCARTESIANPOINT", nums(0, 0, 0))
	up := w.add("IFCDIRECTION", nums(0, 0, 1))
	east := w.add("IFCDIRECTION", nums(1, 0, 0))
	wcs := w.add("IFCAXIS2PLACEMENT3D", origin.String(), up.String(), east.String())
	e.context = w.add("IFCGEOMETRICREPRESENTATIONCONTEXT", unset, str("Model"), "3", num(1e-5), wcs.String(), unset)
	e.body = w.add("IFCGEOMETRICREPRESENTATIONSUBCONTEXT", str("Body"), str("Model"),
		derived, derived, derived, derived, e.context.String(), unset, enum("MODEL_VIEW"), unset)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// walk writes ent and then its children, in creation order.
func (e *encoder) walk(ent *model.Entity) error {
	if err := e.entity(ent); err != nil {
		return err
	}
	for _, child := range e.m.Children(ent.ID) {
		if err := e.walk(child); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) entity(ent *model.Entity) error {
	if !ent.Classified() {
		return &SerializationError{Entity: ent.ID, Name: ent.Name, Message: "entity is not classified"}
	}
	schema, ok := classify.SchemaFor(ent.Class)
	if !ok {
		return &SerializationError{Entity: ent.ID, Name: ent.Name,
			Message: fmt.Sprintf("no property schema for %s", ent.Class)}
	}
	if missing := schema.Missing(ent.Properties); len(missing) > 0 {
		return &SerializationError{Entity: ent.ID, Name: ent.Name,
			Message: fmt.Sprintf("missing required properties %s", strings.Join(missing, ", "))}
	}

	product, err := e.product(ent)
	if err != nil {
		return err
	}
	e.products[ent.ID] = product

	if err := e.material(ent, product); err != nil {
		return err
	}
	return e.propertySet(ent, product)
}

// head returns the attributes shared by every rooted object.
func (e *encoder) head(ent *model.Entity, guid string) []string {
	return []string{str(guid), e.owner.String(), str(ent.Name), optStr(ent.Description), unset}
}

func (e *encoder) product(ent *model.Entity) (ref, error) {
	guid := e.guids[ent.ID]
	typ := strings.ToUpper(ent.Class)

	if ent.Kind == model.KindProject {
		args := append(e.head(ent, guid), unset, unset, list(e.context.String()), e.units.String())
		return e.w.add(typ, args...), nil
	}

	placement := e.placement(ent)
	shape := e.shape(ent.Body)
	args := append(e.head(ent, guid), placement.String(), shape)

	switch d := ent.Data.(type) {
	case model.SiteData:
		args = append(args, unset, enum("ELEMENT"), unset, unset, unset, unset, unset)
	case model.BuildingData:
		args = append(args, unset, enum("ELEMENT"), unset, unset, unset)
	case model.StoryData:
		args = append(args, unset, enum("ELEMENT"), num(d.Elevation))
	case model.SpaceData:
		args = append(args, unset, enum("ELEMENT"), enum("INTERNAL"), unset)
	case model.WallData:
		kind := "SOLIDWALL"
		if !d.Facade.External() {
			kind = "PARTITIONING"
		}
		args = append(args, unset, enum(kind))
	case model.SlabData:
		args = append(args, unset, enum("FLOOR"))
	case model.RoofData:
		args = append(args, unset, enum("FLAT_ROOF"))
	case model.StairData:
		args = append(args, unset, enum("STRAIGHT_RUN_STAIR"))
	case model.OpeningData:
		return e.opening(ent, d, args)
	case model.FixtureData:
		if pt, ok := fixtureTypes[d.Type]; ok {
			args = append(args, unset, enum(pt))
		} else {
			args = append(args, unset)
		}
	default:
		return 0, &SerializationError{Entity: ent.ID, Name: ent.Name,
			Message: fmt.Sprintf("unsupported entity data %T", ent.Data)}
	}
	return e.w.add(typ, args...), nil
}

var fixtureTypes = map[model.FixtureType]string{
	model.FixtureSink:       "SINK",
	model.FixtureToilet:     "TOILETPAN",
	model.FixtureWashbasin:  "WASHHANDBASIN",
	model.FixtureBathtub:    "BATH",
	model.FixturePanel:      "DISTRIBUTIONBOARD",
	model.FixtureAirHandler: "AIRHANDLER",
}

// opening writes the void cut into the host and the window or door that
// fills it. The filling carries the entity's GlobalId.
func (e *encoder) opening(ent *model.Entity, d model.OpeningData, args []string) (ref, error) {
	void := append([]string{str(GlobalID(e.project(), e.guids[ent.ID]+"/void"))}, args[1:]...)
	e.voids[ent.ID] = e.w.add("IFCOPENINGELEMENT", append(void, unset, enum("OPENING"))...)

	if d.Kind == model.OpeningDoor {
		args = append(args, unset, num(d.Height), num(d.Width), enum("DOOR"), enum("SINGLE_SWING_LEFT"), unset)
	} else {
		args = append(args, unset, num(d.Height), num(d.Width), enum("WINDOW"), enum("SINGLE_PANEL"), unset)
	}
	return e.w.add(strings.ToUpper(ent.Class), args...), nil
}

func (e *encoder) project() string { return e.m.Root().Name }

// placement writes ent's placement relative to its parent's.
func (e *encoder) placement(ent *model.Entity) ref {
	parentRef := unset
	pl := ent.Placement
	if parent := e.m.Get(ent.Parent); parent != nil {
		if r, ok := e.placements[parent.ID]; ok {
			parentRef = r.String()
			pl = relative(parent.Placement, pl)
		}
	}

	loc := e.w.add("IFCCARTESIANPOINT", nums(pl.Origin.X, pl.Origin.Y, pl.Origin.Z))
	dir := pl.RefDirection
	var axis ref
	if dir.X == 1 && dir.Y == 0 {
		axis = e.w.add("IFCAXIS2PLACEMENT3D", loc.String(), unset, unset)
	} else {
		x := e.w.add("IFCDIRECTION", nums(dir.X, dir.Y, 0))
		axis = e.w.add("IFCAXIS2PLACEMENT3D", loc.String(), unset, x.String())
	}
	r := e.w.add("IFCLOCALPLACEMENT", parentRef, axis.String())
	e.placements[ent.ID] = r
	return r
}

// relative expresses child in the frame of parent.
func relative(parent, child model.Placement) model.Placement {
	x := parent.RefDirection
	y := model.Vec2{X: -x.Y, Y: x.X}
	d := child.Origin.Sub(parent.Origin)
	c := child.RefDirection
	return model.Placement{
		Origin:       model.Vec3{X: d.X*x.X + d.Y*x.Y, Y: d.X*y.X + d.Y*y.Y, Z: d.Z},
		RefDirection: model.Vec2{X: c.X*x.X + c.Y*x.Y, Y: c.X*y.X + c.Y*y.Y},
	}
}

// shape writes the swept-solid body, or returns unset for bodiless
// entities.
func (e *encoder) shape(body []model.Extrusion) string {
	if len(body) == 0 {
		return unset
	}
	items := make([]ref, 0, len(body))
	for _, x := range body {
		pts := make([]ref, 0, len(x.Profile)+1)
		for _, p := range x.Profile {
			pts = append(pts, e.w.add("IFCCARTESIANPOINT", nums(p.X, p.Y)))
		}
		pts = append(pts, pts[0])
		curve := e.w.add("IFCPOLYLINE", refs(pts))
		profile := e.w.add("IFCARBITRARYCLOSEDPROFILEDEF", enum("AREA"), unset, curve.String())
		loc := e.w.add("IFCCARTESIANPOINT", nums(x.Position.X, x.Position.Y, x.Position.Z))
		pos := e.w.add("IFCAXIS2PLACEMENT3D", loc.String(), unset, unset)
		dir := e.w.add("IFCDIRECTION", nums(x.Direction.X, x.Direction.Y, x.Direction.Z))
		items = append(items, e.w.add("IFCEXTRUDEDAREASOLID", profile.String(), pos.String(), dir.String(), num(x.Depth)))
	}
	rep := e.w.add("IFCSHAPEREPRESENTATION", e.body.String(), str("Body"), str("SweptSolid"), refs(items))
	return e.w.add("IFCPRODUCTDEFINITIONSHAPE", unset, unset, list(rep.String())).String()
}

func (e *encoder) materialRef(name string) ref {
	if r, ok := e.materials[name]; ok {
		return r
	}
	r := e.w.add("IFCMATERIAL", str(name), unset, unset)
	e.materials[name] = r
	return r
}

// material associates walls with a layer set usage and other elements
// with their single material.
func (e *encoder) material(ent *model.Entity, product ref) error {
	var assigned ref
	switch d := ent.Data.(type) {
	case model.WallData:
		if len(d.Layers) == 0 {
			return nil
		}
		set := e.layerSet(d.Layers)
		assigned = e.w.add("IFCMATERIALLAYERSETUSAGE", set.String(), enum("AXIS2"), enum("POSITIVE"),
			num(-d.Thickness/2), unset)
	case model.SlabData:
		assigned = e.materialRef(d.Material)
	case model.RoofData:
		assigned = e.materialRef(d.Material)
	case model.StairData:
		assigned = e.materialRef(d.Material)
	case model.FixtureData:
		assigned = e.materialRef(d.Material)
	default:
		return nil
	}
	guid := GlobalID(e.project(), e.guids[ent.ID]+"/material")
	e.w.add("IFCRELASSOCIATESMATERIAL", str(guid), e.owner.String(), unset, unset,
		list(product.String()), assigned.String())
	return nil
}

func (e *encoder) layerSet(layers []model.MaterialLayer) ref {
	var key strings.Builder
	names := make([]string, len(layers))
	for i, l := range layers {
		fmt.Fprintf(&key, "%s|%s|%s;", l.Material, num(l.Thickness), l.Role)
		names[i] = l.Material
	}
	if r, ok := e.layerSets[key.String()]; ok {
		return r
	}
	items := make([]ref, len(layers))
	for i, l := range layers {
		items[i] = e.w.add("IFCMATERIALLAYER", e.materialRef(l.Material).String(), num(l.Thickness), unset,
			str(l.Material), unset, optStr(l.Role), unset)
	}
	r := e.w.add("IFCMATERIALLAYERSET", refs(items), str(strings.Join(names, "/")), unset)
	e.layerSets[key.String()] = r
	return r
}

func (e *encoder) propertySet(ent *model.Entity, product ref) error {
	props := make([]ref, 0, len(ent.Properties.Items))
	for _, p := range ent.Properties.Items {
		v, err := value(p.Value)
		if err != nil {
			return &SerializationError{Entity: ent.ID, Name: ent.Name,
				Message: fmt.Sprintf("property %s: %v", p.Name, err)}
		}
		props = append(props, e.w.add("IFCPROPERTYSINGLEVALUE", str(p.Name), unset, v, unset))
	}
	base := e.guids[ent.ID]
	pset := e.w.add("IFCPROPERTYSET", str(GlobalID(e.project(), base+"/pset")), e.owner.String(),
		str(ent.Properties.SetName), unset, refs(props))
	e.w.add("IFCRELDEFINESBYPROPERTIES", str(GlobalID(e.project(), base+"/pset/rel")), e.owner.String(),
		unset, unset, list(product.String()), pset.String())
	return nil
}

// relationships writes one relationship per edge group, in group order.
func (e *encoder) relationships() error {
	for _, grp := range e.g.Groups {
		relating, ok := e.products[grp.Relating]
		if !ok {
			return &SerializationError{Entity: grp.Relating, Message: "relationship endpoint was not written"}
		}
		related := make([]ref, len(grp.Related))
		for i, id := range grp.Related {
			r, ok := e.products[id]
			if !ok {
				return &SerializationError{Entity: id, Message: "relationship endpoint was not written"}
			}
			related[i] = r
		}

		base := e.guids[grp.Relating] + "/" + grp.Type.String()
		guid := str(GlobalID(e.project(), base))
		switch grp.Type {
		case relate.Aggregates:
			e.w.add("IFCRELAGGREGATES", guid, e.owner.String(), unset, unset, relating.String(), refs(related))
		case relate.ContainedInSpatialStructure:
			e.w.add("IFCRELCONTAINEDINSPATIALSTRUCTURE", guid, e.owner.String(), unset, unset,
				refs(related), relating.String())
		case relate.FillsOpening:
			for i, id := range grp.Related {
				void := e.voids[id]
				own := e.guids[id]
				e.w.add("IFCRELVOIDSELEMENT", str(GlobalID(e.project(), own+"/voids")), e.owner.String(),
					unset, unset, relating.String(), void.String())
				e.w.add("IFCRELFILLSELEMENT", str(GlobalID(e.project(), own+"/fills")), e.owner.String(),
					unset, unset, void.String(), related[i].String())
			}
		case relate.ConnectsElements:
			for i, id := range grp.Related {
				e.w.add("IFCRELCONNECTSELEMENTS", str(GlobalID(e.project(), e.guids[id]+"/connects")),
					e.owner.String(), unset, unset, unset, relating.String(), related[i].String())
			}
		}
	}
	return nil
}
