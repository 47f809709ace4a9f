package stoplist

import (
	"fmt"

	"eco-route-service/internal/domain"
)

// Op is one edit of a Form. The set of ops is closed; Apply handles each.
type Op interface {
	isOp()
}

type InsertStop struct{}

type RemoveStop struct {
	Index int
}

// EditLocation is a free-text edit of a stop's location field.
type EditLocation struct {
	Index int
	Text  string
}

// ResolveStop applies a geocoding result to a stop.
type ResolveStop struct {
	Index int
	Place domain.Place
}

type LoadPreset struct {
	Template Template
}

// Field names one of the auxiliary trip fields.
type Field string

const (
	FieldMaintainOrder Field = "maintainOrder"
	FieldCurrentFuel   Field = "currentFuel"
	FieldTime          Field = "time"
	FieldVehicleNumber Field = "vehicleNumber"
)

// SetField edits an auxiliary field. Bool is read for FieldMaintainOrder,
// Text for the others.
type SetField struct {
	Field Field
	Text  string
	Bool  bool
}

func (InsertStop) isOp()   {}
func (RemoveStop) isOp()   {}
func (EditLocation) isOp() {}
func (ResolveStop) isOp()  {}
func (LoadPreset) isOp()   {}
func (SetField) isOp()     {}

// Apply runs op against f and returns the resulting snapshot.
// On error the returned Form is f unchanged.
func Apply(f Form, op Op) (Form, error) {
	switch o := op.(type) {
	case InsertStop:
		return f.InsertStop(), nil
	case RemoveStop:
		return f.RemoveStop(o.Index)
	case EditLocation:
		return f.SetStopLocationText(o.Index, o.Text)
	case ResolveStop:
		return f.SetStopCoords(o.Index, o.Place)
	case LoadPreset:
		return f.LoadPreset(o.Template), nil
	case SetField:
		switch o.Field {
		case FieldMaintainOrder:
			return f.WithMaintainOrder(o.Bool), nil
		case FieldCurrentFuel:
			return f.WithCurrentFuel(o.Text), nil
		case FieldTime:
			return f.WithTime(o.Text), nil
		case FieldVehicleNumber:
			return f.WithVehicleNumber(o.Text), nil
		default:
			return f, fmt.Errorf("apply set field: %w: unknown field %q", domain.ErrValidation, o.Field)
		}
	case nil:
		return f, fmt.Errorf("apply: %w: nil op", domain.ErrValidation)
	default:
		return f, fmt.Errorf("apply: %w: unsupported op %T", domain.ErrValidation, op)
	}
}
