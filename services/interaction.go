package services

import (
	"fmt"

	"github.com/GrainArc/SiteMeasure/models"
)

type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModeModifying
)

func (m Mode) String() string {
	switch m {
	case ModeDrawing:
		return "drawing"
	case ModeModifying:
		return "modifying"
	default:
		return "idle"
	}
}

// Interaction is the Idle/Drawing/Modifying state machine. Invalid events
// return ErrModeConflict and leave the state untouched.
type Interaction struct {
	mode      Mode
	kind      models.GeometryKind
	featureID string
}

// ModeState is the externally visible interaction state.
type ModeState struct {
	Mode      string              `json:"mode"`
	Kind      models.GeometryKind `json:"kind,omitempty"`
	FeatureID string              `json:"feature_id,omitempty"`
}

func (it *Interaction) State() ModeState {
	return ModeState{Mode: it.mode.String(), Kind: it.kind, FeatureID: it.featureID}
}

func (it *Interaction) Mode() Mode {
	return it.mode
}

func (it *Interaction) conflict(event string) error {
	return fmt.Errorf("%w: %s while %s", models.ErrModeConflict, event, it.mode)
}

func (it *Interaction) StartDraw(kind models.GeometryKind) error {
	if it.mode != ModeIdle {
		return it.conflict("start draw")
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", models.ErrInvalidGeometry, kind)
	}
	it.mode, it.kind = ModeDrawing, kind
	return nil
}

// DrawingKind returns the kind being drawn, or an error when not drawing.
func (it *Interaction) DrawingKind(event string) (models.GeometryKind, error) {
	if it.mode != ModeDrawing {
		return "", it.conflict(event)
	}
	return it.kind, nil
}

// FinishDraw and CancelDraw both return to Idle.
func (it *Interaction) FinishDraw() error {
	if it.mode != ModeDrawing {
		return it.conflict("end draw")
	}
	it.reset()
	return nil
}

func (it *Interaction) CancelDraw() error {
	if it.mode != ModeDrawing {
		return it.conflict("cancel draw")
	}
	it.reset()
	return nil
}

func (it *Interaction) StartModify(id string) error {
	if it.mode != ModeIdle {
		return it.conflict("start modify")
	}
	it.mode, it.featureID = ModeModifying, id
	return nil
}

// ModifyingID returns the feature under edit, or an error when not modifying.
func (it *Interaction) ModifyingID(event string) (string, error) {
	if it.mode != ModeModifying {
		return "", it.conflict(event)
	}
	return it.featureID, nil
}

func (it *Interaction) FinishModify() error {
	if it.mode != ModeModifying {
		return it.conflict("end modify")
	}
	it.reset()
	return nil
}

func (it *Interaction) CancelModify() error {
	if it.mode != ModeModifying {
		return it.conflict("cancel modify")
	}
	it.reset()
	return nil
}

// RequireIdle guards store-wide mutations.
func (it *Interaction) RequireIdle(event string) error {
	if it.mode != ModeIdle {
		return it.conflict(event)
	}
	return nil
}

func (it *Interaction) reset() {
	it.mode, it.kind, it.featureID = ModeIdle, "", ""
}
