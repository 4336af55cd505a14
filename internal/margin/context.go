package margin

import (
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/state"
)

// ContextKind selects how the margin requirement type is chosen.
type ContextKind uint8

const (
	StandardMaintenance ContextKind = iota
	StandardInitial
	StandardCustom
)

// ContextMode is the caller's margin context. Custom is only read for
// StandardCustom.
type ContextMode struct {
	Kind   ContextKind
	Custom state.MarginRequirementType
}

func Maintenance() ContextMode { return ContextMode{Kind: StandardMaintenance} }
func Initial() ContextMode     { return ContextMode{Kind: StandardInitial} }

func Custom(t state.MarginRequirementType) ContextMode {
	return ContextMode{Kind: StandardCustom, Custom: t}
}

// RequirementType resolves the mode, rejecting unknown kinds and types.
func (m ContextMode) RequirementType() (state.MarginRequirementType, error) {
	switch m.Kind {
	case StandardMaintenance:
		return state.MarginRequirementTypeMaintenance, nil
	case StandardInitial:
		return state.MarginRequirementTypeInitial, nil
	case StandardCustom:
		if !m.Custom.Valid() {
			return 0, errcode.Wrap(errcode.InvalidMarginContext, "custom requirement type %d", uint8(m.Custom))
		}
		return m.Custom, nil
	default:
		return 0, errcode.Wrap(errcode.InvalidMarginContext, "context kind %d", uint8(m.Kind))
	}
}
