package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jwebster45206/han-inventor/pkg/tools"
)

// ErrInvalidBlueprint is returned when a blueprint violates its schema.
var ErrInvalidBlueprint = errors.New("invalid invention blueprint")

// InventionBlueprint is a structured invention produced by the model through
// the saveInventionBlueprint tool.
type InventionBlueprint struct {
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	NationalPowerIncrease int       `json:"nationalPowerIncrease"`
	Category              string    `json:"category"`
	Materials             []string  `json:"materials"`
	Impact                string    `json:"impact"`
	InventedAt            time.Time `json:"inventedAt,omitempty"`
}

// Validate checks the blueprint against the tool schema. A blueprint that
// fails validation must never reach the game state.
func (bp *InventionBlueprint) Validate() error {
	if bp == nil {
		return fmt.Errorf("%w: nil blueprint", ErrInvalidBlueprint)
	}
	if strings.TrimSpace(bp.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBlueprint)
	}
	if strings.TrimSpace(bp.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidBlueprint)
	}
	if bp.NationalPowerIncrease < tools.MinPowerIncrease || bp.NationalPowerIncrease > tools.MaxPowerIncrease {
		return fmt.Errorf("%w: nationalPowerIncrease %d outside [%d,%d]",
			ErrInvalidBlueprint, bp.NationalPowerIncrease, tools.MinPowerIncrease, tools.MaxPowerIncrease)
	}
	if !tools.Contains(tools.InventionCategories, bp.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidBlueprint, bp.Category)
	}
	if len(bp.Materials) == 0 {
		return fmt.Errorf("%w: materials must not be empty", ErrInvalidBlueprint)
	}
	for i, m := range bp.Materials {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("%w: material %d is empty", ErrInvalidBlueprint, i)
		}
	}
	if strings.TrimSpace(bp.Impact) == "" {
		return fmt.Errorf("%w: impact is required", ErrInvalidBlueprint)
	}
	return nil
}
