package uncertainty

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Metrology/internal/shared/types"
	"github.com/GriffinCanCode/Metrology/internal/shared/utils"
)

// StoreOps handles workspace housekeeping tools
type StoreOps struct {
	*Options
}

// GetTools returns workspace tool definitions
func (s *StoreOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "uncertainty.workspace.list",
			Name:        "List Objects",
			Description: "List stored series and budgets",
			Parameters:  []types.Parameter{},
			Returns:     "array",
		},
		{
			ID:          "uncertainty.workspace.delete",
			Name:        "Delete Object",
			Description: "Delete a series or budget by ID",
			Parameters: []types.Parameter{
				{Name: "id", Type: "string", Description: "Series or budget ID", Required: true},
			},
			Returns: "boolean",
		},
	}
}

// List returns every stored object
func (s *StoreOps) List(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	entries := s.workspace.List()
	objects := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		objects[i] = map[string]interface{}{
			"id":         e.ID,
			"kind":       e.Kind,
			"name":       e.Name,
			"size":       e.Size,
			"created_at": e.CreatedAt,
		}
	}
	return Success(map[string]interface{}{"objects": objects, "count": len(objects)})
}

// Delete removes an object
func (s *StoreOps) Delete(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	objID, _ := GetString(params, "id")
	if err := utils.ValidateID(objID, "id", true); err != nil {
		return s.fail("uncertainty.workspace.delete", err)
	}
	if err := s.workspace.Delete(objID); err != nil {
		return s.fail("uncertainty.workspace.delete", err)
	}
	s.logger.Debug("object deleted", zap.String("id", objID))
	return Success(map[string]interface{}{"deleted": true, "id": objID})
}
