package spapi

import (
	"context"
)

var materialParameters = newAllowList(
	"name", "building", "link_code", "picture", "picture_link", "default_media",
	"time_to_invalid", "users", "division", "rotation", "bg_color",
	"width", "height", "player_config",
)

var materialGroupParameters = newAllowList(
	"name", "comment", "materials", "buildings", "picture", "picture_link",
)

// GetMaterials retrieves all the materials (screens)
func (c *Client) GetMaterials(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "get_materials", "materials", "materials")
}

// AddMaterial creates a material; the account becomes its creator
func (c *Client) AddMaterial(ctx context.Context, params Params) (Record, error) {
	const op = "add_material"
	if err := c.checkParams(op, materialParameters, params); err != nil {
		return nil, err
	}

	material, err := c.create(ctx, op, "materials/add", "material", params.clone())
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("code", material.Code()).Str("name", material.Name()).Msg("Material created")
	return material, nil
}

// RebootMaterial asks the material to reboot. It returns false when a reboot
// is already pending.
func (c *Client) RebootMaterial(ctx context.Context, code string) (bool, error) {
	status, err := c.command(ctx, "reboot_material", "materials/reboot", "material_code", code)
	if err != nil {
		return false, err
	}
	if status {
		c.logger.Info().Str("code", code).Msg("Material will reboot")
	} else {
		c.logger.Warn().Str("code", code).Msg("Material has already been asked to reboot, need to wait")
	}
	return status, nil
}

// RefreshMaterial asks the material to reload its medias. It returns false
// when a refresh is already pending.
func (c *Client) RefreshMaterial(ctx context.Context, code string) (bool, error) {
	status, err := c.command(ctx, "refresh_material", "materials/refresh", "material_code", code)
	if err != nil {
		return false, err
	}
	if status {
		c.logger.Info().Str("code", code).Msg("Material will be refreshed")
	} else {
		c.logger.Warn().Str("code", code).Msg("Material has already been asked to refresh, need to wait")
	}
	return status, nil
}

// GetMaterialGroups retrieves all the material groups
func (c *Client) GetMaterialGroups(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "get_materialgroups", "material-groups", "materialgroups")
}

// AddMaterialGroup creates a material group
func (c *Client) AddMaterialGroup(ctx context.Context, params Params) (Record, error) {
	const op = "add_materialgroup"
	if err := c.checkParams(op, materialGroupParameters, params); err != nil {
		return nil, err
	}

	group, err := c.create(ctx, op, "material-groups/add", "materialgroup", params.clone())
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("code", group.Code()).Str("name", group.Name()).Msg("Material group created")
	return group, nil
}

// DeleteMaterialGroup removes a material group
func (c *Client) DeleteMaterialGroup(ctx context.Context, code string) error {
	if err := c.remove(ctx, "delete_materialgroup", "material-groups/remove", "materialgroup_code", code); err != nil {
		return err
	}
	c.logger.Info().Str("code", code).Msg("Material group deleted")
	return nil
}

// GetBuildings retrieves all the buildings
func (c *Client) GetBuildings(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "get_buildings", "buildings", "buildings")
}
