package spapi

import (
	"context"
)

var userParameters = newAllowList(
	"first_name", "last_name", "email", "phone", "position", "password",
	"right_groups", "rights", "picture", "picture_link",
	"buildings", "materialgroups", "materials",
)

// GetUsers retrieves the users linked to the account, excluding the account itself
func (c *Client) GetUsers(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "get_users", "users", "users")
}

// AddUser creates a user in the account's company
func (c *Client) AddUser(ctx context.Context, params Params) (Record, error) {
	const op = "add_user"
	if err := c.checkParams(op, userParameters, params); err != nil {
		return nil, err
	}

	user, err := c.create(ctx, op, "users/add", "user", params.clone())
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("code", user.Code()).Str("name", user.Name()).Msg("User created")
	return user, nil
}

// DeleteUser disables the user; the service deletes it after a delay
func (c *Client) DeleteUser(ctx context.Context, code string) error {
	if err := c.remove(ctx, "delete_user", "users/remove", "user_code", code); err != nil {
		return err
	}
	c.logger.Info().Str("code", code).Msg("User deleted")
	return nil
}
