package spapi

import (
	"context"
)

// list GETs resource and returns the records under key
func (c *Client) list(ctx context.Context, op, resource, key string) ([]Record, error) {
	token, err := c.authorize(ctx, op)
	if err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, op, resource, token)
	if err != nil {
		return nil, err
	}
	return recordList(op, resp, key)
}

// create POSTs already validated params and returns the record under key
func (c *Client) create(ctx context.Context, op, resource, key string, params Params) (Record, error) {
	token, err := c.authorize(ctx, op)
	if err != nil {
		return nil, err
	}
	form, err := params.form(token)
	if err != nil {
		return nil, newError(op, err, "cannot encode parameters: %v", err)
	}
	resp, err := c.post(ctx, op, resource, form)
	if err != nil {
		return nil, err
	}
	return recordField(op, resp, key)
}

// remove POSTs the code of the entity to delete
func (c *Client) remove(ctx context.Context, op, resource, codeField, code string) error {
	token, err := c.authorize(ctx, op)
	if err != nil {
		return err
	}
	_, err = c.post(ctx, op, resource, tokenForm(token, codeField, code))
	return err
}

// command POSTs the code of the target entity and returns the "status" answer
func (c *Client) command(ctx context.Context, op, resource, codeField, code string) (bool, error) {
	token, err := c.authorize(ctx, op)
	if err != nil {
		return false, err
	}
	resp, err := c.post(ctx, op, resource, tokenForm(token, codeField, code))
	if err != nil {
		return false, err
	}
	return statusField(op, resp)
}
