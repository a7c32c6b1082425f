package spapi

import (
	"context"
	"net/url"
	"strings"
)

var mediaParameters = newAllowList(
	"category", "name", "comment", "tags", "force_fullscreen", "lock", "buildings", "material_groups", "materials",
	"format_details", "condition_start", "condition_end", "condition_weather", "condition_time", "frequency",
	"print_min", "print_max", "animation_start", "animation_end", "male", "female", "both", "age_zero_fifteen",
	"age_sixteen_twenty_eight", "age_twenty_nine_thirty_six", "age_thirty_seven_fifty", "age_fifty_one_ninty_nine",
	"interests", "pcs_farmer", "pcs_worker", "pcs_retirees", "pcs_intermediate_professions", "pcs_employee",
	"pcs_student", "pcs_unemployed", "pcs_craftsmen", "pcs_managment_nd_profession", "vistor_type_new",
	"vistor_type_frequent", "vistor_type_occasional", "vistor_type_everybody", "specific_duration", "keep_audio",
	"url", "file", "post_accounts", "webview_details", "webviewtemplate",
	// banner configuration
	"banner_texts_details", "twitter_post_accounts", "facebook_post_accounts", "rss_post_accounts",
	"instagram_post_accounts", "font", "font_size", "color", "bg_color", "bg_opacity", "speed",
	"position", "position_unset", "margin",
)

var editMediaParameters = mediaParameters.with("hidden_details")

// mediaTextFields are list parameters the service expects comma joined
var mediaTextFields = []struct{ key, textKey string }{
	{"post_accounts", "post_accounts_text"},
	{"tags", "tags_text"},
	{"interests", "interests_text"},
}

// GetMedias retrieves all the medias
func (c *Client) GetMedias(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "get_medias", "medias", "medias")
}

// AddMedia creates a media of the given category (file, audio, instagram,
// twitter, rss, youtube, web, banner, template...). A "file" parameter holds
// a local path; the file is uploaded first.
func (c *Client) AddMedia(ctx context.Context, category string, params Params) (Record, error) {
	const op = "add_media"
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, newError(op, nil, "media category is required")
	}
	if err := c.checkParams(op, mediaParameters, params); err != nil {
		return nil, err
	}

	prepared, err := c.prepareMedia(ctx, op, params)
	if err != nil {
		return nil, err
	}

	media, err := c.create(ctx, op, "medias/add/"+url.PathEscape(category), "media", prepared)
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("code", media.Code()).Str("name", media.Name()).Str("category", category).Msg("Media created")
	return media, nil
}

// EditMedia updates the given fields of a media
func (c *Client) EditMedia(ctx context.Context, code string, params Params) (Record, error) {
	const op = "edit_media"
	if err := c.checkParams(op, editMediaParameters, params); err != nil {
		return nil, err
	}

	prepared, err := c.prepareMedia(ctx, op, params)
	if err != nil {
		return nil, err
	}
	prepared["media_code"] = code

	media, err := c.create(ctx, op, "medias/edit", "media", prepared)
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("code", media.Code()).Str("name", media.Name()).Msg("Media edited")
	return media, nil
}

// prepareMedia replaces a file path by the code of the uploaded file, then
// converts list fields to their text form
func (c *Client) prepareMedia(ctx context.Context, op string, params Params) (Params, error) {
	prepared := params.clone()

	if value, ok := prepared["file"]; ok {
		path, _ := value.(string)
		if path == "" {
			return nil, newError(op, ErrUploadFailed, "file must be a local file path, got %T", value)
		}
		code, err := c.uploadMediaFile(ctx, op, path)
		if err != nil {
			return nil, err
		}
		prepared["file_input"] = code
		delete(prepared, "file")
	}

	for _, f := range mediaTextFields {
		if err := prepared.joinList(f.key, f.textKey); err != nil {
			return nil, newError(op, err, "cannot convert %s: %v", f.key, err)
		}
	}
	return prepared, nil
}

// uploadMediaFile uploads a media source file and returns its file code
func (c *Client) uploadMediaFile(ctx context.Context, op, path string) (string, error) {
	token, err := c.authorize(ctx, op)
	if err != nil {
		return "", err
	}
	resp, err := c.postFile(ctx, op, "medias/upload", tokenForm(token), "file", path)
	if err != nil {
		return "", err
	}

	file, _ := resp.Record("file")
	code := file.Code()
	if code == "" {
		c.logger.Error().Str("op", op).Interface("file", resp["file"]).Msg("Error from file upload")
		return "", newError(op, ErrUploadFailed, "failure on file upload")
	}
	c.logger.Debug().Str("op", op).Str("file_code", code).Msg("Media file uploaded")
	return code, nil
}

// UploadMediaTemplateFile uploads a file referenced by template media values.
// The returned record holds the file "url" to put in webview_details.
func (c *Client) UploadMediaTemplateFile(ctx context.Context, path string) (Record, error) {
	const op = "upload_media_template_file"
	token, err := c.authorize(ctx, op)
	if err != nil {
		return nil, err
	}
	resp, err := c.postFile(ctx, op, "medias/upload/template", tokenForm(token), "file", path)
	if err != nil {
		return nil, err
	}
	return recordField(op, resp, "file")
}

// DownloadFinalMedia downloads the file a material actually plays.
// filename may include directories and has no extension; when empty the
// served name is used. It returns the path written.
func (c *Client) DownloadFinalMedia(ctx context.Context, mediaCode, materialCode, filename string) (string, error) {
	const op = "download_final_media"
	token, err := c.authorize(ctx, op)
	if err != nil {
		return "", err
	}
	return c.postToDownload(ctx, op, "medias/download/final",
		tokenForm(token, "media_code", mediaCode, "material_code", materialCode), filename)
}

// DownloadConvertedMedia downloads the media converted to a playable format
// (mostly .mp4). It fails while the conversion is still running.
func (c *Client) DownloadConvertedMedia(ctx context.Context, mediaCode, filename string) (string, error) {
	const op = "download_converted_media"
	token, err := c.authorize(ctx, op)
	if err != nil {
		return "", err
	}
	return c.postToDownload(ctx, op, "medias/download/convert", tokenForm(token, "media_code", mediaCode), filename)
}

// DownloadSrcMedia downloads the file originally uploaded with the media
func (c *Client) DownloadSrcMedia(ctx context.Context, mediaCode, filename string) (string, error) {
	const op = "download_src_media"
	token, err := c.authorize(ctx, op)
	if err != nil {
		return "", err
	}
	return c.postToDownload(ctx, op, "medias/download/src", tokenForm(token, "media_code", mediaCode), filename)
}

// DisableMedia stops a media from being played
func (c *Client) DisableMedia(ctx context.Context, code string) (bool, error) {
	status, err := c.command(ctx, "disable_media", "medias/disable", "media_code", code)
	if err != nil {
		return false, err
	}
	if status {
		c.logger.Info().Str("code", code).Msg("Media has been disabled")
	} else {
		c.logger.Warn().Str("code", code).Msg("Media cannot be disabled")
	}
	return status, nil
}

// EnableMedia allows a media to be played again
func (c *Client) EnableMedia(ctx context.Context, code string) (bool, error) {
	status, err := c.command(ctx, "enable_media", "medias/enable", "media_code", code)
	if err != nil {
		return false, err
	}
	if status {
		c.logger.Info().Str("code", code).Msg("Media has been enabled")
	} else {
		c.logger.Warn().Str("code", code).Msg("Media cannot be enabled")
	}
	return status, nil
}

// DeleteMedia removes a media
func (c *Client) DeleteMedia(ctx context.Context, code string) error {
	if err := c.remove(ctx, "delete_media", "medias/remove", "media_code", code); err != nil {
		return err
	}
	c.logger.Info().Str("code", code).Msg("Media deleted")
	return nil
}

// GetWebviewTemplates retrieves the templates usable by "template" medias
func (c *Client) GetWebviewTemplates(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "get_webviewtemplates", "webviewtemplates", "webviewtemplates")
}
