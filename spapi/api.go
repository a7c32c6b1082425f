package spapi

import (
	"context"
)

// API defines the interface for Smart Prospective operations
type API interface {
	Login(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	LoggedIn() bool

	// Users
	GetUsers(ctx context.Context) ([]Record, error)
	AddUser(ctx context.Context, params Params) (Record, error)
	DeleteUser(ctx context.Context, code string) error

	// Materials and material groups
	GetMaterials(ctx context.Context) ([]Record, error)
	AddMaterial(ctx context.Context, params Params) (Record, error)
	RebootMaterial(ctx context.Context, code string) (bool, error)
	RefreshMaterial(ctx context.Context, code string) (bool, error)
	GetMaterialGroups(ctx context.Context) ([]Record, error)
	AddMaterialGroup(ctx context.Context, params Params) (Record, error)
	DeleteMaterialGroup(ctx context.Context, code string) error

	GetBuildings(ctx context.Context) ([]Record, error)

	// Medias
	GetMedias(ctx context.Context) ([]Record, error)
	AddMedia(ctx context.Context, category string, params Params) (Record, error)
	EditMedia(ctx context.Context, code string, params Params) (Record, error)
	UploadMediaTemplateFile(ctx context.Context, path string) (Record, error)
	DownloadFinalMedia(ctx context.Context, mediaCode, materialCode, filename string) (string, error)
	DownloadConvertedMedia(ctx context.Context, mediaCode, filename string) (string, error)
	DownloadSrcMedia(ctx context.Context, mediaCode, filename string) (string, error)
	DisableMedia(ctx context.Context, code string) (bool, error)
	EnableMedia(ctx context.Context, code string) (bool, error)
	DeleteMedia(ctx context.Context, code string) error

	GetWebviewTemplates(ctx context.Context) ([]Record, error)
}

var _ API = (*Client)(nil)

// SupportedParameters lists the parameter names accepted by an add or edit
// operation ("add_user", "add_material", "add_materialgroup", "add_media",
// "edit_media"). It returns nil for any other operation.
func SupportedParameters(op string) []string {
	switch op {
	case "add_user":
		return userParameters.keys()
	case "add_material":
		return materialParameters.keys()
	case "add_materialgroup":
		return materialGroupParameters.keys()
	case "add_media":
		return mediaParameters.keys()
	case "edit_media":
		return editMediaParameters.keys()
	default:
		return nil
	}
}
