// Package spapi provides a client for the Smart Prospective digital-signage API.
//
// Smart Prospective manages the screens ("materials") installed in buildings, the
// groups they belong to, the medias they play and the users allowed to manage
// them. This package maps every supported REST endpoint to one method on Client.
//
// # Usage
//
// Create a client with your public ("pub_...") and secret ("sec_...") keys. No
// request is sent until the first call:
//
//	logger := zerolog.New(os.Stderr)
//	client, err := spapi.NewClient("pub_xxx", "sec_xxx", logger,
//		spapi.WithTimeout(30*time.Second),
//		spapi.WithDownloadDir("./downloads"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Logout(ctx)
//
//	buildings, err := client.GetBuildings(ctx)
//
//	media, err := client.AddMedia(ctx, "file", spapi.Params{
//		"name": "Spring promo",
//		"file": "./promo.png",
//		"tags": []string{"promo", "spring"},
//	})
//
// # Authentication
//
// The first call that needs a token logs in with the keys and keeps the token
// for every following call. Logout releases it; the next call logs in again.
//
// # Parameters
//
// Add and edit calls accept Params. Each call checks the keys against a fixed
// list and refuses unknown keys before anything is sent. Some list values are
// joined with commas (tags, interests, post_accounts), and a "file" value is
// uploaded first and replaced by the code the service returns.
//
// # Error Handling
//
// Every failure is an *APIError. Causes can be matched with errors.Is:
//
//   - ErrMissingCredentials: public or secret key not set
//   - ErrNotLoggedIn: the automatic login failed
//   - ErrUnsupportedParameter: a parameter is not accepted by the call
//   - ErrUploadFailed: the preliminary file upload returned no code
//   - ErrInvalidResponse: the response is not the expected JSON
//
// Status-code failures carry StatusCode:
//
//	var apiErr *spapi.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// Handle auth failure
//	}
package spapi
