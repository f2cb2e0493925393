package variant_generate

import "github.com/indecor/dreamspace-backend/internal/clients/cloudinary"

// StubDerive builds the placeholder derivation: when the base image carries a
// provider public id, the result is the provider's deterministic transform of
// that asset; otherwise the base URL is reused unchanged. No network calls.
func StubDerive(cloudName string) DeriveFunc {
	return func(base BaseImage, prompt string) (string, error) {
		if base.CloudinaryID != "" {
			return cloudinary.TransformedURL(cloudName, base.CloudinaryID), nil
		}
		return base.ImageURL, nil
	}
}
