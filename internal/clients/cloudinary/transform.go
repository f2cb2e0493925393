package cloudinary

import "fmt"

// transformation is the fixed derivation recipe the stub generator applies to
// a base asset: a sepia effect plus an "AI Generated" text overlay. It stands
// in for model inference and must stay deterministic.
const transformation = "e_sepia:50/l_text:Arial_30:AI%20Generated"

const deliveryBaseURL = "https://res.cloudinary.com"

// TransformedURL derives the delivery URL of the transformed rendition of a
// stored asset. Pure function of its inputs; no network, no lookup.
func TransformedURL(cloudName, publicID string) string {
	return fmt.Sprintf("%s/%s/image/upload/%s/%s", deliveryBaseURL, cloudName, transformation, publicID)
}
