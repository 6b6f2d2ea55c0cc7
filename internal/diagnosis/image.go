package diagnosis

import (
	"encoding/base64"
	"net/http"
	"strings"

	"lifelens/internal/services"
)

// MaxImageBytes bounds uploads accepted for analysis.
const MaxImageBytes = 20 << 20

// Image is a photo to be diagnosed.
type Image struct {
	Data     []byte
	MIMEType string
}

// NewImage sniffs the content type of data and rejects anything that is not an image.
func NewImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, services.Validation("Please select an image first.")
	}
	if len(data) > MaxImageBytes {
		return Image{}, services.Validation("That image is too large. Please choose a smaller photo.")
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, services.Validation("That file does not look like an image.")
	}
	return Image{Data: data, MIMEType: mime}, nil
}

// ParseDataURI decodes a base64 data URI such as "data:image/jpeg;base64,...".
// A bare base64 payload without the data: prefix is accepted too.
func ParseDataURI(uri string) (Image, error) {
	uri = strings.TrimSpace(uri)
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		comma := strings.IndexByte(uri, ',')
		if comma < 0 || !strings.HasSuffix(uri[:comma], ";base64") {
			return Image{}, services.Validation("The image data is not a base64 data URI.")
		}
		payload = uri[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, services.Validation("The image data could not be decoded.")
	}
	return NewImage(data)
}

// Empty reports whether no image is present.
func (i Image) Empty() bool {
	return len(i.Data) == 0
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI returns the image as a data URI usable as a preview or model input.
func (i Image) DataURI() string {
	if i.Empty() {
		return ""
	}
	mime := i.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + i.Base64()
}
