package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/wisdomie/foodlens/internal/model"
)

const MaxImageBytes = 16 * 1024 * 1024

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ValidateImage checks the client-side upload rules: png or jpeg, at most 16MB.
func ValidateImage(name string, size int64) error {
	if _, ok := imageContentTypes[strings.ToLower(filepath.Ext(name))]; !ok {
		return &ValidationError{Message: "Unsupported image type. Use PNG or JPEG."}
	}
	if size > MaxImageBytes {
		return &ValidationError{Message: "File too large. Maximum size: 16MB"}
	}
	if size == 0 {
		return &ValidationError{Message: "Image file is empty"}
	}
	return nil
}

// Predict uploads an image as multipart field "image". The raw response body
// is returned so callers can keep a copy of the analysis.
func (c *Client) Predict(ctx context.Context, filename string, image io.Reader) (model.PredictionResult, []byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(filename)))
	contentType := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return model.PredictionResult{}, nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return model.PredictionResult{}, nil, fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return model.PredictionResult{}, nil, fmt.Errorf("close multipart body: %w", err)
	}

	body, err := c.do(ctx, request{
		op:          "predict",
		method:      http.MethodPost,
		path:        "/predict",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, nil)
	if err != nil {
		return model.PredictionResult{}, body, err
	}
	result, err := DecodePrediction(body)
	if err != nil {
		return model.PredictionResult{}, body, err
	}
	return result, body, nil
}

func DecodePrediction(body []byte) (model.PredictionResult, error) {
	var result model.PredictionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return model.PredictionResult{}, &DecodeError{Op: "predict", Body: body, Err: err}
	}
	if err := requireField("predict", "food_name", result.FoodName != ""); err != nil {
		return model.PredictionResult{}, err
	}
	return result, nil
}

func (c *Client) Alternatives(ctx context.Context, foodName string) (model.Alternatives, error) {
	var out struct {
		Alternatives model.Alternatives `json:"alternatives"`
	}
	if err := c.get(ctx, "alternatives", "/alternatives/"+url.PathEscape(foodName), &out); err != nil {
		return model.Alternatives{}, err
	}
	return out.Alternatives, nil
}

type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	if err := c.get(ctx, "health check", "/health", &out); err != nil {
		return HealthStatus{}, err
	}
	return out, nil
}
