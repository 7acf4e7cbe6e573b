// Package imagegen produces the decorative illustrations (welcome splash,
// logo, background) with an Imagen model.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"fichesynthese/internal/logger"

	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"
)

const DefaultModel = "imagen-4.0-generate-001"

const (
	welcomePrompt = "A vibrant and modern flat illustration of a student at their desk. The student is focused, looking at a laptop which displays charts and graphs. Next to the laptop is a neatly organized summary sheet with key points highlighted. The background is clean and simple. The color palette is bright and engaging, using teals, oranges, and limes. The overall feeling is one of productivity and successful learning."
	logoPrompt    = "A minimal round flat logo for a study app: an open book with a small spark above it, lime green and slate colors, white background, no text."
	bgPrompt      = "A soft, light abstract background of pastel lime and teal shapes with plenty of empty space, suitable behind a printed study sheet, no text."
)

// ErrNoImage is returned when the model answered without an image.
var ErrNoImage = errors.New("imagegen: no image was generated")

type generateFunc func(ctx context.Context, prompt, aspectRatio string) ([]byte, error)

// Client generates illustrations and keeps them for the life of the process.
type Client struct {
	generate generateFunc
	log      *logger.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]string
}

// NewClient creates an Imagen-backed client.
func NewClient(ctx context.Context, apiKey, model string, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("image generation requires an API key")
	}
	if model == "" {
		model = DefaultModel
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	gen := func(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
		resp, err := gc.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
			NumberOfImages: 1,
			OutputMIMEType: "image/jpeg",
			AspectRatio:    aspectRatio,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
			return nil, ErrNoImage
		}
		return resp.GeneratedImages[0].Image.ImageBytes, nil
	}
	return newClient(gen, log.With("component", "imagegen", "model", model)), nil
}

func newClient(gen generateFunc, log *logger.Logger) *Client {
	return &Client{
		generate: gen,
		log:      log,
		cache:    make(map[string]string),
	}
}

// Welcome returns the splash illustration as a data URL.
func (c *Client) Welcome(ctx context.Context) (string, error) {
	return c.image(ctx, "welcome", welcomePrompt, "16:9")
}

// Logo returns the header logo as a data URL.
func (c *Client) Logo(ctx context.Context) (string, error) {
	return c.image(ctx, "logo", logoPrompt, "1:1")
}

// Background returns the document background as a data URL.
func (c *Client) Background(ctx context.Context) (string, error) {
	return c.image(ctx, "background", bgPrompt, "16:9")
}

func (c *Client) image(ctx context.Context, key, prompt, aspectRatio string) (string, error) {
	c.mu.RLock()
	url, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return url, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		data, err := c.generate(ctx, prompt, aspectRatio)
		if err != nil {
			return "", fmt.Errorf("generating %s image: %w", key, err)
		}
		url := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)

		c.mu.Lock()
		c.cache[key] = url
		c.mu.Unlock()
		c.log.Info("illustration generated", "kind", key, "bytes", len(data))
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
