package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fichesynthese/internal/logger"
	"fichesynthese/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// StudySheetPrompt is appended after the uploaded documents.
const StudySheetPrompt = `Tu es un assistant pédagogique spécialisé dans la création de fiches de révision. Tu vas analyser un ou deux documents.
Le premier document est toujours le support de cours principal.
Le second document, s'il est présent, est un document d'exercices (TD) ou une activité complémentaire.

Analyse le support de cours. Si un TD ou une activité est fourni, sers-t'en pour mieux cerner les notions clés, pour rendre les questions du quiz plus pertinentes et pour décrire le déroulement de l'activité. La fiche doit reposer principalement sur le cours.

Retourne un unique objet JSON conforme au schéma fourni, contenant :
1. title : le titre principal du contenu.
2. summaryPoints : les idées essentielles du cours en 3 à 5 points.
3. keyConcepts : les termes importants et leur définition, tirés du contenu.
4. activityFlow : si un TD ou une activité est fourni, le déroulement synthétique étape par étape ; sinon un tableau vide.
5. quiz : 10 questions à choix multiples (QCM) qui vérifient la compréhension du contenu, chacune avec 3 options de réponse ; correctAnswer reprend exactement le texte de la bonne option.`

const (
	// MaxInlineSize is the maximum size of one inline document (20MB)
	MaxInlineSize = 20 * 1024 * 1024
	// DefaultModel is used when no model name is configured
	DefaultModel = "gemini-2.5-flash"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Client wraps the Gemini client
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	log     *logger.Logger
}

// NewClient creates a new Gemini client configured for study-sheet output.
func NewClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = buildSchema(models.StudySheetSchema())
	model.SetTemperature(0.2)

	return &Client{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     log.With("component", "gemini", "model", modelName),
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() {
	c.client.Close()
}

// GenerateStudySheet sends the course document, the optional companion document and
// the prompt in a single request. There is no retry: the caller surfaces the
// error and the user may try again.
func (c *Client) GenerateStudySheet(ctx context.Context, course DocumentFile, td *DocumentFile) (*models.StudySheet, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	parts := []genai.Part{genai.Blob{MIMEType: course.MIMEType, Data: course.Data}}
	if td != nil {
		parts = append(parts, genai.Blob{MIMEType: td.MIMEType, Data: td.Data})
	}
	parts = append(parts, genai.Text(StudySheetPrompt))

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	var text strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}

	sheet, err := ParseStudySheet(text.String())
	if err != nil {
		c.log.Warn("study sheet response rejected", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	c.log.Info("study sheet generated",
		"title", sheet.Title,
		"questions", len(sheet.Quiz),
		"with_td", td != nil,
		"elapsed", time.Since(start))
	return sheet, nil
}

// buildSchema converts a JSON Schema definition map to a genai.Schema.
func buildSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildSchema(propDef)
			}
		}
	}
	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildSchema(items)
	}

	return schema
}

func mapType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
