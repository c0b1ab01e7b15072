package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemini-1.5-flash"
)

type geminiClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func newGeminiClient(apiKey string, httpc *http.Client) *geminiClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &geminiClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: geminiBaseURL,
		httpc:   httpc,
	}
}

func (c *geminiClient) isConfigured() bool {
	return c.apiKey != ""
}

// geminiRequest is the request body for the Gemini generateContent API.
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the response from the Gemini generateContent API.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// generate sends a single prompt and returns the raw response text. There is
// no retry: callers downgrade any failure to the static fallback table, so a
// second attempt would only delay the response.
func (c *geminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if !c.isConfigured() {
		return "", errors.New("gemini api key not configured")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, geminiModel, c.apiKey)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 2048,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if geminiResp.Error != nil {
		return "", fmt.Errorf("gemini API error: %s", geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned empty response")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// genreTitles asks for count titles in a genre, one per line, cleaned.
func (c *geminiClient) genreTitles(ctx context.Context, genre string, count int, mediaKind string) ([]string, error) {
	if mediaKind == "" {
		mediaKind = "movies and TV shows"
	}

	prompt := fmt.Sprintf(`Recommend %d highly regarded %s in the '%s' genre.

Focus on works that:
1. Are critically acclaimed or have cultural significance
2. Represent diverse perspectives and storytelling approaches
3. Include both classics and contemporary examples
4. Have distinctive narrative techniques, themes, or visual styles
5. Showcase strong character development and engaging plots

DO prioritize quality and thematic depth over popularity.
DO include some lesser-known gems alongside well-known examples.
DO consider works from different countries and time periods.

List only the exact titles, each on a new line. Do not add any introductory text, numbering, or formatting like asterisks or quotes.`, count, mediaKind, genre)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return cleanTitles(text), nil
}

// similarTitles asks for count titles similar to a reference work, steering
// the model toward thematic and structural similarity and away from cheap
// matches (same franchise, same director, sequels, lookalike names).
func (c *geminiClient) similarTitles(ctx context.Context, title string, genres []string, overview string, count int) ([]string, error) {
	genreList := "N/A"
	if len(genres) > 0 {
		genreList = strings.Join(genres, ", ")
	}
	if overview == "" {
		overview = "No synopsis available."
	}

	prompt := fmt.Sprintf(`Based on the following movie/show:
Title: %s
Genres: %s
Synopsis: %s

Recommend %d similar movies or TV shows that share similar:
1. Narrative structure, story arcs, and character development
2. Themes, messages, and underlying philosophy
3. Atmosphere, tone, and emotional impact
4. Visual style and cinematographic elements
5. Cultural or historical context, if relevant

DO NOT recommend movies that are simply in the same franchise or by the same director.
DO NOT recommend based solely on similar titles or naming conventions.
DO NOT prioritize sequels or prequels.
DO prioritize thematic and story similarity over genre matching.

List only the exact titles of the recommendations, each on a new line. Do not add any introductory text, numbering, or formatting like asterisks or quotes.`, title, genreList, overview, count)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return cleanTitles(text), nil
}
