// internal/common/providers/providers_test.go
package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-ai/internal/common/config"
	"agrimarket-ai/internal/common/logger"
)

func TestGenerateText_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generate", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "describe fresh cassava", body["prompt"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"text": "Fresh cassava, rich in starch.",
			"usage": map[string]int{
				"prompt_tokens":     12,
				"completion_tokens": 8,
			},
		})
	}))
	defer server.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		TextModel: "gemini-2.0-flash",
		Timeout:   5000,
	}, logger.NewTestLogger(t))

	result, err := client.GenerateText(context.Background(), "describe fresh cassava")
	require.NoError(t, err)
	assert.Equal(t, "Fresh cassava, rich in starch.", result.Text)
	assert.Equal(t, 12, result.Usage.PromptUnits)
	assert.Equal(t, 8, result.Usage.CompletionUnits)
	assert.Equal(t, 20, result.Usage.TotalUnits())
	assert.Equal(t, "gemini-2.0-flash", result.Model)
}

func TestGenerateText_EstimatesUsageWhenMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "abcdefgh"})
	}))
	defer server.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:   server.URL,
		TextModel: "gemini-2.0-flash",
		Timeout:   5000,
	}, logger.NewTestLogger(t))

	result, err := client.GenerateText(context.Background(), "abcd")
	require.NoError(t, err)
	// length/4, rounded up
	assert.Equal(t, 1, result.Usage.PromptUnits)
	assert.Equal(t, 2, result.Usage.CompletionUnits)
}

func TestGenerateText_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "too late"})
	}))
	defer server.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:   server.URL,
		TextModel: "gemini-2.0-flash",
		Timeout:   50,
	}, logger.NewTestLogger(t))

	_, err := client.GenerateText(context.Background(), "slow prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGenerateText_RetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "recovered"})
	}))
	defer server.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:    server.URL,
		TextModel:  "gemini-2.0-flash",
		Timeout:    5000,
		MaxRetries: 3,
	}, logger.NewTestLogger(t))

	result, err := client.GenerateText(context.Background(), "retry me")
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
	assert.Equal(t, 3, attempts)
}

func TestGenerateText_ExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:    server.URL,
		TextModel:  "gemini-2.0-flash",
		Timeout:    5000,
		MaxRetries: 1,
	}, logger.NewTestLogger(t))

	_, err := client.GenerateText(context.Background(), "never works")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCallFailed)
}

func TestAnalyzeImage_InlinesFetchedImage(t *testing.T) {
	imageBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(imageBytes)
	}))
	defer imageServer.Close()

	var received map[string]interface{}
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/analyze", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "Healthy maize leaves."})
	}))
	defer apiServer.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:   apiServer.URL,
		TextModel: "gemini-2.0-flash",
		Timeout:   5000,
	}, logger.NewTestLogger(t))

	result, err := client.AnalyzeImage(context.Background(), imageServer.URL, "assess crop health")
	require.NoError(t, err)
	assert.Equal(t, "Healthy maize leaves.", result.Text)

	inline, ok := received["inline_data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", inline["mime_type"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(imageBytes), inline["data"])
}

func TestAnalyzeImage_ImageFetchFailure(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer imageServer.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:   "http://unused.invalid",
		TextModel: "gemini-2.0-flash",
		Timeout:   5000,
	}, logger.NewTestLogger(t))

	_, err := client.AnalyzeImage(context.Background(), imageServer.URL, "assess crop health")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCallFailed)
}

func TestGenerateImage_Success(t *testing.T) {
	raw := []byte("fake-png-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generate-image", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"image_base64": base64.StdEncoding.EncodeToString(raw),
			"mime_type":    "image/png",
		})
	}))
	defer server.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:    server.URL,
		ImageModel: "gemini-2.0-flash-exp",
		Timeout:    5000,
	}, logger.NewTestLogger(t))

	result, err := client.GenerateImage(context.Background(), "ripe tomatoes on wooden table")
	require.NoError(t, err)
	require.NotNil(t, result.Image)
	assert.Equal(t, raw, result.Image.Bytes)
	assert.Equal(t, "image/png", result.Image.MIMEType)
	assert.Equal(t, "gemini-2.0-flash-exp", result.Model)
}

func TestGenerateImage_NoImageInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"text": "I cannot render that image.",
		})
	}))
	defer server.Close()

	client := NewGenerativeClient(config.GenerativeConfig{
		BaseURL:    server.URL,
		ImageModel: "gemini-2.0-flash-exp",
		Timeout:    5000,
	}, logger.NewTestLogger(t))

	_, err := client.GenerateImage(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCallFailed)
}

func TestResearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer research-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sonar", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Maize prices rose 12% in Accra this week."}},
			},
			"citations": []string{"https://example.com/market-report"},
			"usage": map[string]int{
				"prompt_tokens":     40,
				"completion_tokens": 25,
			},
		})
	}))
	defer server.Close()

	client := NewResearchClient(config.ResearchConfig{
		BaseURL: server.URL,
		APIKey:  "research-key",
		Model:   "sonar",
		Timeout: 5000,
	}, logger.NewTestLogger(t))

	result, err := client.Research(context.Background(), "maize market conditions in Accra")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Maize prices rose")
	assert.Equal(t, []string{"https://example.com/market-report"}, result.Citations)
	assert.Equal(t, 40, result.Usage.PromptUnits)
	assert.Equal(t, 25, result.Usage.CompletionUnits)
}

func TestResearch_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewResearchClient(config.ResearchConfig{
		BaseURL: server.URL,
		Model:   "sonar",
		Timeout: 5000,
	}, logger.NewTestLogger(t))

	_, err := client.Research(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCallFailed)
}

func TestResearch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := NewResearchClient(config.ResearchConfig{
		BaseURL: server.URL,
		Model:   "sonar",
		Timeout: 50,
	}, logger.NewTestLogger(t))

	_, err := client.Research(context.Background(), "slow research")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestStockSearch_MapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID access-key", r.Header.Get("Authorization"))
		assert.Equal(t, "fresh tomatoes vegetables", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "landscape", r.URL.Query().Get("orientation"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"urls": map[string]string{
						"regular": "https://img.example.com/a-regular",
						"full":    "https://img.example.com/a-full",
						"thumb":   "https://img.example.com/a-thumb",
					},
					"description": "ripe tomatoes on vine",
					"likes":       250,
					"user": map[string]interface{}{
						"name":  "Ada Photographer",
						"links": map[string]string{"html": "https://photos.example.com/ada"},
					},
				},
				{
					"urls":            map[string]string{"regular": "https://img.example.com/b-regular"},
					"alt_description": "tomato harvest basket",
					"likes":           1200,
					"user":            map[string]interface{}{"name": "Ben"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewStockPhotoClient(config.StockPhotoConfig{
		BaseURL:   server.URL,
		AccessKey: "access-key",
		PerPage:   5,
		Timeout:   5000,
	}, logger.NewTestLogger(t))

	photos, err := client.Search(context.Background(), "fresh tomatoes vegetables")
	require.NoError(t, err)
	require.Len(t, photos, 2)

	assert.Equal(t, "https://img.example.com/a-regular", photos[0].URL)
	assert.Equal(t, "ripe tomatoes on vine", photos[0].Description)
	assert.Equal(t, "Ada Photographer", photos[0].Photographer)
	assert.Equal(t, "https://photos.example.com/ada", photos[0].AttributionURL)
	assert.InDelta(t, 0.5, photos[0].Quality, 0.001)

	// alt_description fills in when description is empty; quality caps at 1
	assert.Equal(t, "tomato harvest basket", photos[1].Description)
	assert.Equal(t, 1.0, photos[1].Quality)
}

func TestStockSearch_EmptyResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))
	defer server.Close()

	client := NewStockPhotoClient(config.StockPhotoConfig{
		BaseURL: server.URL,
		PerPage: 5,
		Timeout: 5000,
	}, logger.NewTestLogger(t))

	photos, err := client.Search(context.Background(), "obscure produce nobody photographs")
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestUpload_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image/upload", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "host-key", user)
		assert.Equal(t, "host-secret", pass)

		var body struct {
			File     string `json:"file"`
			PublicID string `json:"public_id"`
			Folder   string `json:"folder"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "product_12345", body.PublicID)
		assert.Equal(t, "ai_generated_products", body.Folder)
		assert.Contains(t, body.File, "data:image/png;base64,")

		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://cdn.example.com/ai_generated_products/product_12345.png",
		})
	}))
	defer server.Close()

	client := NewHostingClient(config.HostingConfig{
		BaseURL:   server.URL,
		APIKey:    "host-key",
		APISecret: "host-secret",
		Folder:    "ai_generated_products",
		Timeout:   5000,
	}, logger.NewTestLogger(t))

	url, err := client.Upload(context.Background(), ImageData{Bytes: []byte("png-bytes"), MIMEType: "image/png"}, "product_12345")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/ai_generated_products/product_12345.png", url)
}

func TestUpload_MissingURLIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewHostingClient(config.HostingConfig{
		BaseURL: server.URL,
		Timeout: 5000,
	}, logger.NewTestLogger(t))

	_, err := client.Upload(context.Background(), ImageData{Bytes: []byte("x"), MIMEType: "image/png"}, "id")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCallFailed)
}
