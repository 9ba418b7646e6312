package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const myMemoryAPIURL = "https://api.mymemory.translated.net/get"

// MyMemory calls the MyMemory translation API. An optional contact email
// raises the free-tier quota.
type MyMemory struct {
	APIURL string
	Email  string
	Client *http.Client
}

// NewMyMemory returns a MyMemory provider with the public endpoint.
func NewMyMemory(email string) *MyMemory {
	return &MyMemory{
		APIURL: myMemoryAPIURL,
		Email:  email,
		Client: &http.Client{},
	}
}

func (m *MyMemory) Name() string { return "mymemory" }

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	// The API reports this as a number on success and a string on error.
	ResponseStatus  interface{} `json:"responseStatus"`
	ResponseDetails string      `json:"responseDetails"`
}

func (m *MyMemory) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	if sourceLang == "" {
		sourceLang = "auto"
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", fmt.Sprintf("%s|%s", sourceLang, targetLang))
	if m.Email != "" {
		params.Set("email", m.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := m.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory returned status %d", resp.StatusCode)
	}

	var body myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode mymemory response: %w", err)
	}

	// MyMemory reports errors in-band with a 200 HTTP status.
	if fmt.Sprint(body.ResponseStatus) != "200" {
		return "", fmt.Errorf("mymemory error: %s", body.ResponseDetails)
	}

	return body.ResponseData.TranslatedText, nil
}
