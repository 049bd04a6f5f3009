package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/han-inventor/internal/handlers"
	"github.com/jwebster45206/han-inventor/pkg/state"
)

// APIClient talks to the HanInventor HTTP API
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	return &APIClient{baseURL: baseURL, client: client}
}

func (a *APIClient) TestConnection() bool {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// ResumeOrCreate loads the given save slot when it exists, otherwise starts
// a new game.
func (a *APIClient) ResumeOrCreate(id uuid.UUID) (*state.GameState, error) {
	if id != uuid.Nil {
		req, err := http.NewRequest(http.MethodHead, a.gameURL(id, ""), nil)
		if err != nil {
			return nil, err
		}
		resp, err := a.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return a.GetGameState(id)
		}
	}
	return a.CreateGameState()
}

func (a *APIClient) CreateGameState() (*state.GameState, error) {
	var gs state.GameState
	if err := a.do(http.MethodPost, a.baseURL+"/v1/gamestate", nil, http.StatusCreated, &gs); err != nil {
		return nil, fmt.Errorf("failed to create game state: %w", err)
	}
	return &gs, nil
}

func (a *APIClient) GetGameState(id uuid.UUID) (*state.GameState, error) {
	var gs state.GameState
	if err := a.do(http.MethodGet, a.gameURL(id, ""), nil, http.StatusOK, &gs); err != nil {
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}
	return &gs, nil
}

func (a *APIClient) Invent(id uuid.UUID, idea string) (*handlers.InventResponse, error) {
	var out handlers.InventResponse
	if err := a.do(http.MethodPost, a.gameURL(id, "invent"), handlers.InventRequest{Idea: idea}, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) InventFromGuide(id uuid.UUID) (*handlers.InventResponse, error) {
	var out handlers.InventResponse
	if err := a.do(http.MethodPost, a.gameURL(id, "guide/invent"), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) Quest(id uuid.UUID, category string) (*handlers.QuestResponse, error) {
	var out handlers.QuestResponse
	if err := a.do(http.MethodPost, a.gameURL(id, "quest"), handlers.QuestRequest{Category: category}, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) Guide(id uuid.UUID, message string) (*handlers.GuideResponse, error) {
	var out handlers.GuideResponse
	if err := a.do(http.MethodPost, a.gameURL(id, "guide"), handlers.GuideRequest{Message: message}, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) Reset(id uuid.UUID) (*state.GameState, error) {
	var gs state.GameState
	if err := a.do(http.MethodPost, a.gameURL(id, "reset"), nil, http.StatusOK, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func (a *APIClient) gameURL(id uuid.UUID, action string) string {
	u := fmt.Sprintf("%s/v1/gamestate/%s", a.baseURL, id)
	if action != "" {
		u += "/" + action
	}
	return u
}

// do sends an optional JSON body and decodes the reply into out.
func (a *APIClient) do(method, url string, in interface{}, wantStatus int, out interface{}) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("%s (status %d)", errorResp.Error, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
