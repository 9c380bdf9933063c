package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

type AIStatusResponse struct {
	AIService string          `json:"aiService"`
	Details   json.RawMessage `json:"details,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func main() {
	baseURL := "http://localhost:5000"
	if len(os.Args) > 1 {
		baseURL = strings.TrimRight(os.Args[1], "/")
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	fmt.Printf("🔍 Testing gateway at: %s\n", baseURL)

	var health HealthResponse
	status, err := getJSON(client, baseURL+"/health", &health)
	if err != nil {
		fmt.Printf("❌ Error checking gateway health: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK || health.Status != "healthy" {
		fmt.Printf("❌ Gateway is not healthy (status %d, %q)\n", status, health.Status)
		os.Exit(1)
	}
	fmt.Printf("✅ Gateway healthy: %s at %s\n", health.Service, health.Timestamp)

	var aiStatus AIStatusResponse
	status, err = getJSON(client, baseURL+"/api/ai-status", &aiStatus)
	if err != nil {
		fmt.Printf("❌ Error checking analysis service: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK || aiStatus.AIService != "connected" {
		fmt.Printf("❌ Analysis service %s (status %d)\n", aiStatus.AIService, status)
		if aiStatus.Error != "" {
			fmt.Printf("   Error: %s\n", aiStatus.Error)
		}
		os.Exit(1)
	}

	fmt.Printf("✅ Analysis service connected\n")
	fmt.Printf("   Details: %s\n", string(aiStatus.Details))
}

// getJSON decodes the body whatever the status, since errors are JSON too
func getJSON(client *http.Client, url string, out any) (int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("parsing JSON response: %w", err)
	}
	return resp.StatusCode, nil
}
