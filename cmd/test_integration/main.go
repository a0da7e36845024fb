package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Search Smoke Test...")

	// 1. Health
	fmt.Println("1. Health check...")
	if !sendRequest("GET", "/health", nil) {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	// 2. Analyze
	fmt.Println("2. Analyzing query...")
	if !sendRequest("POST", "/search/analyze", map[string]interface{}{
		"query": "who can treat wounds in the forest",
	}) {
		fmt.Println("FAILED: Analyze")
		os.Exit(1)
	}
	fmt.Println("PASSED: Analyze")

	// 3. Smart search (classifier decides)
	fmt.Println("3. Smart search...")
	if !sendRequest("POST", "/search", map[string]interface{}{
		"query": "medical help",
	}) {
		fmt.Println("FAILED: Smart search")
		os.Exit(1)
	}
	fmt.Println("PASSED: Smart search")

	// 4. Forced strategies
	for _, strategy := range []string{"keyword", "semantic", "hybrid"} {
		fmt.Printf("4. Forced %s search...\n", strategy)
		if !sendRequest("POST", "/search", map[string]interface{}{
			"query":    "healing",
			"strategy": strategy,
			"limit":    5,
		}) {
			fmt.Printf("FAILED: Forced %s search\n", strategy)
			os.Exit(1)
		}
		fmt.Printf("PASSED: Forced %s search\n", strategy)
	}

	// 5. Similar skills
	fmt.Println("5. Similar skills...")
	if !sendRequest("POST", "/skills/similar", map[string]interface{}{
		"skill_name": "first aid",
		"limit":      5,
	}) {
		fmt.Println("WARNING: Similar skills failed (reference skill may be missing)")
	} else {
		fmt.Println("PASSED: Similar skills")
	}

	fmt.Println("Smoke test complete.")
}

func sendRequest(method, path string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to marshal payload: %v\n", err)
			return false
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to create request: %v\n", err)
		return false
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("  %s %s -> %d: %s\n", method, path, resp.StatusCode, truncate(string(respBody), 200))

	return resp.StatusCode == http.StatusOK
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
