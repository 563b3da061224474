// Smoke test client for a locally running instance: logs in, walks the
// notes endpoints, and lists analysis results. Not part of the server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

var baseURL = envOr("SMOKE_BASE_URL", "http://localhost:3000/api")

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("CardioNote API smoke test\n")

	email := envOr("SMOKE_EMAIL", "")
	password := envOr("SMOKE_PASSWORD", "")
	if email == "" || password == "" {
		color.Red("Set SMOKE_EMAIL and SMOKE_PASSWORD (a verified account) first")
		os.Exit(1)
	}

	// 1. Login
	color.Yellow("\n[AUTH] 1. Login")
	resp, body, err := sendRequest("POST", "/auth/v1/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var login struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &login); err != nil || login.Data.AccessToken == "" {
		color.Red("No access token in response: %s", string(body))
		os.Exit(1)
	}
	token := login.Data.AccessToken

	// 2. Create a note
	color.Yellow("\n[NOTES] 2. Create note")
	resp, body, err = sendRequest("POST", "/note/v1", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var created struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &created)
	noteID := created.Data.Id
	fmt.Printf("Created note: %s\n", noteID)

	// 3. Rename it
	color.Yellow("\n[NOTES] 3. Update note title")
	resp, _, err = sendRequest("PUT", "/note/v1/"+noteID, token, map[string]interface{}{
		"title": "Smoke test note",
		"tags":  []string{"smoke"},
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 4. List and verify
	color.Yellow("\n[NOTES] 4. List notes")
	resp, body, err = sendRequest("GET", "/note/v1", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	fmt.Println(string(body))

	// 5. Clean up
	color.Yellow("\n[NOTES] 5. Delete note")
	resp, _, err = sendRequest("DELETE", "/note/v1/"+noteID, token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 6. Analysis results
	color.Yellow("\n[ECG] 6. List analysis results")
	resp, body, err = sendRequest("GET", "/ecg/v1", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	fmt.Println(string(body))

	color.Cyan("\nSmoke test finished")
}
