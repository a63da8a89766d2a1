package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	key := os.Getenv("API_KEY")

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Client name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Alert email address: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("An email address is required.")
		return
	}

	client := struct {
		ID string `json:"id"`
	}{}
	if !post(api+"/api/clients", key, map[string]string{"name": name, "email": email}, &client) {
		return
	}
	fmt.Println("Created client", client.ID)

	fmt.Print("Endpoint URL to monitor (e.g., https://example.com): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		fmt.Println("Invalid URL.")
		return
	}

	ep := struct {
		ID string `json:"id"`
	}{}
	if !post(api+"/api/endpoints", key, map[string]string{"client_id": client.ID, "url": raw}, &ep) {
		return
	}
	fmt.Println("Created endpoint", ep.ID, "— it will be checked on the next cycle.")
}

func post(url, key string, payload any, out any) bool {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Println("API returned status:", resp.Status)
		return false
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			fmt.Println("Bad API response:", err)
			return false
		}
	}
	return true
}
