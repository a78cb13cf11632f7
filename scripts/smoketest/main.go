// Command smoketest exercises a running API end to end: it registers a
// throwaway account, logs in, creates and completes an assignment,
// records a grade and reads the dashboard. Exit code 1 on any failure.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type step struct {
	Name     string
	Method   string
	Path     string
	Body     string
	Status   int
	Duration time.Duration
	Err      error
}

type runner struct {
	client *http.Client
	base   string
	prefix string
	token  string
	steps  []step
}

func main() {
	var (
		base    string
		prefix  string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	r := &runner{
		client: &http.Client{Timeout: timeout},
		base:   strings.TrimRight(base, "/"),
		prefix: prefix,
	}

	email := fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano())

	r.do("health", http.MethodGet, "/health", "", http.StatusOK)

	register := fmt.Sprintf(`{"email":%q,"password":"smoketest","full_name":"Smoke Test","school_id":"SMOKE-1","role":"student"}`, email)
	body := r.do("register", http.MethodPost, prefix+"/auth/register", register, http.StatusCreated)
	r.token = extractToken(body)

	login := fmt.Sprintf(`{"email":%q,"password":"smoketest"}`, email)
	body = r.do("login", http.MethodPost, prefix+"/auth/login", login, http.StatusOK)
	r.token = extractToken(body)

	due := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	create := fmt.Sprintf(`{"title":"Smoke assignment","type":"daily","due_date":%q}`, due)
	body = r.do("create assignment", http.MethodPost, prefix+"/assignments", create, http.StatusCreated)
	assignmentID := extractID(body)

	if assignmentID != "" {
		r.do("complete assignment", http.MethodPatch, prefix+"/assignments/"+assignmentID+"/status", `{"status":"completed"}`, http.StatusOK)
	}

	r.do("record grade", http.MethodPost, prefix+"/grades", `{"assignment_name":"Smoke assignment","class_name":"Smoke","grade":90}`, http.StatusCreated)
	r.do("dashboard", http.MethodGet, prefix+"/dashboard", "", http.StatusOK)
	r.do("grouped assignments", http.MethodGet, prefix+"/assignments/grouped", "", http.StatusOK)
	r.do("notifications", http.MethodGet, prefix+"/notifications", "", http.StatusOK)
	r.do("logout", http.MethodPost, prefix+"/auth/logout", "", http.StatusNoContent)

	failed := r.report()
	if failed > 0 {
		os.Exit(1)
	}
}

func (r *runner) do(name, method, path, body string, wantStatus int) []byte {
	s := step{Name: name, Method: method, Path: path, Body: body}

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, r.base+path, reader)
	if err != nil {
		s.Err = err
		r.steps = append(r.steps, s)
		return nil
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	s.Duration = time.Since(start)
	if err != nil {
		s.Err = err
		r.steps = append(r.steps, s)
		return nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		s.Err = fmt.Errorf("read body: %w", err)
		r.steps = append(r.steps, s)
		return nil
	}

	s.Status = resp.StatusCode
	if resp.StatusCode != wantStatus {
		s.Err = fmt.Errorf("expected status %d, got %d: %s", wantStatus, resp.StatusCode, truncate(data))
	}
	r.steps = append(r.steps, s)
	return data
}

func (r *runner) report() int {
	fmt.Println("Smoke Test Report")
	fmt.Println("=================")
	failed := 0
	for _, s := range r.steps {
		status := "OK"
		if s.Err != nil {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %-20s %s %s (%d, %s)\n", status, s.Name, s.Method, s.Path, s.Status, s.Duration)
		if s.Err != nil {
			fmt.Printf("  %v\n", s.Err)
		}
	}
	fmt.Printf("Failed steps: %d\n", failed)
	return failed
}

func extractToken(body []byte) string {
	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Data.AccessToken
}

func extractID(body []byte) string {
	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Data.ID
}

func truncate(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
